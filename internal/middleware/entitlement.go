package middleware

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/founder-copilot/internal/entitlement"
    "github.com/iliyamo/founder-copilot/internal/logger"
    "github.com/iliyamo/founder-copilot/internal/repository"
)

// RequireAccess lets the request through only when the founder is a legacy
// user or holds an unexpired active subscription.  The profile is read on
// every request so access never outlives the end date.
func RequireAccess(profiles entitlement.ProfileLoader, log *logger.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            uid, ok := UserID(c)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
            }
            sess := entitlement.NewSession(uid, profiles, nil)
            if err := sess.Refetch(c.Request().Context()); err != nil {
                if errors.Is(err, repository.ErrNotFound) {
                    return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "subscription required"})
                }
                log.Error("entitlement lookup failed", "user_id", uid, "error", err)
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check subscription"})
            }
            if !sess.HasAccess() {
                return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "subscription required"})
            }
            return next(c)
        }
    }
}
