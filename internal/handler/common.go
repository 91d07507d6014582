package handler // handler defines http handlers

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/founder-copilot/internal/llm"
    "github.com/iliyamo/founder-copilot/internal/middleware"
    "github.com/iliyamo/founder-copilot/internal/repository"
)

const (
    dbTimeout  = 5 * time.Second // plain repository calls
    llmTimeout = 2 * time.Minute // calls that wait for a full model reply
)

var errNoUser = errors.New("invalid user_id in context")

// getUserID returns the id JWTAuth stored on the context.
func getUserID(c echo.Context) (uint64, error) {
    if id, ok := middleware.UserID(c); ok {
        return id, nil
    }
    return 0, errNoUser
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}

func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), dbTimeout)
}

func llmCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), llmTimeout)
}

// optional trims s and returns nil for blank input.
func optional(s *string) *string {
    if s == nil {
        return nil
    }
    v := strings.TrimSpace(*s)
    if v == "" {
        return nil
    }
    return &v
}

// unauthorized is the response when no user id is on the context.
func unauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// storeError maps repository sentinels to a response; fallback is the 500
// message.
func storeError(c echo.Context, err error, fallback string) error {
    switch {
    case errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallback})
}

// generationError maps a failed model call.  Missing rows still give 404.
func generationError(c echo.Context, err error) error {
    if errors.Is(err, repository.ErrNotFound) {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    }
    status, msg := llm.StatusFor(err)
    return c.JSON(status, echo.Map{"error": msg})
}
