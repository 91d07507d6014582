package middleware

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// UserIDKey is the echo.Context key JWTAuth stores the user id under.
const UserIDKey = "user_id"

// UserID returns the authenticated user id, or false when JWTAuth did not
// run for this route.
func UserID(c echo.Context) (uint64, bool) {
    switch v := c.Get(UserIDKey).(type) {
    case uint64:
        return v, v != 0
    case string:
        id, err := strconv.ParseUint(v, 10, 64)
        return id, err == nil && id != 0
    }
    return 0, false
}

// userKey renders the user id for rate-limit and cache keys; "anon" when
// unauthenticated.
func userKey(c echo.Context) string {
    if id, ok := UserID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
