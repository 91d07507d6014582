package model

import "time"

// User is the sign-in identity of a founder (table `users`).  Everything
// else a founder owns hangs off the user id; the matching Profile row is
// created in the same transaction as the user.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email, stored lower-cased
    PasswordHash string    // users.password_hash (bcrypt)
    IsActive     bool      // users.is_active; inactive users cannot log in
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// RefreshToken is a row of `refresh_tokens`.  Only the SHA-256 hex digest of
// the token handed to the client is kept.
type RefreshToken struct {
    ID        uint64
    UserID    uint64
    TokenHash string
    ExpiresAt time.Time
    RevokedAt *time.Time // nil while the token is usable
    CreatedAt time.Time
}
