package identity

import "time"

// User is an account holder. Names are globally unique.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Token is an opaque bearer credential. It resolves to its user only while
// Active is true; revocation flips Active once and the token never returns.
type Token struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Value     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	Active    bool      `json:"-"`
}
