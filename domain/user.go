package domain

import "time"

// User represents a registered account. Password holds the bcrypt hash
// and is never serialized.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
