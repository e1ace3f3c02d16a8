package types

import "time"

// Session is the server-side record behind the opaque cookie-carried ID.
// Roles are cached at login; role changes take effect on the next login.
type Session struct {
	ID        string    `db:"id"`
	UserID    int64     `db:"user_id"`
	UserName  string    `db:"user_name"`
	UserEmail string    `db:"user_email"`
	Roles     []string  `db:"roles"`
	CSRFToken string    `db:"csrf_token"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}
