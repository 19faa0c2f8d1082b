package domain

import "time"

// Token is an opaque bearer credential. One row per user; the key is looked up
// verbatim, nothing inside it is interpreted.
type Token struct {
	Key       string
	UserID    string
	CreatedAt time.Time
}
