package domain

import "time"

// User is the shared account model all domain modules authenticate against.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	IsStaff      bool
	CreatedAt    time.Time
}
