package domain

import "time"

// User is an account that can file, work on, or oversee tickets depending
// on its role. Users are created through user management only; the ticket
// core treats them as read-mostly.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
