// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an identity record. Email is stored normalized (trimmed,
// lowercased) and is unique among live users. PasswordHash is an opaque
// bcrypt digest; the raw password never reaches this struct.
type User struct {
	ID            string    `db:"id"`
	FirstName     string    `db:"first_name"`
	LastName      string    `db:"last_name"`
	Email         string    `db:"email"`
	PasswordHash  string    `db:"password_hash"`
	TermsAccepted bool      `db:"terms_accepted"`
	CreatedAt     time.Time `db:"created_at"`
}
