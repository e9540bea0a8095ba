package store

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Professor is a record in the professor collection. The password hash is
// excluded from JSON so normal API responses never carry it; the internal
// credential-check route uses FullRecord instead.
type Professor struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// FullRecord is the professor view served only to the AUTH_SERVICE role. It
// includes the stored hash so the auth service can compare credentials at
// login.
type FullRecord struct {
	Professor
	PasswordHash string `json:"password"`
}

// Full returns the record with its password hash exposed.
func (p *Professor) Full() FullRecord {
	return FullRecord{Professor: *p, PasswordHash: p.PasswordHash}
}

// SetPassword hashes the plaintext with bcrypt and stores the hash. The
// plaintext is never persisted.
func (p *Professor) SetPassword(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares the plaintext against the stored hash in constant
// time.
func (p *Professor) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(plaintext)) == nil
}

// CheckHash compares a plaintext password against a bcrypt hash.
func CheckHash(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Update describes a partial update of a professor record. Nil fields are
// left unchanged. Passwords are deliberately not updatable through this path.
type Update struct {
	Name  *string
	Email *string
	Phone *string
}

// Empty reports whether the update would change nothing.
func (u Update) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Phone == nil
}
