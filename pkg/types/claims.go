package types

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is the payload of an access token issued at login. The subject
// is the professor record id (or a fixed service name for internal callers).
type AccessClaims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}

// SubjectID returns the subject claim under its domain name.
func (c *AccessClaims) SubjectID() string {
	return c.Subject
}

// AuthorizationDecision is the output of a gate. It is produced per request
// and consumed immediately; it is never persisted.
type AuthorizationDecision struct {
	Allowed   bool
	SubjectID string
	Role      Role
}
