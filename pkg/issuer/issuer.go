// Package issuer mints signed access tokens after the auth service has
// verified credentials.
package issuer

import (
	"errors"
	"fmt"
	"time"

	"github.com/campusd/professor-trust/pkg/keys"
	"github.com/campusd/professor-trust/pkg/types"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the access token lifetime used when none is configured.
const DefaultTTL = 1 * time.Hour

var (
	ErrEmptySubject = errors.New("subject id is empty")
	ErrUnknownRole  = errors.New("role is not in the known role set")
)

// Issuer signs access tokens with the process key pair. It has no state
// beyond immutable configuration; issuing is a pure function of
// (subject, role, clock, keys).
type Issuer struct {
	keys   *keys.Material
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// Option configures an Issuer
type Option func(*Issuer)

// WithTTL overrides the token lifetime
func WithTTL(ttl time.Duration) Option {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

// New creates an Issuer signing with km and stamping iss=issuerName.
func New(km *keys.Material, issuerName string, opts ...Option) *Issuer {
	i := &Issuer{
		keys:   km,
		issuer: issuerName,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue produces a signed RS256 token for the given subject and role. The
// token header carries the kid of the active key pair so verifiers can find
// the matching public key in the published JWKS.
func (i *Issuer) Issue(subjectID string, role types.Role) (string, error) {
	if subjectID == "" {
		return "", ErrEmptySubject
	}
	if !role.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	now := i.now()
	claims := &types.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = i.keys.Kid()

	signed, err := token.SignedString(i.keys.PrivateKey())
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration { return i.ttl }
