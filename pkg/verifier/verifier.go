// Package verifier validates access tokens: structure, signature, expiry and
// role, in that order. A failed verification is terminal for the request; it
// is never retried.
package verifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/campusd/professor-trust/pkg/types"
	"github.com/golang-jwt/jwt/v5"
)

// Verification failures. Handlers translate all of these to the same opaque
// 401; the distinction exists for logs and tests only.
var (
	ErrMalformed    = errors.New("token is malformed")
	ErrUnknownKey   = errors.New("token signing key is not known")
	ErrBadSignature = errors.New("token signature is invalid")
	ErrExpired      = errors.New("token is expired")
)

// Verifier checks tokens against public keys resolved by kid from a
// KeySource. It holds no request-scoped state and is safe for concurrent use.
type Verifier struct {
	source KeySource
	parser *jwt.Parser
}

// New creates a Verifier resolving keys from source.
func New(source KeySource) *Verifier {
	return &Verifier{
		source: source,
		parser: jwt.NewParser(
			jwt.WithIssuedAt(),
			jwt.WithExpirationRequired(),
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name}),
		),
	}
}

// Verify parses and validates tokenString and returns its claims. The error
// is one of ErrMalformed, ErrUnknownKey, ErrBadSignature or ErrExpired
// (possibly wrapped).
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*types.AccessClaims, error) {
	keyFunc := func(token *jwt.Token) (any, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, fmt.Errorf("%w: missing kid in token header", ErrMalformed)
		}
		key, err := v.source.Key(ctx, kid)
		if err != nil {
			return nil, err
		}
		return key, nil
	}

	var claims types.AccessClaims
	token, err := v.parser.ParseWithClaims(tokenString, &claims, keyFunc)
	if err != nil {
		return nil, mapParseError(err)
	}
	if !token.Valid {
		return nil, ErrBadSignature
	}

	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: role %q is not recognized", ErrMalformed, claims.Role)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrMalformed)
	}

	return &claims, nil
}

// mapParseError translates golang-jwt errors into the package taxonomy.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownKey), errors.Is(err, ErrMalformed):
		return err
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	default:
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
}
