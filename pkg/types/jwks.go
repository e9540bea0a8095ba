package types

import (
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
)

// JSONWebKey is the RSA signing-key subset of RFC 7517 used by this system.
type JSONWebKey struct {
	KeyType   string `json:"kty"`
	KeyID     string `json:"kid"`
	Use       string `json:"use"`
	Algorithm string `json:"alg"`
	N         string `json:"n"` // RSA modulus, base64url without padding
	E         string `json:"e"` // RSA public exponent, base64url without padding
}

// JWKS represents a set of JSON Web Keys served from a JWKS endpoint
type JWKS struct {
	Keys []JSONWebKey `json:"keys"`
}

// Find returns the key with the given kid, if present.
func (j *JWKS) Find(kid string) (*JSONWebKey, bool) {
	for i := range j.Keys {
		if j.Keys[i].KeyID == kid {
			return &j.Keys[i], true
		}
	}
	return nil, false
}

// RSAPublicKey reconstructs the RSA public key from the encoded modulus and
// exponent.
func (k *JSONWebKey) RSAPublicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}
