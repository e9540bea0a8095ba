// Package keys holds the process-wide RSA signing key pair. The material is
// loaded once at startup and immutable afterwards; every component that signs
// or verifies receives it explicitly, so tests can run with disposable pairs.
package keys

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
)

// Material is a single RSA key pair identified by a stable kid. One kid names
// exactly one pair for the lifetime of the process; rotation means running
// with a new kid while the old one stays published until outstanding tokens
// expire.
type Material struct {
	kid     string
	private *rsa.PrivateKey
	public  *rsa.PublicKey
}

// Load reads a PEM encoded RSA private key (PKCS#1 or PKCS#8) from path. If
// kid is empty a stable thumbprint of the public key is derived instead, so
// the identifier survives restarts for a fixed key. Callers must treat a Load
// failure as fatal: a process without key material must not serve traffic.
func Load(path, kid string) (*Material, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key %s: %w", path, err)
	}
	return Parse(raw, kid)
}

// Parse builds Material from PEM encoded private key bytes.
func Parse(raw []byte, kid string) (*Material, error) {
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, errors.New("no PEM block found in private key data")
	}

	var priv *rsa.PrivateKey
	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKCS#1 private key: %w", err)
		}
		priv = key
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKCS#8 private key: %w", err)
		}
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("private key is %T, expected RSA", key)
		}
		priv = rsaKey
	default:
		return nil, fmt.Errorf("unsupported PEM block type %q", block.Type)
	}

	if err := priv.Validate(); err != nil {
		return nil, fmt.Errorf("private key failed validation: %w", err)
	}

	return newMaterial(priv, kid), nil
}

// Generate creates an ephemeral 2048 bit pair. Meant for tests and local
// development, not production deployments.
func Generate(kid string) (*Material, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}
	return newMaterial(priv, kid), nil
}

func newMaterial(priv *rsa.PrivateKey, kid string) *Material {
	pub := &priv.PublicKey
	if kid == "" {
		kid = Thumbprint(pub)
	}
	return &Material{kid: kid, private: priv, public: pub}
}

// Kid returns the stable key identifier.
func (m *Material) Kid() string { return m.kid }

// Public returns the verification half of the pair.
func (m *Material) Public() *rsa.PublicKey { return m.public }

// Signer exposes the private key for the JWT signing layer.
func (m *Material) Signer() crypto.Signer { return m.private }

// PrivateKey returns the raw signing key.
func (m *Material) PrivateKey() *rsa.PrivateKey { return m.private }

// Sign computes an RSASSA-PKCS1-v1_5 SHA-256 signature over data.
func (m *Material) Sign(data []byte) ([]byte, error) {
	digest := sha256.Sum256(data)
	return rsa.SignPKCS1v15(rand.Reader, m.private, crypto.SHA256, digest[:])
}

// Verify checks an RSASSA-PKCS1-v1_5 SHA-256 signature over data.
func (m *Material) Verify(data, sig []byte) error {
	digest := sha256.Sum256(data)
	return rsa.VerifyPKCS1v15(m.public, crypto.SHA256, digest[:], sig)
}

// PublicComponents returns the modulus and exponent encoded as base64url
// without padding, ready for a JWKS document.
func (m *Material) PublicComponents() (n, e string) {
	return base64.RawURLEncoding.EncodeToString(m.public.N.Bytes()),
		base64.RawURLEncoding.EncodeToString(big.NewInt(int64(m.public.E)).Bytes())
}

// Thumbprint derives a stable identifier from the public key following the
// RFC 7638 construction for RSA keys.
func Thumbprint(pub *rsa.PublicKey) string {
	n := base64.RawURLEncoding.EncodeToString(pub.N.Bytes())
	e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes())

	// Lexicographic member order per RFC 7638 section 3.2.
	canonical := fmt.Sprintf(`{"e":%q,"kty":"RSA","n":%q}`, e, n)
	sum := sha256.Sum256([]byte(canonical))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
