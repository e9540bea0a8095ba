// Package jwks serves the public half of the signing key pair as a JSON Web
// Key Set so out-of-process verifiers can check token signatures.
package jwks

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/campusd/professor-trust/pkg/keys"
	"github.com/campusd/professor-trust/pkg/types"
)

// Publisher renders the JWKS document for the active key pair. The document
// is marshalled once at construction: key material never changes within a
// process lifetime, and downstream caches rely on byte-stable output.
type Publisher struct {
	doc     *types.JWKS
	payload []byte
}

// New derives the JWKS document from the public half of km.
func New(km *keys.Material) (*Publisher, error) {
	n, e := km.PublicComponents()
	doc := &types.JWKS{
		Keys: []types.JSONWebKey{
			{
				KeyType:   "RSA",
				KeyID:     km.Kid(),
				Use:       "sig",
				Algorithm: "RS256",
				N:         n,
				E:         e,
			},
		},
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JWKS document: %w", err)
	}

	return &Publisher{doc: doc, payload: payload}, nil
}

// Document returns the JWKS document.
func (p *Publisher) Document() *types.JWKS { return p.doc }

// Payload returns the stable marshalled document bytes.
func (p *Publisher) Payload() []byte { return p.payload }

// Handler serves GET /.well-known/jwks.json. The endpoint is intentionally
// unauthenticated.
func (p *Publisher) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(p.payload); err != nil {
			slog.Error("Failed to write JWKS response", "error", err)
		}
	}
}
