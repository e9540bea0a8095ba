package verifier

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/campusd/professor-trust/pkg/cache"
	"github.com/campusd/professor-trust/pkg/keys"
	"github.com/campusd/professor-trust/pkg/types"
)

// KeySource resolves a verification key by kid.
type KeySource interface {
	Key(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// LocalKeySource serves the public half of in-process key material. Used when
// the verifier runs in the same process as the issuer.
type LocalKeySource struct {
	material *keys.Material
}

// NewLocalKeySource wraps km as a KeySource.
func NewLocalKeySource(km *keys.Material) *LocalKeySource {
	return &LocalKeySource{material: km}
}

func (s *LocalKeySource) Key(_ context.Context, kid string) (*rsa.PublicKey, error) {
	if kid != s.material.Kid() {
		return nil, fmt.Errorf("%w: kid %q", ErrUnknownKey, kid)
	}
	return s.material.Public(), nil
}

// RemoteKeySource fetches the issuer's JWKS document over HTTP with a
// read-through cache. When a fetch fails it falls back to the last document
// it saw, if any, so a brief auth service outage does not take down token
// verification.
type RemoteKeySource struct {
	url    string
	client *http.Client
	cache  cache.Cache
	ttl    time.Duration

	mu       sync.RWMutex
	lastGood *types.JWKS
}

// RemoteOption configures a RemoteKeySource
type RemoteOption func(*RemoteKeySource)

// WithHTTPClient overrides the HTTP client used for JWKS fetches
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(s *RemoteKeySource) {
		s.client = client
	}
}

// WithCacheTTL sets the TTL for cached JWKS documents
func WithCacheTTL(ttl time.Duration) RemoteOption {
	return func(s *RemoteKeySource) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewRemoteKeySource creates a KeySource fetching keys from the JWKS endpoint
// at url, caching documents in c.
func NewRemoteKeySource(url string, c cache.Cache, opts ...RemoteOption) *RemoteKeySource {
	s := &RemoteKeySource{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		cache:  c,
		ttl:    cache.Defaults.TTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RemoteKeySource) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	// Cached document first; no network call when the kid is known.
	if jwks, found := s.cache.Get(s.url); found {
		if key, ok := jwks.Find(kid); ok {
			return key.RSAPublicKey()
		}
		// A kid the cached document does not know may belong to a rotated
		// key published after the document was cached. Refetch below.
		slog.Debug("Cached JWKS does not contain kid, refetching", "kid", kid)
	}

	jwks, err := s.fetch(ctx)
	if err != nil {
		slog.Error("Failed to fetch JWKS", "url", s.url, "error", err)

		s.mu.RLock()
		fallback := s.lastGood
		s.mu.RUnlock()
		if fallback == nil {
			return nil, fmt.Errorf("%w: jwks fetch failed: %v", ErrUnknownKey, err)
		}

		slog.Warn("Falling back to last known JWKS document", "url", s.url)
		jwks = fallback
	} else {
		s.cache.Set(s.url, jwks, s.ttl)
		s.mu.Lock()
		s.lastGood = jwks
		s.mu.Unlock()
	}

	key, ok := jwks.Find(kid)
	if !ok {
		return nil, fmt.Errorf("%w: kid %q", ErrUnknownKey, kid)
	}
	return key.RSAPublicKey()
}

func (s *RemoteKeySource) fetch(ctx context.Context) (*types.JWKS, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build JWKS request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("Failed to close JWKS response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code when fetching JWKS: %d", resp.StatusCode)
	}

	var jwks types.JWKS
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, fmt.Errorf("failed to parse JWKS: %w", err)
	}

	if len(jwks.Keys) == 0 {
		return nil, fmt.Errorf("jwks document contains no keys")
	}

	return &jwks, nil
}
