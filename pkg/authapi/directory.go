package authapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/campusd/professor-trust/pkg/issuer"
	"github.com/campusd/professor-trust/pkg/types"
)

// Credential is the subset of a professor record the login flow needs.
type Credential struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password"`
}

// Directory resolves a login identifier to stored credentials. Lookup returns
// ErrIdentifierUnknown when no record matches; any other error means the
// directory itself was unreachable.
type Directory interface {
	Lookup(ctx context.Context, identifier string) (*Credential, error)
}

// ErrIdentifierUnknown is returned when no record matches the identifier.
var ErrIdentifierUnknown = fmt.Errorf("identifier not found")

// subjectAuthService is the subject stamped into self-issued internal tokens.
const subjectAuthService = "auth-service"

// HTTPDirectory reads credentials from the professor service's internal
// route. The call authenticates with a short-lived self-issued token carrying
// the AUTH_SERVICE role, the only role permitted on that route.
type HTTPDirectory struct {
	baseURL string
	client  *http.Client
	issuer  *issuer.Issuer
}

// NewHTTPDirectory creates a Directory backed by the professor service at
// baseURL, self-authenticating with tokens from iss.
func NewHTTPDirectory(baseURL string, iss *issuer.Issuer) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		issuer:  iss,
	}
}

func (d *HTTPDirectory) Lookup(ctx context.Context, identifier string) (*Credential, error) {
	token, err := d.issuer.Issue(subjectAuthService, types.RoleAuthService)
	if err != nil {
		return nil, fmt.Errorf("failed to self-issue internal token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		d.baseURL+"/api/professors/internal/all", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build directory request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach professor directory: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("Failed to close directory response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("professor directory returned status %d", resp.StatusCode)
	}

	var records []Credential
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode directory response: %w", err)
	}

	for i := range records {
		if records[i].Email == identifier {
			return &records[i], nil
		}
	}
	return nil, ErrIdentifierUnknown
}
