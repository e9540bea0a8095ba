package authz_test

import (
	"testing"

	"github.com/campusd/professor-trust/pkg/authz"
	"github.com/campusd/professor-trust/pkg/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func claimsFor(subject string, role types.Role) *types.AccessClaims {
	return &types.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
		Role:             role,
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		role    types.Role
		allowed []types.Role
		want    bool
	}{
		{"professor against admin-only", types.RoleProfessor, []types.Role{types.RoleAdmin}, false},
		{"professor in allowed set", types.RoleProfessor, []types.Role{types.RoleAdmin, types.RoleProfessor}, true},
		{"admin in allowed set", types.RoleAdmin, []types.Role{types.RoleAdmin}, true},
		{"auth service against user routes", types.RoleAuthService, []types.Role{types.RoleAdmin, types.RoleProfessor}, false},
		{"auth service on internal route", types.RoleAuthService, []types.Role{types.RoleAuthService}, true},
		{"empty allowed set denies everyone", types.RoleAdmin, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := claimsFor("p1", tt.role)
			decision := authz.Authorize(claims, tt.allowed...)
			assert.Equal(t, tt.want, decision.Allowed)
			assert.Equal(t, "p1", decision.SubjectID)
			assert.Equal(t, tt.role, decision.Role)
		})
	}
}

func TestRestrict(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		role    types.Role
		ownerID string
		want    bool
	}{
		{"professor own record", "p1", types.RoleProfessor, "p1", true},
		{"professor other record", "p1", types.RoleProfessor, "p2", false},
		{"admin any record", "a1", types.RoleAdmin, "p2", true},
		{"auth service any record", "auth-service", types.RoleAuthService, "p2", true},
		{"empty subject never owns", "", types.RoleProfessor, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := claimsFor(tt.subject, tt.role)
			decision := authz.Restrict(claims, tt.ownerID)
			assert.Equal(t, tt.want, decision.Allowed)
		})
	}
}
