// Package authz contains the two authorization gates and the HTTP middleware
// that applies them. Gates are pure functions of verified claims and request
// input; they perform no I/O, so a denied request never touches the record
// store.
package authz

import "github.com/campusd/professor-trust/pkg/types"

// Authorize is the role gate: the request proceeds only if the verified role
// is in the allowed set for the operation.
func Authorize(claims *types.AccessClaims, allowed ...types.Role) types.AuthorizationDecision {
	decision := types.AuthorizationDecision{
		SubjectID: claims.Subject,
		Role:      claims.Role,
	}
	for _, role := range allowed {
		if claims.Role == role {
			decision.Allowed = true
			break
		}
	}
	return decision
}

// Restrict is the ownership gate: privileged roles may act on any resource,
// everyone else only on the resource they own. The caller resolves
// resourceOwnerID from the route before invoking the gate; the gate itself
// never fetches the resource.
func Restrict(claims *types.AccessClaims, resourceOwnerID string) types.AuthorizationDecision {
	decision := types.AuthorizationDecision{
		SubjectID: claims.Subject,
		Role:      claims.Role,
	}
	if claims.Role.Privileged() {
		decision.Allowed = true
		return decision
	}
	decision.Allowed = claims.Subject != "" && claims.Subject == resourceOwnerID
	return decision
}
