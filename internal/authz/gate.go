package authz

import (
	"strings"

	"github.com/samber/lo"
)

// Gate applies the endpoint and admin policy to an otherwise authenticated
// caller. Rules are checked in order:
//
//  1. API-key credentials are rejected on api-key-excluded endpoints.
//  2. Admins are allowed everywhere.
//  3. With admin-only enforcement, non-admins are rejected.
//  4. Non-admins are allowed on the configured non-admin endpoints.
//  5. Deployments with no endpoint policy at all allow any authenticated caller.
//
// A Gate is immutable; hot-reload swaps in a new Gate via the engine's
// gate provider.
type Gate struct {
	admins         map[string]struct{}
	nonAdmin       map[string]struct{}
	apiKeyExcluded map[string]struct{}
	adminOnly      bool
}

// NewGate builds a Gate from the configured lists. List entries are
// trimmed; empty entries are dropped.
func NewGate(adminOnly bool, admins, nonAdminEndpoints, apiKeyExcludedEndpoints []string) *Gate {
	return &Gate{
		adminOnly:      adminOnly,
		admins:         toSet(admins),
		nonAdmin:       toSet(nonAdminEndpoints),
		apiKeyExcluded: toSet(apiKeyExcludedEndpoints),
	}
}

func toSet(items []string) map[string]struct{} {
	cleaned := lo.FilterMap(items, func(item string, _ int) (string, bool) {
		trimmed := strings.TrimSpace(item)
		return trimmed, trimmed != ""
	})
	return lo.SliceToMap(cleaned, func(item string) (string, struct{}) {
		return item, struct{}{}
	})
}

// NeedsUsername reports whether gating decisions depend on the caller's
// username. When false, the engine skips userinfo resolution on the token
// path.
func (g *Gate) NeedsUsername() bool {
	return g.adminOnly || len(g.admins) > 0
}

// IsAdmin reports whether the username is in the admin allow-list.
func (g *Gate) IsAdmin(username string) bool {
	_, ok := g.admins[username]
	return ok
}

// Check returns nil when the caller may invoke the method, or a deny reason
// otherwise. viaAPIKey marks callers authenticated through the API-key path.
func (g *Gate) Check(method, username string, viaAPIKey bool) error {
	if viaAPIKey {
		if _, excluded := g.apiKeyExcluded[method]; excluded {
			return ErrEndpointExcluded
		}
	}

	if g.IsAdmin(username) {
		return nil
	}

	if g.adminOnly {
		return ErrNotAdmin
	}

	if _, ok := g.nonAdmin[method]; ok {
		return nil
	}

	// No endpoint policy configured: open deployment, any authenticated
	// caller passes.
	if len(g.nonAdmin) == 0 {
		return nil
	}

	return ErrEndpointExcluded
}
