// Package nav holds the canonical role-to-navigation table.
//
// There is exactly one table. Both the first-login path and the
// post-project-selection path resolve against it, so the two can never
// drift apart.
package nav

import (
	"errors"
	"strings"

	"github.com/infosharesystems/vres-client/internal/client/domain"
)

// ErrUnknownRole is returned for any role outside the fixed set. Callers
// must fail closed: surface the error and do not admit the session.
var ErrUnknownRole = errors.New("nav: unknown role")

// Entry is the navigation configuration for one role.
type Entry struct {
	Routes       []string // ordered route keys shown in navigation
	DefaultRoute string   // landing path, e.g. "/dashboard"
}

var table = map[domain.Role]Entry{
	domain.RoleAdmin: {
		Routes:       []string{"dashboard", "user-dashboard", "initiate-project", "new-coordinator"},
		DefaultRoute: "/dashboard",
	},
	domain.RoleProjectCoordinator: {
		Routes:       []string{"dashboard", "user-registration", "create-project"},
		DefaultRoute: "/dashboard",
	},
	domain.RoleIssuer: {
		Routes:       []string{"create-voucher"},
		DefaultRoute: "/create-voucher",
	},
	domain.RoleObserver: {
		Routes:       []string{"dashboard"},
		DefaultRoute: "/dashboard",
	},
	domain.RoleChecker: {
		Routes:       []string{"approve-beneficiary-list"},
		DefaultRoute: "/approve-beneficiary-list",
	},
	domain.RoleMaker: {
		Routes:       []string{"beneficiary-list", "approve-beneficiary-list", "upload-beneficiary-list"},
		DefaultRoute: "/upload-beneficiary-list",
	},
}

// Resolve returns the navigation entry for a role. The returned slice is a
// copy; callers may hold on to it.
func Resolve(role domain.Role) (Entry, error) {
	e, ok := table[role]
	if !ok {
		return Entry{}, ErrUnknownRole
	}

	routes := make([]string, len(e.Routes))
	copy(routes, e.Routes)
	return Entry{Routes: routes, DefaultRoute: e.DefaultRoute}, nil
}

// Roles returns the fixed role set, in no particular order.
func Roles() []domain.Role {
	roles := make([]domain.Role, 0, len(table))
	for r := range table {
		roles = append(roles, r)
	}
	return roles
}

// RouteKey normalizes a path to a route key: "/dashboard" -> "dashboard".
func RouteKey(path string) string {
	return strings.TrimPrefix(path, "/")
}
