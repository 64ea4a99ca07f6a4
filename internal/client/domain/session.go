package domain

// ActiveSession is the derived view over an Identity for the currently
// selected project: the role in effect, its navigation set, and the
// department when the role has one.
//
// Invariant: Nav always equals the navigation table entry for Role.
// SelectedProjectID stays zero until a project is chosen; admins and users
// with no assignments never select one.
type ActiveSession struct {
	Role              Role
	SelectedProjectID int64
	DepartmentID      int64
	Nav               []string // ordered route keys visible in navigation
	DefaultRoute      string
}

// HasProject reports whether a project has been selected.
func (s ActiveSession) HasProject() bool { return s.SelectedProjectID != 0 }

// Allows reports whether a route key is in the session's navigation set.
func (s ActiveSession) Allows(route string) bool {
	for _, r := range s.Nav {
		if r == route {
			return true
		}
	}
	return false
}
