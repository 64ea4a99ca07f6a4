package domain

// Role is one of the fixed set of VRES roles assigned by the backend.
type Role string

const (
	RoleAdmin              Role = "ADMIN"
	RoleProjectCoordinator Role = "PROJECT COORDINATOR"
	RoleIssuer             Role = "ISSUER"
	RoleObserver           Role = "OBSERVER"
	RoleChecker            Role = "CHECKER"
	RoleMaker              Role = "MAKER"
)

// NeedsDepartment reports whether a role operates within a department.
// Only makers and checkers do; for everyone else a department id is noise
// and must be cleared on project selection.
func (r Role) NeedsDepartment() bool {
	return r == RoleMaker || r == RoleChecker
}

// ProjectAssignment is one entry of a user's project list: the project plus
// the role (and, for maker/checker, department) the user holds in it.
type ProjectAssignment struct {
	ProjectID    int64
	ProjectName  string
	Role         Role
	DepartmentID int64 // 0 when the role carries no department
}

// Identity is the authenticated user as returned by the backend at login.
// It lives in memory and, sealed, in the local store; logout destroys it.
type Identity struct {
	UserID   string
	Name     string
	Token    string // backend-issued access token
	Role     Role   // top-level role from the login response
	Projects []ProjectAssignment
}

// Assignment looks up the user's assignment for a project id.
func (i Identity) Assignment(projectID int64) (ProjectAssignment, bool) {
	for _, a := range i.Projects {
		if a.ProjectID == projectID {
			return a, true
		}
	}
	return ProjectAssignment{}, false
}
