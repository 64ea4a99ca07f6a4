package session

import (
	"github.com/infosharesystems/vres-client/internal/client/domain"
	"github.com/infosharesystems/vres-client/pkg/vressdk"
)

// DeriveVisibleProjects narrows the full project list to what the user's
// role may see. Coordinators see only their assigned projects; every other
// role that can reach a project dashboard sees the list unfiltered.
func DeriveVisibleProjects(all []vressdk.Project, role domain.Role, assignments []domain.ProjectAssignment) []vressdk.Project {
	if role != domain.RoleProjectCoordinator {
		out := make([]vressdk.Project, len(all))
		copy(out, all)
		return out
	}

	assigned := make(map[int64]struct{}, len(assignments))
	for _, a := range assignments {
		assigned[a.ProjectID] = struct{}{}
	}

	out := make([]vressdk.Project, 0, len(assignments))
	for _, p := range all {
		if _, ok := assigned[p.ProjectID]; ok {
			out = append(out, p)
		}
	}
	return out
}
