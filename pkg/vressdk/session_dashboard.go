package vressdk

import (
	"context"
	"fmt"
	"net/http"
)

// Dashboard fetches the aggregate view for one project.
func (s *Session) Dashboard(ctx context.Context, projectID int64) (*ProjectDashboard, error) {
	var out ProjectDashboard
	path := fmt.Sprintf("/vres/dashboard/project/%d", projectID)
	if err := s.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
