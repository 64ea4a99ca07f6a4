package vressdk

import (
	"context"
	"net/http"
)

// Coordinators lists registered project coordinators.
func (s *Session) Coordinators(ctx context.Context) ([]User, error) {
	var out []User
	if err := s.doJSON(ctx, http.MethodGet, "/vres/users/coordinators", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterCoordinator registers a new project coordinator (admin operation).
func (s *Session) RegisterCoordinator(ctx context.Context, u NewUser) error {
	return s.doJSON(ctx, http.MethodPost, "/vres/users/register-coordinator", u, nil)
}

// CreateUser registers a project-level user (coordinator operation).
func (s *Session) CreateUser(ctx context.Context, u NewUser) error {
	return s.doJSON(ctx, http.MethodPost, "/vres/users", u, nil)
}

// UserDashboard fetches the per-user dashboard aggregates.
func (s *Session) UserDashboard(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := s.doJSON(ctx, http.MethodGet, "/vres/users/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
