package vressdk

import (
	"context"
	"fmt"
	"net/http"
)

// Projects fetches all projects visible to the caller.
func (s *Session) Projects(ctx context.Context) ([]Project, error) {
	var out []Project
	if err := s.doJSON(ctx, http.MethodGet, "/vres/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Project fetches one project's metadata.
func (s *Session) Project(ctx context.Context, projectID int64) (*Project, error) {
	var out Project
	path := fmt.Sprintf("/vres/projects/%d", projectID)
	if err := s.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InitiateProject creates a new project (admin operation).
func (s *Session) InitiateProject(ctx context.Context, name string) error {
	return s.doJSON(ctx, http.MethodPost, "/vres/projects/initiate",
		map[string]string{"projectName": name}, nil)
}

// SaveProjectDetails saves a project's role assignments and vendor list.
func (s *Session) SaveProjectDetails(ctx context.Context, projectID int64, details ProjectDetails) error {
	path := fmt.Sprintf("/vres/projects/%d/details", projectID)
	return s.doJSON(ctx, http.MethodPut, path, details, nil)
}

// UnassignedUsers lists users not yet assigned a role in the project.
func (s *Session) UnassignedUsers(ctx context.Context, projectID int64) ([]User, error) {
	var out []User
	path := fmt.Sprintf("/vres/projects/%d/unassigned-users", projectID)
	if err := s.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Vendors lists the vendors attached to a project.
func (s *Session) Vendors(ctx context.Context, projectID int64) ([]Vendor, error) {
	var out []Vendor
	path := fmt.Sprintf("/vres/projects/%d/vendors", projectID)
	if err := s.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
