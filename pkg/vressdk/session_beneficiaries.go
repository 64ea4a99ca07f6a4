package vressdk

import (
	"context"
	"fmt"
	"net/http"
)

// PendingBeneficiaries lists a department's beneficiaries awaiting checker
// approval.
func (s *Session) PendingBeneficiaries(ctx context.Context, projectID, departmentID int64) ([]Beneficiary, error) {
	var out []Beneficiary
	path := fmt.Sprintf(
		"/vres/projects/%d/departments/%d/beneficiaries?status=pending_approval",
		projectID, departmentID)
	if err := s.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApprovedBeneficiaries lists a project's approved beneficiaries, the input
// to voucher issuance.
func (s *Session) ApprovedBeneficiaries(ctx context.Context, projectID int64) ([]Beneficiary, error) {
	var out []Beneficiary
	path := fmt.Sprintf("/vres/projects/%d/approved-beneficiaries", projectID)
	if err := s.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadBeneficiaries submits a maker's beneficiary list for approval.
func (s *Session) UploadBeneficiaries(ctx context.Context, projectID int64, beneficiaries []Beneficiary) error {
	if len(beneficiaries) == 0 {
		return fmt.Errorf("no beneficiaries to upload")
	}
	path := fmt.Sprintf("/vres/projects/%d/beneficiaries/upload", projectID)
	return s.doJSON(ctx, http.MethodPost, path, beneficiaries, nil)
}

// UpdateBeneficiaryStatus approves or rejects beneficiaries (checker
// operation).
func (s *Session) UpdateBeneficiaryStatus(ctx context.Context, update BeneficiaryStatusUpdate) error {
	if len(update.BeneficiaryIDs) == 0 {
		return fmt.Errorf("no beneficiaries selected")
	}
	if update.Status != "approved" && update.Status != "rejected" {
		return fmt.Errorf("invalid beneficiary status %q", update.Status)
	}
	return s.doJSON(ctx, http.MethodPut, "/vres/beneficiaries/status", update, nil)
}
