package vressdk

import (
	"context"
	"fmt"
	"net/http"
)

// IssueVouchers creates vouchers for approved beneficiaries. Required
// fields and the validity date range are checked locally; a request that
// would certainly fail never reaches the backend.
func (s *Session) IssueVouchers(ctx context.Context, projectID int64, req IssueVouchersRequest) (*MessageResponse, error) {
	if projectID == 0 {
		return nil, fmt.Errorf("no project selected")
	}
	if req.VoucherPoints <= 0 || len(req.BeneficiaryIDs) == 0 ||
		req.ValidityStart == "" || req.ValidityEnd == "" {
		return nil, fmt.Errorf("please fill all required fields")
	}
	// Dates are YYYY-MM-DD, so string order is date order.
	if req.ValidityEnd < req.ValidityStart {
		return nil, fmt.Errorf("voucher validity end date cannot be before the start date")
	}

	var out MessageResponse
	path := fmt.Sprintf("/vres/projects/%d/vouchers", projectID)
	if err := s.doJSON(ctx, http.MethodPost, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
