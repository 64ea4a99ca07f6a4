package vressdk

import (
	"context"
	"net/http"
)

// InitiateRedemption starts redeeming a voucher: the backend validates the
// code against the vendor and sends the beneficiary an OTP.
func (s *Session) InitiateRedemption(ctx context.Context, req InitiateRedemptionRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := s.doJSON(ctx, http.MethodPost, "/vres/redemption/initiate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmRedemption finalizes a redemption with the beneficiary's OTP.
func (s *Session) ConfirmRedemption(ctx context.Context, req ConfirmRedemptionRequest) error {
	return s.doJSON(ctx, http.MethodPost, "/vres/redemption/confirm", req, nil)
}
