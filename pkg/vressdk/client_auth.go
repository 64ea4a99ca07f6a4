package vressdk

import (
	"context"
	"fmt"
	"net/http"
)

// Login authenticates a console user with credentials.
func (c *Client) Login(ctx context.Context, userID, password string) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/vres/auth/login",
		LoginRequest{UserID: userID, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.JWTToken == "" {
		return nil, fmt.Errorf("login response missing token")
	}
	return &resp, nil
}

// VendorLogin authenticates a redemption vendor.
func (c *Client) VendorLogin(ctx context.Context, userID, password string) (*VendorLoginResponse, error) {
	var resp VendorLoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/vres/auth/vendor-login",
		LoginRequest{UserID: userID, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.JWTToken == "" {
		return nil, fmt.Errorf("vendor login response missing token")
	}
	return &resp, nil
}

// ForgotPassword asks the backend to send a reset OTP to the given email.
// The backend answers success whether or not the account exists; OTP
// issuance and checking are entirely its concern.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, "/vres/auth/forgot-password",
		map[string]string{"email": email}, nil)
}

// ResetPassword completes password recovery with the backend-issued OTP.
func (c *Client) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	return c.doJSON(ctx, http.MethodPost, "/vres/auth/reset-password",
		map[string]string{"email": email, "otp": otp, "newPassword": newPassword}, nil)
}
