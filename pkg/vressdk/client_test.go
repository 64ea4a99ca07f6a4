package vressdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/vres/auth/login", r.URL.Path)

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "asha", req.UserID)

		json.NewEncoder(w).Encode(LoginResponse{
			JWTToken: "tok-1",
			UserID:   "u-1",
			Name:     "Asha",
			Role:     "PROJECT COORDINATOR",
			Projects: []ProjectAssignment{{ProjectID: 1, ProjectName: "Flood Relief", Role: "MAKER", DepartmentID: 7}},
		})
	})

	resp, err := c.Login(context.Background(), "asha", "pw")
	require.NoError(t, err)
	require.Equal(t, "tok-1", resp.JWTToken)
	require.Len(t, resp.Projects, 1)
	require.EqualValues(t, 7, resp.Projects[0].DepartmentID)
}

func TestLoginRejectsMissingToken(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(LoginResponse{Name: "Asha"})
	})

	_, err := c.Login(context.Background(), "asha", "pw")
	require.ErrorContains(t, err, "missing token")
}

func TestLoginSurfacesBackendMessage(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials. Please try again."})
	})

	_, err := c.Login(context.Background(), "asha", "wrong")
	require.ErrorContains(t, err, "Invalid credentials")
	require.True(t, IsAuthError(err))
}

func TestSessionSendsBearerToken(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-9", r.Header.Get("Authorization"))
		require.Equal(t, "/vres/projects", r.URL.Path)
		json.NewEncoder(w).Encode([]Project{{ProjectID: 3, ProjectName: "Winter Aid"}})
	})

	projects, err := c.WithToken("tok-9").Projects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.EqualValues(t, 3, projects[0].ProjectID)
}

func TestInitiateRedemption(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/vres/redemption/initiate", r.URL.Path)

		var req InitiateRedemptionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "VC-42", req.VoucherCode)
		require.EqualValues(t, 5, req.VendorID)

		json.NewEncoder(w).Encode(MessageResponse{Message: "OTP sent to beneficiary"})
	})

	resp, err := c.WithToken("tok").InitiateRedemption(context.Background(),
		InitiateRedemptionRequest{VoucherCode: "VC-42", VendorID: 5})
	require.NoError(t, err)
	require.Equal(t, "OTP sent to beneficiary", resp.Message)
}

func TestIssueVouchersValidatesLocally(t *testing.T) {
	t.Parallel()

	called := false
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	sess := c.WithToken("tok")
	ctx := context.Background()

	t.Run("end before start", func(t *testing.T) {
		_, err := sess.IssueVouchers(ctx, 1, IssueVouchersRequest{
			VoucherPoints:  100,
			BeneficiaryIDs: []int64{1},
			ValidityStart:  "2026-05-01",
			ValidityEnd:    "2026-04-01",
		})
		require.ErrorContains(t, err, "end date cannot be before")
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := sess.IssueVouchers(ctx, 1, IssueVouchersRequest{VoucherPoints: 100})
		require.ErrorContains(t, err, "required fields")
	})

	t.Run("no project", func(t *testing.T) {
		_, err := sess.IssueVouchers(ctx, 0, IssueVouchersRequest{})
		require.ErrorContains(t, err, "no project selected")
	})

	// Local validation failures never reach the backend.
	require.False(t, called)
}

func TestServerErrorWithEmptyBody(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.WithToken("tok").Projects(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestTransportErrorKeepsUnderlyingText(t *testing.T) {
	t.Parallel()

	c := NewClient("http://127.0.0.1:1") // nothing listens here
	_, err := c.WithToken("tok").Projects(context.Background())
	require.Error(t, err)
	require.ErrorContains(t, err, "request failed")
}
