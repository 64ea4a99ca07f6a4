package vressdk

// ============================================================================
// Authentication
// ============================================================================

// LoginRequest is the console login payload.
type LoginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

// ProjectAssignment is one project the user holds a role in, per the login
// response.
type ProjectAssignment struct {
	ProjectID    int64  `json:"projectId"`
	ProjectName  string `json:"projectName"`
	Role         string `json:"role"`
	DepartmentID int64  `json:"departmentId,omitempty"`
}

// LoginResponse is the console login response.
type LoginResponse struct {
	JWTToken string              `json:"jwtToken"`
	UserID   string              `json:"userId"`
	Name     string              `json:"name"`
	Role     string              `json:"role"`
	Projects []ProjectAssignment `json:"projects"`
}

// VendorLoginResponse is the mobile vendor login response.
type VendorLoginResponse struct {
	JWTToken string `json:"jwtToken"`
	UserID   int64  `json:"userId"`
}

// ============================================================================
// Projects and users
// ============================================================================

type Project struct {
	ProjectID   int64  `json:"projectId"`
	ProjectName string `json:"projectName"`
	Status      string `json:"status"`
}

// ProjectDetails is the roles/vendors payload saved by a coordinator.
type ProjectDetails struct {
	Assignments []ProjectAssignment `json:"assignments,omitempty"`
	VendorIDs   []int64             `json:"vendors,omitempty"`
}

type User struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
}

type NewUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// ============================================================================
// Beneficiaries and vouchers
// ============================================================================

type Beneficiary struct {
	BeneficiaryID int64  `json:"beneficiaryId"`
	Name          string `json:"name"`
	Status        string `json:"status"`
}

// BeneficiaryStatusUpdate moves beneficiaries through the maker/checker
// approval flow.
type BeneficiaryStatusUpdate struct {
	ProjectID      int64   `json:"projectId"`
	DepartmentID   int64   `json:"departmentId,omitempty"`
	BeneficiaryIDs []int64 `json:"beneficiaryIds"`
	Status         string  `json:"status"` // approved | rejected
}

// IssueVouchersRequest creates vouchers for approved beneficiaries.
// Validity dates are "YYYY-MM-DD".
type IssueVouchersRequest struct {
	VoucherPoints  int64   `json:"voucherPoints"`
	BeneficiaryIDs []int64 `json:"beneficiaryIds"`
	ValidityStart  string  `json:"validityStart"`
	ValidityEnd    string  `json:"validityEnd"`
	VendorIDs      []int64 `json:"vendors"`
}

type Vendor struct {
	VendorID int64  `json:"vendorId"`
	Name     string `json:"name"`
}

// ============================================================================
// Redemption
// ============================================================================

type InitiateRedemptionRequest struct {
	VoucherCode string `json:"voucherCode"`
	VendorID    int64  `json:"vendorId"`
}

// MessageResponse is the generic {"message": ...} acknowledgement several
// endpoints return.
type MessageResponse struct {
	Message string `json:"message"`
}

type ConfirmRedemptionRequest struct {
	VoucherCode       string  `json:"voucherCode"`
	OTP               string  `json:"otp"`
	VendorID          int64   `json:"vendorId"`
	GeoLat            float64 `json:"geo_lat"`
	GeoLon            float64 `json:"geo_lon"`
	DeviceFingerprint string  `json:"deviceFingerprint"`
}

// ============================================================================
// Dashboard
// ============================================================================

// ProjectDashboard is the per-project aggregate view. The backend owns the
// shape; the client binds the counters it renders.
type ProjectDashboard struct {
	ProjectID           int64        `json:"projectId"`
	TotalBeneficiaries  int64        `json:"totalBeneficiaries"`
	VouchersIssued      int64        `json:"vouchersIssued"`
	VouchersRedeemed    int64        `json:"vouchersRedeemed"`
	VouchersOutstanding int64        `json:"vouchersOutstanding"`
	Vouchers            []Voucher    `json:"vouchers,omitempty"`
	Redemptions         []Redemption `json:"redemptions,omitempty"`
}

type Voucher struct {
	VoucherCode   string `json:"voucherCode"`
	BeneficiaryID int64  `json:"beneficiaryId"`
	Points        int64  `json:"voucherPoints"`
	Status        string `json:"voucherStatus"`
	ValidityStart string `json:"validityStart"`
	ValidityEnd   string `json:"validityEnd"`
}

type Redemption struct {
	VoucherCode  string `json:"voucherCode"`
	VendorID     int64  `json:"vendorId"`
	RedeemedDate string `json:"redeemed_date"`
}
