package domain

import "time"

// AcquireMethod records how a voucher code reached the app.
type AcquireMethod string

const (
	AcquireScan   AcquireMethod = "scan"
	AcquireManual AcquireMethod = "manual"
)

// RedemptionStatus is the terminal state of a redemption attempt as shown
// in the history list.
type RedemptionStatus string

const (
	RedemptionSuccess RedemptionStatus = "Success"
	RedemptionFailed  RedemptionStatus = "Failed"
	RedemptionPending RedemptionStatus = "Pending"
)

// CachedCode is a voucher code whose initiate call succeeded but whose OTP
// confirmation has not completed. It survives app restarts so an
// interrupted redemption can be resumed with the method it was acquired by.
type CachedCode struct {
	Code       string
	Method     AcquireMethod
	AcquiredAt time.Time
}

// RedemptionRecord is one entry of the vendor's durable redemption history.
type RedemptionRecord struct {
	ID        string // ULID
	Code      string
	Method    AcquireMethod
	Status    RedemptionStatus
	CreatedAt time.Time
}

// Geo is an optional device location attached to a confirm call.
type Geo struct {
	Lat float64
	Lon float64
}
