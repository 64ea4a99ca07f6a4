// Package redeem drives the vendor redemption flow:
//
//	Idle -> CodeAcquired -> OtpEntry -> Confirmed
//
// Initiate and Confirm talk to the backend; everything in between is local
// and must stay correct across interruptions. A code whose initiate call
// succeeded is cached durably so the OTP step can resume after a restart.
package redeem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/infosharesystems/vres-client/internal/client/device"
	"github.com/infosharesystems/vres-client/internal/client/domain"
	"github.com/infosharesystems/vres-client/internal/client/store"
	"github.com/infosharesystems/vres-client/pkg/idx"
	"github.com/infosharesystems/vres-client/pkg/vressdk"
)

// State is the redemption sequencer state.
type State int

const (
	Idle State = iota
	CodeAcquired
	OtpEntry
	Confirmed
)

func (s State) String() string {
	switch s {
	case CodeAcquired:
		return "code-acquired"
	case OtpEntry:
		return "otp-entry"
	case Confirmed:
		return "confirmed"
	default:
		return "idle"
	}
}

// Indicator is a short-lived UI flag. It clears itself after
// indicatorWindow; read it through Sequencer.Indicator.
type Indicator string

const (
	IndicatorNone          Indicator = ""
	IndicatorInvalidOTP    Indicator = "invalid-otp"
	IndicatorRedeemSuccess Indicator = "redeem-success"
	IndicatorRedeemFailed  Indicator = "redeem-failed"
	IndicatorCodeRecovered Indicator = "code-recovered"
)

const indicatorWindow = 1500 * time.Millisecond

// cachedCodeTTL bounds how long a recovered code is still worth resuming.
const cachedCodeTTL = 24 * time.Hour

var (
	// ErrBusy means a redemption step is still in flight.
	ErrBusy = errors.New("redeem: operation already in flight")

	// ErrReauthenticate means the vendor token or vendor id is missing.
	// No request leaves the device; the vendor must log in again.
	ErrReauthenticate = errors.New("redeem: please re-authenticate")

	// ErrNoCode means Initiate was called without an acquired code.
	ErrNoCode = errors.New("redeem: no voucher code acquired")

	// ErrNotAwaitingOTP means Confirm was called outside the OTP step.
	ErrNotAwaitingOTP = errors.New("redeem: not awaiting OTP entry")

	// ErrInvalidOTP is the local length check: exactly six digits. The
	// input never reaches the backend.
	ErrInvalidOTP = errors.New("redeem: OTP must be 6 digits")
)

// CodeSource produces one voucher code, from the camera or the keyboard.
// Release stops the underlying device and is called on every exit path of
// AcquireCode, including errors and cancellation.
type CodeSource interface {
	Acquire(ctx context.Context) (string, error)
	Release() error
}

// Sequencer owns the vendor-side redemption state machine. One instance per
// logged-in vendor; steps are serialized, a second call while one is in
// flight fails fast with ErrBusy.
type Sequencer struct {
	client *vressdk.Client
	store  store.Store
	logger *slog.Logger
	now    func() time.Time

	gate chan struct{}

	mu        sync.RWMutex
	state     State
	token     string
	vendorID  int64
	code      string
	method    domain.AcquireMethod
	indicator Indicator
	indUntil  time.Time
}

func NewSequencer(client *vressdk.Client, st store.Store, logger *slog.Logger) *Sequencer {
	s := &Sequencer{
		client: client,
		store:  st,
		logger: logger,
		now:    time.Now,
		gate:   make(chan struct{}, 1),
	}
	s.gate <- struct{}{}
	return s
}

func (s *Sequencer) begin() (func(), error) {
	select {
	case <-s.gate:
		return func() { s.gate <- struct{}{} }, nil
	default:
		return nil, ErrBusy
	}
}

// State returns the current sequencer state.
func (s *Sequencer) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Code returns the currently held voucher code, if any.
func (s *Sequencer) Code() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.code
}

// Indicator returns the active transient flag, or IndicatorNone once the
// display window has passed.
func (s *Sequencer) Indicator() Indicator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.now().After(s.indUntil) {
		return IndicatorNone
	}
	return s.indicator
}

func (s *Sequencer) setIndicator(i Indicator) {
	s.indicator = i
	s.indUntil = s.now().Add(indicatorWindow)
}

// VendorLogin authenticates the vendor and arms the sequencer.
func (s *Sequencer) VendorLogin(ctx context.Context, userID, password string) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	resp, err := s.client.VendorLogin(ctx, userID, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = resp.JWTToken
	s.vendorID = resp.UserID
	s.mu.Unlock()

	s.logger.Info("vendor logged in", "vendor", resp.UserID)
	return nil
}

// Logout drops the vendor credentials, clears any cached voucher code, and
// resets to Idle. The history survives: it belongs to the device, not the
// login. A later vendor must not resume this session's pending redemption.
func (s *Sequencer) Logout(ctx context.Context) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	if err := s.store.VoucherCache().Clear(ctx); err != nil {
		return fmt.Errorf("clear voucher cache: %w", err)
	}

	s.mu.Lock()
	s.token = ""
	s.vendorID = 0
	s.code = ""
	s.method = ""
	s.state = Idle
	s.mu.Unlock()
	return nil
}

// AcquireCode obtains a voucher code from src. The source is released on
// every path out of this function; a failed or cancelled acquisition leaves
// the sequencer in Idle.
func (s *Sequencer) AcquireCode(ctx context.Context, src CodeSource, method domain.AcquireMethod) (err error) {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	defer func() {
		if rerr := src.Release(); rerr != nil && err == nil {
			err = fmt.Errorf("release code source: %w", rerr)
		}
	}()

	code, err := src.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire voucher code: %w", err)
	}
	if code == "" {
		return fmt.Errorf("acquire voucher code: empty code")
	}

	s.mu.Lock()
	s.code = code
	s.method = method
	s.state = CodeAcquired
	s.mu.Unlock()

	s.logger.Info("voucher code acquired", "method", string(method))
	return nil
}

// Initiate asks the backend to start redemption of the acquired code. The
// vendor token and id are checked locally first; when either is missing no
// request leaves the device. On success the code is cached durably and the
// sequencer moves to OTP entry. On failure the code is kept so the vendor
// can retry.
func (s *Sequencer) Initiate(ctx context.Context) (string, error) {
	done, err := s.begin()
	if err != nil {
		return "", err
	}
	defer done()

	s.mu.RLock()
	state, code, method, token, vendorID := s.state, s.code, s.method, s.token, s.vendorID
	s.mu.RUnlock()

	if state != CodeAcquired {
		return "", ErrNoCode
	}
	if token == "" || vendorID == 0 {
		return "", ErrReauthenticate
	}

	resp, err := s.client.WithToken(token).InitiateRedemption(ctx, vressdk.InitiateRedemptionRequest{
		VoucherCode: code,
		VendorID:    vendorID,
	})
	if err != nil {
		s.logger.Warn("initiate redemption failed", "error", err)
		return "", err
	}

	if err := s.store.VoucherCache().Put(ctx, domain.CachedCode{
		Code:       code,
		Method:     method,
		AcquiredAt: s.now(),
	}); err != nil {
		return "", fmt.Errorf("cache voucher code: %w", err)
	}

	s.mu.Lock()
	s.state = OtpEntry
	s.mu.Unlock()

	s.logger.Info("redemption initiated, awaiting OTP")
	return resp.Message, nil
}

// Confirm completes the redemption with the beneficiary's OTP. A
// malformed OTP is rejected locally with a transient indicator and never
// sent. Backend acceptance clears the cached code and appends a Success
// history record; rejection appends a Failed record and stays in OTP entry
// for another attempt.
func (s *Sequencer) Confirm(ctx context.Context, otp string, geo domain.Geo) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	s.mu.RLock()
	state, code, token, vendorID, method := s.state, s.code, s.token, s.vendorID, s.method
	s.mu.RUnlock()

	if state != OtpEntry {
		return ErrNotAwaitingOTP
	}
	if !validOTP(otp) {
		s.mu.Lock()
		s.setIndicator(IndicatorInvalidOTP)
		s.mu.Unlock()
		return ErrInvalidOTP
	}
	if token == "" || vendorID == 0 {
		return ErrReauthenticate
	}

	err = s.client.WithToken(token).ConfirmRedemption(ctx, vressdk.ConfirmRedemptionRequest{
		VoucherCode:       code,
		OTP:               otp,
		VendorID:          vendorID,
		GeoLat:            geo.Lat,
		GeoLon:            geo.Lon,
		DeviceFingerprint: device.Fingerprint(),
	})

	status := domain.RedemptionSuccess
	if err != nil {
		status = domain.RedemptionFailed
	}
	record := domain.RedemptionRecord{
		ID:        idx.New().String(),
		Code:      code,
		Method:    method,
		Status:    status,
		CreatedAt: s.now(),
	}
	if herr := s.store.Redemptions().Append(ctx, record); herr != nil {
		s.logger.Warn("append redemption history failed", "error", herr)
	}

	if err != nil {
		s.mu.Lock()
		s.setIndicator(IndicatorRedeemFailed)
		s.mu.Unlock()
		s.logger.Warn("confirm redemption failed", "error", err)
		return err
	}

	if cerr := s.store.VoucherCache().Clear(ctx); cerr != nil {
		s.logger.Warn("clear voucher cache failed", "error", cerr)
	}

	s.mu.Lock()
	s.code = ""
	s.method = ""
	s.state = Confirmed
	s.setIndicator(IndicatorRedeemSuccess)
	s.mu.Unlock()

	s.logger.Info("redemption confirmed")
	return nil
}

// Cancel abandons the in-memory flow and returns to Idle. The durable code
// cache is left alone so an initiated redemption can still be recovered.
func (s *Sequencer) Cancel() error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()

	s.mu.Lock()
	s.code = ""
	s.method = ""
	s.state = Idle
	s.mu.Unlock()
	return nil
}

// Recover resumes an interrupted redemption from the durable code cache.
// A cached code older than cachedCodeTTL is discarded; its OTP will long
// have expired on the backend. Returns the recovered code, or "" when
// there was nothing to resume.
func (s *Sequencer) Recover(ctx context.Context) (string, error) {
	done, err := s.begin()
	if err != nil {
		return "", err
	}
	defer done()

	cached, err := s.store.VoucherCache().Get(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("read voucher cache: %w", err)
	}

	if s.now().Sub(cached.AcquiredAt) > cachedCodeTTL {
		if err := s.store.VoucherCache().Clear(ctx); err != nil {
			return "", fmt.Errorf("discard stale voucher cache: %w", err)
		}
		s.logger.Info("discarded stale cached voucher code")
		return "", nil
	}

	s.mu.Lock()
	s.code = cached.Code
	s.method = cached.Method
	s.state = OtpEntry
	s.setIndicator(IndicatorCodeRecovered)
	s.mu.Unlock()

	s.logger.Info("recovered cached voucher code")
	return cached.Code, nil
}

// History returns the durable redemption history, newest first.
func (s *Sequencer) History(ctx context.Context) ([]domain.RedemptionRecord, error) {
	return s.store.Redemptions().List(ctx)
}

func validOTP(otp string) bool {
	if len(otp) != 6 {
		return false
	}
	for _, r := range otp {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
