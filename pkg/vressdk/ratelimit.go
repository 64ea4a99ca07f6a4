package vressdk

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Client-side rate limits. The backend enforces its own; these keep a
// misbehaving caller (or a retry loop) from hammering it, with a tighter
// budget on credential endpoints.
const (
	authRequestsPerMinute = 5
	apiRequestsPerMinute  = 60
)

type limiterSet struct {
	auth *rate.Limiter // login, vendor-login, password recovery
	api  *rate.Limiter // everything authenticated
}

func newLimiterSet() *limiterSet {
	return &limiterSet{
		auth: rate.NewLimiter(rate.Every(time.Minute/authRequestsPerMinute), authRequestsPerMinute),
		api:  rate.NewLimiter(rate.Every(time.Minute/apiRequestsPerMinute), apiRequestsPerMinute),
	}
}

func (l *limiterSet) waitAuth(ctx context.Context) error { return l.auth.Wait(ctx) }
func (l *limiterSet) waitAPI(ctx context.Context) error  { return l.api.Wait(ctx) }
