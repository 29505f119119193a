package payment

import (
	"context"
	"time"

	"madrush/storefront/internal/domain"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
)

// Poll statuses beyond the backend's own payment statuses.
const (
	StatusTimeout = "timeout"
	StatusAborted = "aborted"
)

const (
	defaultMaxAttempts = 10
	defaultInterval    = 3 * time.Second
)

// Verifier is the slice of the API client the poller needs.
type Verifier interface {
	VerifyPayment(ctx context.Context, reference string) (*domain.VerifyResponse, error)
}

type Options struct {
	Reference   string
	MaxAttempts int           // defaults to 10
	Interval    time.Duration // base delay, defaults to 3s

	// OnStatusChange is invoked synchronously with each status the backend
	// reports, including non-terminal ones.
	OnStatusChange func(domain.PaymentStatus)
}

type Result struct {
	Success  bool
	Status   string
	Data     *domain.VerifyData
	Attempts int
	Aborted  bool
}

// Poller repeatedly checks a payment reference against the verification
// endpoint until a terminal status or the attempt budget runs out. Delays
// run on an injected clock so the schedule is testable.
type Poller struct {
	verifier Verifier
	clock    clock.Clock
}

func NewPoller(verifier Verifier) *Poller {
	return &Poller{verifier: verifier, clock: clock.New()}
}

func NewPollerWithClock(verifier Verifier, clk clock.Clock) *Poller {
	return &Poller{verifier: verifier, clock: clk}
}

// Poll runs the verification loop. Transient request errors and malformed
// responses count as "still pending" and burn an attempt; only a terminal
// backend status, cancellation or attempt exhaustion ends the loop.
// Cancellation is cooperative: an in-flight request is not interrupted, the
// next attempt is skipped.
func (p *Poller) Poll(ctx context.Context, opts Options) Result {
	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	attempts := 0
	for i := 0; i < maxAttempts; i++ {
		if ctx.Err() != nil {
			return Result{Status: StatusAborted, Attempts: i, Aborted: true}
		}

		attempts = i + 1
		log.Debugf("Payment verification attempt %d/%d for %s", attempts, maxAttempts, opts.Reference)

		resp, err := p.verifier.VerifyPayment(ctx, opts.Reference)
		switch {
		case err != nil:
			log.Warnf("Verification attempt %d for %s failed: %v", attempts, opts.Reference, err)
		case resp == nil || !resp.Status || resp.Data == nil:
			log.Warnf("Invalid verification response on attempt %d for %s", attempts, opts.Reference)
		default:
			status := resp.Data.Status
			if opts.OnStatusChange != nil {
				opts.OnStatusChange(status)
			}

			switch {
			case status == domain.PaymentSuccess:
				log.Infof("✅ Payment %s confirmed on attempt %d", opts.Reference, attempts)
				return Result{Success: true, Status: string(status), Data: resp.Data, Attempts: attempts}
			case status.Terminal():
				// failed or cancelled
				log.Warnf("Payment %s %s on attempt %d", opts.Reference, status, attempts)
				return Result{Status: string(status), Data: resp.Data, Attempts: attempts}
			}

			log.Debugf("Payment %s still pending (status %s)", opts.Reference, status)
		}

		// No wait after the final attempt.
		if i < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return Result{Status: StatusAborted, Attempts: attempts, Aborted: true}
			case <-p.clock.After(backoffDelay(i, interval)):
			}
		}
	}

	log.Warnf("Payment verification for %s timed out after %d attempts", opts.Reference, attempts)
	return Result{Status: StatusTimeout, Attempts: attempts}
}

// backoffDelay maps an attempt index onto the tiered schedule: with the 3s
// base that is 3,3,5,5,10,10,15,15,20,20 seconds.
func backoffDelay(attemptIndex int, base time.Duration) time.Duration {
	switch {
	case attemptIndex < 2:
		return base
	case attemptIndex < 4:
		return base + 2*time.Second
	case attemptIndex < 6:
		return base + 7*time.Second
	case attemptIndex < 8:
		return base + 12*time.Second
	default:
		return base + 17*time.Second
	}
}
