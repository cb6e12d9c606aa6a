// Package backoff wraps github.com/jpillora/backoff with the jittered
// exponential policy the teacher's monitoring.go hand-rolled
// (addJitter: a 0.8-1.2x multiplier) so Connection.connect() and the health
// monitor's reconnect loop share one implementation instead of two.
package backoff

import (
	"math/rand"
	"time"

	"github.com/jpillora/backoff"
)

// Policy configures a retry schedule. Exponential toggles doubling; when
// false every attempt waits Min.
type Policy struct {
	Min         time.Duration
	Max         time.Duration
	Exponential bool
	Jitter      bool
}

// Backoff produces the successive delays of a retry loop and tracks attempt
// count; NewTicker-style re-use across a call is achieved by calling Reset.
type Backoff struct {
	b   *backoff.Backoff
	cfg Policy
}

func New(cfg Policy) *Backoff {
	factor := 1.0
	if cfg.Exponential {
		factor = 2.0
	}
	return &Backoff{
		b: &backoff.Backoff{
			Min:    cfg.Min,
			Max:    cfg.Max,
			Factor: factor,
			Jitter: false, // jitter applied ourselves, see Duration()
		},
		cfg: cfg,
	}
}

// Duration returns the next delay in the schedule and advances the
// attempt counter.
func (b *Backoff) Duration() time.Duration {
	d := b.b.Duration()
	if !b.cfg.Exponential {
		d = b.cfg.Min
	}
	if d > b.cfg.Max {
		d = b.cfg.Max
	}
	if b.cfg.Jitter {
		d = addJitter(d)
	}
	return d
}

func (b *Backoff) Attempt() int { return int(b.b.Attempt()) }

func (b *Backoff) Reset() { b.b.Reset() }

// addJitter applies a 0.8-1.2x multiplier, the same spread the teacher's
// monitoring.go used to keep a reconnect storm from synchronizing.
func addJitter(d time.Duration) time.Duration {
	multiplier := 0.8 + 0.4*rand.Float64()
	return time.Duration(float64(d) * multiplier)
}
