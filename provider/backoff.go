package provider

import (
	"math/rand"
	"time"
)

// RetryPolicy bounds the transport-level retries for transient network
// failures. Chain-level rejections are never retried here.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Jitter     float64
}

var DefaultRetryPolicy = RetryPolicy{
	MaxRetries: 3,
	BaseDelay:  250 * time.Millisecond,
	MaxDelay:   2 * time.Second,
	Jitter:     0.25,
}

// delay returns the exponential backoff duration before retry attempt
// (1-indexed), with jitter applied.
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay << (attempt - 1)
	if d <= 0 || d > p.MaxDelay {
		d = p.MaxDelay
	}
	if p.Jitter > 0 {
		factor := 1 + (rand.Float64()*2-1)*min(p.Jitter, 1)
		d = time.Duration(float64(d) * factor)
	}
	return d
}
