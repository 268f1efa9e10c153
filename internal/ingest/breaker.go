package ingest

import (
	"sync"
	"time"
)

const (
	breakerFailureThreshold  = 3
	breakerResetAfter        = 5 * time.Minute
	breakerHalfOpenSuccesses = 2
)

type circuitState int

const (
	circuitClosed circuitState = iota
	circuitOpen
	circuitHalfOpen
)

// circuitBreaker shields a platform from repeated doomed fetches. Three
// consecutive failures open the circuit; after the reset window probe
// fetches are let through, two probe successes close it again and a probe
// failure reopens it.
type circuitBreaker struct {
	mu           sync.Mutex
	state        circuitState
	failures     int
	successCount int
	lastFailure  time.Time
}

func newCircuitBreaker() *circuitBreaker {
	return &circuitBreaker{state: circuitClosed}
}

func (cb *circuitBreaker) canAttempt() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case circuitClosed, circuitHalfOpen:
		return true
	case circuitOpen:
		if time.Since(cb.lastFailure) > breakerResetAfter {
			cb.state = circuitHalfOpen
			cb.successCount = 0

			return true
		}

		return false
	default:
		return false
	}
}

func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0

	if cb.state == circuitHalfOpen {
		cb.successCount++
		if cb.successCount >= breakerHalfOpenSuccesses {
			cb.state = circuitClosed
		}
	}
}

// recordFailure counts a failure and reports whether it tripped the
// circuit open.
func (cb *circuitBreaker) recordFailure() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailure = time.Now()

	if cb.state == circuitHalfOpen {
		cb.state = circuitOpen

		return true
	}

	if cb.state == circuitClosed && cb.failures >= breakerFailureThreshold {
		cb.state = circuitOpen

		return true
	}

	return false
}
