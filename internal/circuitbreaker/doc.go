// Package circuitbreaker implements the circuit breaker pattern for the
// upstream origin.
//
// A circuit breaker stops the gateway from hammering a failing origin by
// temporarily short-circuiting fetches. It has three states:
//
//   - CLOSED: Normal operation, fetches pass through
//   - OPEN: Origin failing, fetches blocked
//   - HALF-OPEN: Testing if the origin recovered
//
// Usage:
//
//	cb := circuitbreaker.NewCircuitBreaker(5, 30*time.Second)
//	if cb.Allow() {
//	    // Fetch from origin...
//	    if err != nil {
//	        cb.RecordFailure()
//	    } else {
//	        cb.RecordSuccess()
//	    }
//	}
package circuitbreaker
