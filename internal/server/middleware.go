package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RateLimiter caps inbound message rate per client with a sliding window,
// so one abusive connection cannot drown the rooms it shares.
type RateLimiter struct {
	maxRequests int
	window      time.Duration
	requests    map[uuid.UUID][]time.Time
	mu          sync.Mutex
}

func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		requests:    make(map[uuid.UUID][]time.Time),
	}
}

// Allow reports whether the client may send another message now, and
// records the attempt if so.
func (r *RateLimiter) Allow(clientID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-r.window)

	timestamps := r.requests[clientID]
	valid := make([]time.Time, 0, len(timestamps))
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= r.maxRequests {
		r.requests[clientID] = valid
		return false
	}

	r.requests[clientID] = append(valid, now)
	return true
}

// Cleanup drops entries for clients with no activity inside the window.
// Run periodically so long-gone connections do not pin memory.
func (r *RateLimiter) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-r.window)
	for clientID, timestamps := range r.requests {
		recent := false
		for _, ts := range timestamps {
			if ts.After(cutoff) {
				recent = true
				break
			}
		}
		if !recent {
			delete(r.requests, clientID)
		}
	}
}

// RemoveConnection drops rate-limit state when a client disconnects.
func (r *RateLimiter) RemoveConnection(clientID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.requests, clientID)
}
