package main

import (
	"sync"
	"time"
)

// RateLimiter is a sliding-window per-IP limiter for the webhook
// endpoint. Expired windows are swept opportunistically on Allow so the
// map cannot grow without bound.
type RateLimiter struct {
	mu       sync.RWMutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
}

// Allow reports whether a request from ip is within the limit, and
// records it when it is.
func (rl *RateLimiter) Allow(ip string) bool {
	if rl.limit <= 0 {
		return false
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	timestamps := rl.requests[ip]
	live := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			live = append(live, ts)
		}
	}

	if len(live) >= rl.limit {
		rl.requests[ip] = live
		return false
	}

	rl.requests[ip] = append(live, now)
	rl.sweep(cutoff)
	return true
}

// sweep drops IPs whose every recorded request has left the window.
// Caller holds the lock.
func (rl *RateLimiter) sweep(cutoff time.Time) {
	for ip, timestamps := range rl.requests {
		if len(timestamps) == 0 || !timestamps[len(timestamps)-1].After(cutoff) {
			delete(rl.requests, ip)
		}
	}
}
