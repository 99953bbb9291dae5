package store

import (
	"context"
	"sync"
	"time"
)

// RateLimitMemoryStore is an in-memory implementation of ratelimit.Store.
// Suitable for tests and single-instance development only; it shares nothing
// across processes.
type RateLimitMemoryStore struct {
	mu       sync.Mutex
	requests map[string][]time.Time
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		requests: make(map[string][]time.Time),
	}
}

func (s *RateLimitMemoryStore) Record(_ context.Context, clientID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests[clientID] = append(s.requests[clientID], at)

	return nil
}

func (s *RateLimitMemoryStore) CountSince(_ context.Context, clientID string, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64

	for _, ts := range s.requests[clientID] {
		if !ts.Before(since) {
			count++
		}
	}

	return count, nil
}

func (s *RateLimitMemoryStore) OldestSince(_ context.Context, clientID string, since time.Time) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		oldest time.Time
		found  bool
	)

	for _, ts := range s.requests[clientID] {
		if ts.Before(since) {
			continue
		}

		if !found || ts.Before(oldest) {
			oldest = ts
			found = true
		}
	}

	return oldest, found, nil
}

func (s *RateLimitMemoryStore) DeleteOlderThan(_ context.Context, threshold time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64

	for clientID, timestamps := range s.requests {
		valid := timestamps[:0]

		for _, ts := range timestamps {
			if ts.Before(threshold) {
				removed++

				continue
			}

			valid = append(valid, ts)
		}

		if len(valid) == 0 {
			delete(s.requests, clientID)

			continue
		}

		s.requests[clientID] = valid
	}

	return removed, nil
}
