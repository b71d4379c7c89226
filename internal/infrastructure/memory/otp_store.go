// Package memory provides the process-local OTP store.
//
// Records are keyed by the lower-cased email. A record is valid while
// now-IssuedAt <= expiry; expired records are removed lazily on Get and by a
// full sweep on every Set, so no background goroutine is needed for
// correctness. Run adds an optional periodic sweep on top.
//
// State is not shared between processes. Running more than one instance
// requires a shared store in front of the verification service.
package memory

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bowling-bff/internal/domain"
	"github.com/bowling-bff/internal/pkg/clock"
)

// DefaultExpiry is how long an issued code stays valid unless Options.Expiry says otherwise.
const DefaultExpiry = 5 * time.Minute

const (
	codeMin  = 100000
	codeSpan = 900000 // codes fall in [100000, 999999]
)

// Options configures an OTPStore. Zero values select the defaults.
type Options struct {
	Expiry time.Duration
	// MaxEntries caps the number of live records; oldest-first eviction once exceeded. 0 means unbounded.
	MaxEntries int
	Clock      clock.Clock
}

// OTPStore holds at most one outstanding code per identifier. Safe for concurrent use.
type OTPStore struct {
	mu         sync.Mutex
	records    map[string]domain.OTPRecord
	clock      clock.Clock
	expiry     time.Duration
	maxEntries int
}

func NewOTPStore(opts Options) *OTPStore {
	if opts.Expiry <= 0 {
		opts.Expiry = DefaultExpiry
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.MaxEntries < 0 {
		opts.MaxEntries = 0
	}
	return &OTPStore{
		records:    make(map[string]domain.OTPRecord),
		clock:      opts.Clock,
		expiry:     opts.Expiry,
		maxEntries: opts.MaxEntries,
	}
}

// GenerateCode returns a uniformly distributed 6-digit code in [100000, 999999].
// Uses crypto/rand.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

// Generate returns a fresh code. It does not touch the store.
func (s *OTPStore) Generate() (string, error) {
	return GenerateCode()
}

// ExpiryDuration returns how long a code stays valid after Set.
func (s *OTPStore) ExpiryDuration() time.Duration {
	return s.expiry
}

// Set stores code for identifier, replacing any previous record, then sweeps
// every expired record from the store.
func (s *OTPStore) Set(identifier, code string) {
	key := normalize(identifier)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.records[key] = domain.OTPRecord{Code: code, IssuedAt: now}
	s.sweepLocked(now)
	s.evictLocked(key)
}

// Get returns the record for identifier. Expired records are deleted and reported as absent.
func (s *OTPStore) Get(identifier string) (domain.OTPRecord, bool) {
	key := normalize(identifier)

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return domain.OTPRecord{}, false
	}
	if s.expired(rec, s.clock.Now()) {
		delete(s.records, key)
		return domain.OTPRecord{}, false
	}
	return rec, true
}

// Delete removes the record for identifier, if any.
func (s *OTPStore) Delete(identifier string) {
	key := normalize(identifier)

	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
}

// IsValid reports whether a live record exists for identifier and its code equals code exactly.
func (s *OTPStore) IsValid(identifier, code string) bool {
	rec, ok := s.Get(identifier)
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) == 1
}

// Consume atomically checks code and removes the record when it matches.
// It returns the removed record so a caller that fails afterwards can Restore it.
// A wrong code leaves the record in place.
func (s *OTPStore) Consume(identifier, code string) (domain.OTPRecord, bool) {
	key := normalize(identifier)

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return domain.OTPRecord{}, false
	}
	if s.expired(rec, s.clock.Now()) {
		delete(s.records, key)
		return domain.OTPRecord{}, false
	}
	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		return domain.OTPRecord{}, false
	}
	delete(s.records, key)
	return rec, true
}

// Restore puts back a record taken by Consume, keeping its original IssuedAt.
// It is a no-op when a newer record was Set for identifier in the meantime.
func (s *OTPStore) Restore(identifier string, rec domain.OTPRecord) {
	key := normalize(identifier)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.records[key]; taken {
		return
	}
	s.records[key] = rec
}

// Sweep removes every expired record and returns how many were removed.
func (s *OTPStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.clock.Now())
}

// Len returns the number of records held, expired or not.
func (s *OTPStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Run sweeps the store every interval until ctx is cancelled.
func (s *OTPStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.Debug("otp sweep", "removed", n)
			}
		}
	}
}

func (s *OTPStore) expired(rec domain.OTPRecord, now time.Time) bool {
	return now.Sub(rec.IssuedAt) > s.expiry
}

func (s *OTPStore) sweepLocked(now time.Time) int {
	removed := 0
	for key, rec := range s.records {
		if s.expired(rec, now) {
			delete(s.records, key)
			removed++
		}
	}
	return removed
}

// evictLocked drops the oldest records until the store fits maxEntries. keep is never evicted.
func (s *OTPStore) evictLocked(keep string) {
	if s.maxEntries == 0 {
		return
	}
	for len(s.records) > s.maxEntries {
		var (
			oldestKey string
			oldestAt  time.Time
			found     bool
		)
		for key, rec := range s.records {
			if key == keep {
				continue
			}
			if !found || rec.IssuedAt.Before(oldestAt) {
				oldestKey, oldestAt, found = key, rec.IssuedAt, true
			}
		}
		if !found {
			return
		}
		delete(s.records, oldestKey)
	}
}

func normalize(identifier string) string {
	return strings.ToLower(identifier)
}
