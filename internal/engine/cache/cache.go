// Package cache stores completed analysis results on disk, keyed by the
// request fingerprint. Results are immutable snapshots, so a fingerprint
// hit within the TTL window can be served without recomputation.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fractionworks/proceval/internal/engine"
)

// entryFileExtension is the file extension used for cached results.
const entryFileExtension = ".json"

// DefaultTTL is how long a cached result stays servable.
const DefaultTTL = time.Hour

// Common cache errors.
var (
	ErrNotFound   = errors.New("cached result not found")
	ErrExpired    = errors.New("cached result expired")
	ErrDisabled   = errors.New("result cache is disabled")
	ErrInvalidKey = errors.New("cache key cannot be empty")
)

// entry wraps one stored result with its expiry metadata.
type entry struct {
	Fingerprint string                 `json:"fingerprint"`
	Result      *engine.AnalysisResult `json:"result"`
	CreatedAt   time.Time              `json:"created_at"`
	ExpiresAt   time.Time              `json:"expires_at"`
}

func (e *entry) expired() bool {
	return time.Now().After(e.ExpiresAt)
}

// Store is a thread-safe file-backed result cache with TTL expiration.
// A disabled store rejects every operation with ErrDisabled so callers
// need no separate code path.
type Store struct {
	directory string
	enabled   bool
	ttl       time.Duration

	mu sync.RWMutex
}

// NewStore creates a result cache rooted at directory, creating it when
// missing. A zero ttl falls back to DefaultTTL.
func NewStore(directory string, enabled bool, ttl time.Duration) (*Store, error) {
	if !enabled {
		return &Store{enabled: false}, nil
	}
	if directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if err := os.MkdirAll(directory, 0750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	return &Store{directory: directory, enabled: true, ttl: ttl}, nil
}

// Get returns the cached result for the fingerprint. Expired entries are
// removed lazily and reported as ErrExpired.
func (s *Store) Get(fingerprint string) (*engine.AnalysisResult, error) {
	if !s.enabled {
		return nil, ErrDisabled
	}
	if fingerprint == "" {
		return nil, ErrInvalidKey
	}

	s.mu.RLock()
	data, err := os.ReadFile(s.pathFor(fingerprint))
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read cache entry: %w", err)
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}

	if e.expired() {
		s.mu.Lock()
		_ = os.Remove(s.pathFor(fingerprint))
		s.mu.Unlock()
		return nil, ErrExpired
	}

	return e.Result, nil
}

// Put stores a result under its fingerprint, overwriting any previous
// entry. The write goes through a temp file and rename for atomicity.
func (s *Store) Put(fingerprint string, result *engine.AnalysisResult) error {
	if !s.enabled {
		return ErrDisabled
	}
	if fingerprint == "" {
		return ErrInvalidKey
	}

	now := time.Now()
	data, err := json.Marshal(&entry{
		Fingerprint: fingerprint,
		Result:      result,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.pathFor(fingerprint)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit cache entry: %w", err)
	}

	return nil
}

// Delete removes an entry. Missing entries are not an error.
func (s *Store) Delete(fingerprint string) error {
	if !s.enabled {
		return ErrDisabled
	}
	if fingerprint == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.pathFor(fingerprint)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// CleanupExpired removes every expired entry, for periodic maintenance.
func (s *Store) CleanupExpired() error {
	if !s.enabled {
		return ErrDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dirEntries, err := os.ReadDir(s.directory)
	if err != nil {
		return fmt.Errorf("read cache directory: %w", err)
	}

	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != entryFileExtension {
			continue
		}

		path := filepath.Join(s.directory, de.Name())
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			continue
		}

		var e entry
		if json.Unmarshal(data, &e) != nil || e.expired() {
			_ = os.Remove(path)
		}
	}

	return nil
}

// pathFor maps a fingerprint to its entry file. Path separator runes in
// the key are replaced so a malformed key cannot escape the directory.
func (s *Store) pathFor(fingerprint string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, fingerprint)
	return filepath.Join(s.directory, safe+entryFileExtension)
}
