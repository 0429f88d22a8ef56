// Package store owns the live environment snapshot and serializes every
// change through env.Reduce.
package store

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Alwanly/service-env-state/internal/env"
)

// Listener is notified after a dispatch produced a new snapshot.
type Listener func(prev, next *env.State, action env.Action)

// Store holds the current snapshot. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	state     *env.State
	version   int64
	etag      string
	nextID    int
	listeners map[int]Listener
}

// Option customizes a Store.
type Option func(*Store)

// WithVersion starts the version counter at v, used when hydrating from a
// persisted snapshot.
func WithVersion(v int64) Option {
	return func(s *Store) {
		s.version = v
	}
}

// New creates a Store seeded with initial. A nil initial lets the reducer
// pick its own default.
func New(initial *env.State, opts ...Option) *Store {
	if initial == nil {
		initial = env.Reduce(nil, nil)
	}
	s := &Store{
		state:     initial,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.etag = computeETag(s.version, s.state)
	return s
}

// Result describes the outcome of a single dispatch.
type Result struct {
	State   *env.State
	Version int64
	ETag    string
	Changed bool
}

// Dispatch applies action and reports whether the snapshot changed.
func (s *Store) Dispatch(action env.Action) (*env.State, bool) {
	res := s.Apply(action)
	return res.State, res.Changed
}

// Apply is Dispatch returning the version and etag the action produced.
func (s *Store) Apply(action env.Action) Result {
	s.mu.Lock()
	prev := s.state
	next := env.Reduce(prev, action)
	if next == prev {
		res := Result{State: prev, Version: s.version, ETag: s.etag}
		s.mu.Unlock()
		return res
	}
	s.state = next
	s.version++
	s.etag = computeETag(s.version, next)
	res := Result{State: next, Version: s.version, ETag: s.etag, Changed: true}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, l := range listeners {
		l(prev, next, action)
	}
	return res
}

// Replace swaps the snapshot wholesale, bumping the version. Listeners see a
// nil action.
func (s *Store) Replace(state *env.State) {
	if state == nil {
		return
	}
	s.mu.Lock()
	prev := s.state
	s.state = state
	s.version++
	s.etag = computeETag(s.version, state)
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, l := range listeners {
		l(prev, state, nil)
	}
}

// State returns the current snapshot. The returned value must be treated as
// read-only.
func (s *Store) State() *env.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) ETag() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.etag
}

// Snapshot returns state, version and etag read under a single lock.
func (s *Store) Snapshot() (*env.State, int64, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.version, s.etag
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// caller holds s.mu
func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if l, ok := s.listeners[i]; ok {
			out = append(out, l)
		}
	}
	return out
}

// ETagFor returns the etag a Store would report for state at version.
func ETagFor(version int64, state *env.State) string {
	return computeETag(version, state)
}

func computeETag(version int64, state *env.State) string {
	body, err := json.Marshal(state)
	if err != nil {
		return fmt.Sprintf("%d", version)
	}
	sum := sha1.Sum(body)
	return fmt.Sprintf("%d-%s", version, hex.EncodeToString(sum[:8]))
}
