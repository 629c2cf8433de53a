package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/disciplineviz/internal/fetch"
	"github.com/seenimoa/disciplineviz/pkg/models"
)

// ErrStale is returned when a fetch completed after it was superseded,
// deselected or cleared. Its result was discarded.
var ErrStale = errors.New("fetch result discarded: superseded by a newer action")

// Store is the thread-safe view state store. Every mutation is one reducer
// step taken under the store lock; fetches run outside the lock.
type Store struct {
	fetcher     fetch.Fetcher
	logger      *slog.Logger
	concurrency int

	mu        sync.Mutex
	state     State
	nextToken uint64
	inflight  map[models.Category]inflight
	batch     inflight

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

type inflight struct {
	token  uint64
	cancel context.CancelFunc
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for fetch outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithConcurrency bounds the number of concurrent fetches issued by
// LoadAll. Zero or negative means one goroutine per category.
func WithConcurrency(n int) Option {
	return func(s *Store) { s.concurrency = n }
}

// New creates a store in the startup state, fetching through f.
func New(f fetch.Fetcher, opts ...Option) *Store {
	s := &Store{
		fetcher:  f,
		logger:   slog.Default(),
		state:    NewState(),
		inflight: map[models.Category]inflight{},
		subs:     map[int]func(State){},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn to be called with a snapshot after every state
// change. The snapshot is shared between subscribers and must be treated as
// read-only. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Toggle flips the selection of c. Deselecting is synchronous and makes no
// request. Selecting fetches c and blocks until the fetch settles; on
// failure the error is stored as the error message and returned, and the
// selection is left unchanged.
func (s *Store) Toggle(ctx context.Context, c models.Category) error {
	if !c.Valid() {
		return fmt.Errorf("toggle: %w: %q", models.ErrUnknownCategory, c)
	}

	s.mu.Lock()
	if s.state.IsSelected(c) {
		s.cancelInflightLocked(c)
		snap := s.applyLocked(Deselected{Category: c})
		s.mu.Unlock()
		s.notify(snap)
		return nil
	}

	s.cancelInflightLocked(c)
	s.nextToken++
	token := s.nextToken
	fctx, cancel := context.WithCancel(ctx)
	s.inflight[c] = inflight{token: token, cancel: cancel}
	snap := s.applyLocked(FetchStarted{Category: c, Token: token})
	s.mu.Unlock()
	s.notify(snap)

	recs, err := s.fetcher.Fetch(fctx, c)
	cancel()

	s.mu.Lock()
	if cur, ok := s.inflight[c]; ok && cur.token == token {
		delete(s.inflight, c)
	}
	if s.state.PendingToken(c) != token {
		s.mu.Unlock()
		s.logger.Debug("discarding stale fetch", "category", c, "token", token)
		return ErrStale
	}
	if err != nil {
		snap = s.applyLocked(FetchFailed{Category: c, Err: fetch.Message(err), Token: token})
		s.mu.Unlock()
		s.notify(snap)
		s.logger.Warn("category fetch failed", "category", c, "error", err)
		return err
	}
	snap = s.applyLocked(FetchSucceeded{Category: c, Records: recs, Token: token})
	s.mu.Unlock()
	s.notify(snap)
	s.logger.Debug("category fetched", "category", c, "records", len(recs))
	return nil
}

// Clear empties the selection and the data map and cancels every
// in-flight fetch.
func (s *Store) Clear() {
	s.mu.Lock()
	for c := range s.inflight {
		s.cancelInflightLocked(c)
	}
	if s.batch.cancel != nil {
		s.batch.cancel()
		s.batch = inflight{}
	}
	snap := s.applyLocked(Cleared{})
	s.mu.Unlock()
	s.notify(snap)
}

// LoadAll fetches every fixed category concurrently. The join is
// all-or-nothing: if any fetch fails, the error message is set, the first
// failure is returned and none of the successful results are kept.
func (s *Store) LoadAll(ctx context.Context) error {
	s.mu.Lock()
	if s.batch.cancel != nil {
		s.batch.cancel()
	}
	s.nextToken++
	token := s.nextToken
	bctx, cancel := context.WithCancel(ctx)
	s.batch = inflight{token: token, cancel: cancel}
	snap := s.applyLocked(LoadAllStarted{Token: token})
	s.mu.Unlock()
	s.notify(snap)

	cats := models.AllCategories()
	results := make([][]models.Record, len(cats))

	g, gctx := errgroup.WithContext(bctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i, c := range cats {
		g.Go(func() error {
			recs, err := s.fetcher.Fetch(gctx, c)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", c, err)
			}
			results[i] = recs
			return nil
		})
	}
	err := g.Wait()
	cancel()

	s.mu.Lock()
	if s.batch.token == token {
		s.batch = inflight{}
	}
	if s.state.BatchToken() != token {
		s.mu.Unlock()
		s.logger.Debug("discarding stale batch", "token", token)
		return ErrStale
	}
	if err != nil {
		snap = s.applyLocked(LoadAllFailed{Err: fetch.Message(err), Token: token})
		s.mu.Unlock()
		s.notify(snap)
		s.logger.Warn("initial load failed", "error", err)
		return err
	}
	data := make(map[models.Category][]models.Record, len(cats))
	for i, c := range cats {
		data[c] = results[i]
	}
	snap = s.applyLocked(LoadAllSucceeded{Data: data, Token: token})
	s.mu.Unlock()
	s.notify(snap)
	s.logger.Info("initial load complete", "categories", len(cats))
	return nil
}

// applyLocked runs one reducer step and returns a snapshot for
// subscribers. Must be called with mu held.
func (s *Store) applyLocked(a Action) State {
	s.state = Reduce(s.state, a)
	return s.state.Clone()
}

// cancelInflightLocked aborts the pending request for c, if any. The
// reducer separately invalidates its token. Must be called with mu held.
func (s *Store) cancelInflightLocked(c models.Category) {
	if cur, ok := s.inflight[c]; ok {
		cur.cancel()
		delete(s.inflight, c)
	}
}

func (s *Store) notify(snap State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
