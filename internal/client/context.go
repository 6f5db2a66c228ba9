package client

// Package client holds the consumer-side session machinery: a cached
// snapshot of who is signed in, kept fresh by auth state-change events, and
// a gate that decides whether a navigation target is reachable with the
// current snapshot.

import (
	"context"
	"log/slog"
	"sync"

	domainauth "github.com/meridian/rolegate/internal/domain/auth"
	"github.com/meridian/rolegate/internal/ports"
)

// Snapshot is the one canonical view of the current session. User is nil
// when signed out. Loading is true only until the first resolution attempt
// completes.
type Snapshot struct {
	User    *domainauth.Identity
	Profile *domainauth.Profile
	Roles   []string
	Loading bool
}

// SignedIn reports whether the snapshot carries an authenticated user.
func (s Snapshot) SignedIn() bool { return s.User != nil }

// SessionContextOptions groups dependencies for SessionContext.
type SessionContextOptions struct {
	Fetcher SnapshotFetcher
	// Provider supplies auth state-change events. Optional: without it the
	// context refreshes only when Refresh is called explicitly.
	Provider ports.IdentityProvider
	// TokenSource yields the current session token; "" means signed out.
	TokenSource func() string
	Logger      *slog.Logger // optional
}

// SessionContext caches the session snapshot and keeps it current. Each
// refresh supersedes any in-flight one: the superseded fetch is cancelled
// and its outcome, success or failure, is discarded. Subscribers observe
// every applied snapshot change.
type SessionContext struct {
	fetcher     SnapshotFetcher
	provider    ports.IdentityProvider
	tokenSource func() string
	logger      *slog.Logger

	mu          sync.Mutex
	snapshot    Snapshot
	generation  uint64
	cancelFetch context.CancelFunc
	observers   map[int]func(Snapshot)
	nextObs     int

	unsubscribeProvider func()
	wg                  sync.WaitGroup
}

// NewSessionContext constructs a SessionContext. The initial snapshot is
// loading and signed out.
func NewSessionContext(opts SessionContextOptions) *SessionContext {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tokenSource := opts.TokenSource
	if tokenSource == nil {
		tokenSource = func() string { return "" }
	}
	return &SessionContext{
		fetcher:     opts.Fetcher,
		provider:    opts.Provider,
		tokenSource: tokenSource,
		logger:      logger,
		snapshot:    Snapshot{Loading: true},
		observers:   make(map[int]func(Snapshot)),
	}
}

// Start performs the initial resolution and subscribes to provider auth
// state-change events; every event triggers a refresh. Start is meant to be
// called once.
func (c *SessionContext) Start(ctx context.Context) {
	if c.provider != nil {
		c.unsubscribeProvider = c.provider.OnAuthStateChange(func(domainauth.Event) {
			c.wg.Add(1)
			go func() {
				defer c.wg.Done()
				c.Refresh(ctx)
			}()
		})
	}
	c.Refresh(ctx)
}

// Refresh resolves the current token to a snapshot and applies it, unless a
// newer refresh started in the meantime. A cancelled fetch is discarded
// unconditionally: even its error must not clear a snapshot another refresh
// is about to set.
func (c *SessionContext) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	if c.cancelFetch != nil {
		c.cancelFetch()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancelFetch = cancel
	token := c.tokenSource()
	c.mu.Unlock()

	if token == "" {
		c.apply(gen, fetchCtx, Snapshot{})
		return
	}

	resolution, err := c.fetcher.Fetch(fetchCtx, token)
	if err != nil {
		if fetchCtx.Err() == nil {
			c.logger.Debug("session refresh failed", slog.Any("error", err))
		}
		// Any failure outside cancellation clears to signed out.
		c.apply(gen, fetchCtx, Snapshot{})
		return
	}

	c.apply(gen, fetchCtx, Snapshot{
		User:    &resolution.User,
		Profile: &resolution.Profile,
		Roles:   resolution.Roles,
	})
}

// apply installs the snapshot if the refresh that produced it is still the
// latest and was not cancelled, then notifies observers outside the lock.
func (c *SessionContext) apply(gen uint64, fetchCtx context.Context, snap Snapshot) {
	c.mu.Lock()
	if gen != c.generation || fetchCtx.Err() != nil {
		c.mu.Unlock()
		return
	}
	c.snapshot = snap
	fns := make([]func(Snapshot), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Snapshot returns the current snapshot.
func (c *SessionContext) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Subscribe registers an observer invoked with every applied snapshot. The
// returned function unsubscribes; it is idempotent.
func (c *SessionContext) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.observers, id)
			c.mu.Unlock()
		})
	}
}

// SignOut invalidates the current session with the provider and clears the
// snapshot immediately rather than waiting for the state-change event.
func (c *SessionContext) SignOut(ctx context.Context) error {
	token := c.tokenSource()
	if c.provider != nil && token != "" {
		if err := c.provider.SignOut(ctx, token); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
	c.mu.Unlock()

	c.apply(gen, context.Background(), Snapshot{})
	return nil
}

// Close unsubscribes from provider events, cancels any in-flight fetch, and
// waits for event-triggered refreshes to finish.
func (c *SessionContext) Close() {
	if c.unsubscribeProvider != nil {
		c.unsubscribeProvider()
	}
	c.mu.Lock()
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}
