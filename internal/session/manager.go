package session

import (
	"context"
	"log/slog"
	"sync"
)

// Snapshot is the in-memory auth state handed to observers. It is replaced
// wholesale on every transition, never mutated field by field.
type Snapshot struct {
	Authenticated bool
	Guest         bool
	Loading       bool
	KYCComplete   bool
	User          *UserProfile
	Token         string
}

// Manager reconciles persisted session state with the in-memory auth state
// the rest of the application observes.
//
// Each call runs its store I/O and state swap sequentially, but nothing
// serializes overlapping calls: a Refresh racing a Logout settles on whichever
// continuation finishes last. The UI layer disables triggering controls while
// a call is in flight; the manager does not lock across store I/O.
type Manager struct {
	store  Store
	logger *slog.Logger

	mu      sync.RWMutex
	snap    Snapshot
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewManager builds a manager and settles its initial state with one
// non-silent Refresh, so callers see Loading=false and a decided state by the
// time construction returns. Refresh failures during construction are logged,
// not returned; the manager still settles into the anonymous state.
func NewManager(ctx context.Context, store Store, logger *slog.Logger) *Manager {
	m := &Manager{
		store:  store,
		logger: logger,
		snap:   Snapshot{Loading: true},
		subs:   make(map[int]func(Snapshot)),
	}
	if err := m.Refresh(ctx, false); err != nil {
		logger.Warn("initial session refresh", "error", err)
	}
	return m
}

// Login persists the session first and only then swaps the in-memory state,
// so a failed write leaves the observable state untouched.
func (m *Manager) Login(ctx context.Context, profile UserProfile, token string) error {
	if err := m.store.Save(ctx, profile, token); err != nil {
		return err
	}
	m.swap(func(s Snapshot) Snapshot {
		return Snapshot{
			Authenticated: true,
			KYCComplete:   profile.KYCComplete(),
			User:          &profile,
			Token:         token,
		}
	})
	m.logger.Info("session established", "user_id", profile.ID)
	return nil
}

// LoginWithToken covers login responses that omit the user object: a skeleton
// profile is decoded from the token payload. Display-only; the backend stays
// the authority on who the user is.
func (m *Manager) LoginWithToken(ctx context.Context, token string) error {
	profile, err := ProfileFromToken(token)
	if err != nil {
		return err
	}
	m.logger.Warn("login response omitted user, using degraded profile from token", "user_id", profile.ID)
	return m.Login(ctx, profile, token)
}

// Logout clears persisted state first and only then demotes the in-memory
// state. Clearing an already-empty store succeeds, so Logout is idempotent.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return err
	}
	m.swap(func(s Snapshot) Snapshot {
		return Snapshot{}
	})
	m.logger.Info("session cleared")
	return nil
}

// ContinueAsGuest enters transient session-less browsing. Purely in-memory
// and idempotent; persisted state is left alone.
func (m *Manager) ContinueAsGuest() {
	m.swap(func(s Snapshot) Snapshot {
		return Snapshot{Guest: true, Loading: s.Loading}
	})
}

// Refresh re-derives the in-memory state from the store. The login flag must
// agree with the presence of both token and profile; anything else is a
// partial write left behind by a crash — a set flag with a missing credential,
// or credential residue with no flag — and is repaired by clearing storage
// before settling into anonymous. The guest flag survives a refresh that
// finds no session.
//
// silent=true skips the loading flag entirely, for background re-validation
// after a 401 where the UI must not flash a spinner.
func (m *Manager) Refresh(ctx context.Context, silent bool) error {
	if !silent {
		m.swap(func(s Snapshot) Snapshot {
			s.Loading = true
			return s
		})
	}

	flag, err := m.store.FlagSet(ctx)
	if err != nil {
		m.logger.Warn("read login flag", "error", err)
		flag = false
	}
	token, err := m.store.Token(ctx)
	if err != nil {
		m.logger.Warn("read token", "error", err)
		token = ""
	}
	profile, err := m.store.Profile(ctx)
	if err != nil {
		m.logger.Warn("read profile", "error", err)
		profile = nil
	}

	var clearErr error
	if flag && token != "" && profile != nil {
		m.swap(func(s Snapshot) Snapshot {
			return Snapshot{
				Authenticated: true,
				Loading:       silent && s.Loading,
				KYCComplete:   profile.KYCComplete(),
				User:          profile,
				Token:         token,
			}
		})
		return nil
	}

	// Anything short of a complete session is residue: a set flag missing a
	// credential, or a stale token/profile with no flag. Left in place, a
	// stale token would keep going out as a bearer header on every request.
	if flag || token != "" || profile != nil {
		m.logger.Warn("inconsistent session state, clearing storage")
		if clearErr = m.store.Clear(ctx); clearErr != nil {
			m.logger.Error("self-heal clear failed", "error", clearErr)
		}
	}
	m.swap(func(s Snapshot) Snapshot {
		return Snapshot{
			Guest:   s.Guest,
			Loading: silent && s.Loading,
		}
	})
	return clearErr
}

// UpdateProfile merges a partial profile update into storage and mirrors it
// in memory. A no-op while not authenticated.
func (m *Manager) UpdateProfile(ctx context.Context, patch ProfilePatch) error {
	m.mu.RLock()
	authenticated := m.snap.Authenticated
	m.mu.RUnlock()
	if !authenticated {
		return nil
	}
	if err := m.store.UpdateProfile(ctx, patch); err != nil {
		return err
	}
	m.swap(func(s Snapshot) Snapshot {
		if s.User == nil {
			return s
		}
		merged := s.User.Apply(patch)
		s.User = &merged
		s.KYCComplete = merged.KYCComplete()
		return s
	})
	return nil
}

// Subscribe registers an observer called with a copy of the snapshot after
// every transition. The returned function cancels the subscription.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

func (m *Manager) IsAuthenticated() bool { return m.Snapshot().Authenticated }
func (m *Manager) IsGuest() bool         { return m.Snapshot().Guest }
func (m *Manager) IsLoading() bool       { return m.Snapshot().Loading }
func (m *Manager) KYCComplete() bool     { return m.Snapshot().KYCComplete }
func (m *Manager) Token() string         { return m.Snapshot().Token }

// User returns the current profile, or nil outside the authenticated state.
func (m *Manager) User() *UserProfile { return m.Snapshot().User }

// swap replaces the snapshot under lock and notifies subscribers outside it.
func (m *Manager) swap(next func(Snapshot) Snapshot) {
	m.mu.Lock()
	m.snap = next(m.snap)
	snap := m.snap
	subs := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}
