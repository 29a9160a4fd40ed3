package state

import (
	"context"
	"errors"
	"sync"

	"log/slog"

	"github.com/AayushAdhikari30/SwiftTalk/pkg/api/client"
)

// ErrInFlight is returned when an auth action is requested while the same
// action is still running.
var ErrInFlight = errors.New("state: action already in flight")

// Snapshot is a point-in-time copy of the auth state for rendering.
type Snapshot struct {
	CurrentUser     *client.Profile
	CheckingSession bool
	SigningUp       bool
	LoggingIn       bool
	UpdatingProfile bool
}

// Authenticated reports whether a session is currently established.
func (s Snapshot) Authenticated() bool {
	return s.CurrentUser != nil
}

// Store tracks the authenticated account and busy flags for one auth
// action of each kind at a time. It is safe for concurrent use.
type Store struct {
	api    *client.Client
	tokens TokenSlot
	logger *slog.Logger

	mu              sync.Mutex
	currentUser     *client.Profile
	checkingSession bool
	signingUp       bool
	loggingIn       bool
	updatingProfile bool
}

// NewStore wires a Store to an API client and a token slot. A nil slot
// falls back to in-memory persistence.
func NewStore(api *client.Client, tokens TokenSlot, logger *slog.Logger) *Store {
	if tokens == nil {
		tokens = &MemorySlot{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{api: api, tokens: tokens, logger: logger}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		CheckingSession: s.checkingSession,
		SigningUp:       s.signingUp,
		LoggingIn:       s.loggingIn,
		UpdatingProfile: s.updatingProfile,
	}
	if s.currentUser != nil {
		user := *s.currentUser
		snap.CurrentUser = &user
	}
	return snap
}

// CheckSession probes the persisted session and populates CurrentUser when
// it is still valid. Failures are silent: an expired or missing session
// simply leaves the store signed out.
func (s *Store) CheckSession(ctx context.Context) error {
	if err := s.begin(&s.checkingSession); err != nil {
		return err
	}
	defer s.end(&s.checkingSession)

	token, err := s.tokens.Load()
	if err != nil {
		s.logger.Warn("loading persisted session failed", "error", err)
		s.setUser(nil)
		return nil
	}
	if token == "" {
		s.setUser(nil)
		return nil
	}
	profile, err := s.api.CheckSession(ctx, token)
	if err != nil {
		var apiErr client.APIError
		if errors.As(err, &apiErr) && apiErr.IsUnauthenticated() {
			if err := s.tokens.Clear(); err != nil {
				s.logger.Warn("clearing stale session failed", "error", err)
			}
		} else {
			s.logger.Warn("session probe failed", "error", err)
		}
		s.setUser(nil)
		return nil
	}
	s.setUser(&profile)
	return nil
}

// Signup registers an account and establishes its first session.
func (s *Store) Signup(ctx context.Context, input client.SignupInput) (client.Profile, error) {
	if err := s.begin(&s.signingUp); err != nil {
		return client.Profile{}, err
	}
	defer s.end(&s.signingUp)

	resp, err := s.api.Signup(ctx, input)
	if err != nil {
		return client.Profile{}, err
	}
	s.establish(resp)
	return resp.User, nil
}

// Login establishes a session with existing credentials.
func (s *Store) Login(ctx context.Context, email, password string) (client.Profile, error) {
	if err := s.begin(&s.loggingIn); err != nil {
		return client.Profile{}, err
	}
	defer s.end(&s.loggingIn)

	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return client.Profile{}, err
	}
	s.establish(resp)
	return resp.User, nil
}

// Logout tears down the local session first, then revokes it server-side
// best-effort. It never fails: the local state is always cleared.
func (s *Store) Logout(ctx context.Context) {
	token, err := s.tokens.Load()
	if err != nil {
		s.logger.Warn("loading session for logout failed", "error", err)
		token = ""
	}
	if err := s.tokens.Clear(); err != nil {
		s.logger.Warn("clearing session failed", "error", err)
	}
	s.setUser(nil)
	if token == "" {
		return
	}
	if err := s.api.Logout(ctx, token); err != nil {
		s.logger.Warn("server-side logout failed", "error", err)
	}
}

// UpdateProfile applies a partial profile update and refreshes CurrentUser.
func (s *Store) UpdateProfile(ctx context.Context, patch client.ProfilePatch) (client.Profile, error) {
	if err := s.begin(&s.updatingProfile); err != nil {
		return client.Profile{}, err
	}
	defer s.end(&s.updatingProfile)

	token, err := s.tokens.Load()
	if err != nil {
		return client.Profile{}, err
	}
	if token == "" {
		return client.Profile{}, client.APIError{Status: 401, Kind: "unauthenticated", Message: "not signed in"}
	}
	profile, err := s.api.UpdateProfile(ctx, token, patch)
	if err != nil {
		return client.Profile{}, err
	}
	s.setUser(&profile)
	return profile, nil
}

func (s *Store) establish(resp client.AuthResponse) {
	if err := s.tokens.Save(resp.Token); err != nil {
		s.logger.Warn("persisting session failed", "error", err)
	}
	user := resp.User
	s.setUser(&user)
}

func (s *Store) setUser(profile *client.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentUser = profile
}

func (s *Store) begin(flag *bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if *flag {
		return ErrInFlight
	}
	*flag = true
	return nil
}

func (s *Store) end(flag *bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*flag = false
}
