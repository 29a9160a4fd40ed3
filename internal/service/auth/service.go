package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/AayushAdhikari30/SwiftTalk/internal/domain"
	"github.com/AayushAdhikari30/SwiftTalk/internal/repository"
	"github.com/AayushAdhikari30/SwiftTalk/internal/session"
	"github.com/AayushAdhikari30/SwiftTalk/pkg/crypto"
)

var (
	// ErrInvalidCredentials is returned for both unknown email and wrong
	// password. The uniformity is a security requirement: login must not
	// reveal whether an address is registered.
	ErrInvalidCredentials = errors.New("auth: invalid email or password")

	// ErrEmailTaken indicates a registration conflict.
	ErrEmailTaken = errors.New("auth: email already registered")

	// ErrUnauthenticated covers missing, invalid, expired, and revoked
	// proofs. Session-verification detail never crosses this boundary.
	ErrUnauthenticated = errors.New("auth: authentication required")
)

// dummyPasswordHash is verified against when the looked-up account does not
// exist, so the missing-email and wrong-password branches take comparable
// time. The comparison result is discarded on that branch.
var dummyPasswordHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Service orchestrates registration, login, logout, session checks, and
// profile updates. Each call is stateless and safe to invoke concurrently.
type Service struct {
	users    repository.UserRepository
	sessions *session.Manager
	logger   *slog.Logger
}

// New constructs a Service.
func New(users repository.UserRepository, sessions *session.Manager, logger *slog.Logger) Service {
	return Service{users: users, sessions: sessions, logger: logger}
}

// SignupInput carries the registration payload.
type SignupInput struct {
	Email    string
	FullName string
	Password string
}

// Signup registers a new account and logs it in.
func (s Service) Signup(ctx context.Context, in SignupInput) (domain.Profile, string, error) {
	email, fullName, err := validateSignup(in)
	if err != nil {
		return domain.Profile{}, "", err
	}

	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return domain.Profile{}, "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return domain.Profile{}, "", ErrEmailTaken
		}
		return domain.Profile{}, "", fmt.Errorf("create user: %w", err)
	}

	proof, err := s.sessions.Issue(user.ID)
	if err != nil {
		return domain.Profile{}, "", err
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user.Profile(), proof, nil
}

// Login authenticates an account and returns its profile and a fresh proof.
func (s Service) Login(ctx context.Context, email, password string) (domain.Profile, string, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = crypto.VerifyPassword(dummyPasswordHash, password)
			return domain.Profile{}, "", ErrInvalidCredentials
		}
		return domain.Profile{}, "", fmt.Errorf("find user: %w", err)
	}
	if !crypto.VerifyPassword(user.PasswordHash, password) {
		return domain.Profile{}, "", ErrInvalidCredentials
	}

	proof, err := s.sessions.Issue(user.ID)
	if err != nil {
		return domain.Profile{}, "", err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return user.Profile(), proof, nil
}

// Logout revokes the proof server-side. It always succeeds: revoking an
// already-invalid proof is a no-op, and a revocation store outage is logged
// rather than surfaced because the client discards its copy regardless.
func (s Service) Logout(ctx context.Context, proof string) {
	if err := s.sessions.Revoke(ctx, proof); err != nil {
		s.logger.Warn("session revocation failed", "error", err)
	}
}

// CheckSession verifies a proof and returns the profile it belongs to.
func (s Service) CheckSession(ctx context.Context, proof string) (domain.Profile, error) {
	userID, err := s.verify(ctx, proof)
	if err != nil {
		return domain.Profile{}, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Profile{}, ErrUnauthenticated
		}
		return domain.Profile{}, fmt.Errorf("load user: %w", err)
	}
	return user.Profile(), nil
}

// UpdateProfile verifies the proof and applies a partial profile update.
// A valid proof whose account has vanished surfaces repository.ErrNotFound;
// that combination signals an integrity violation and is logged as such.
func (s Service) UpdateProfile(ctx context.Context, proof string, patch domain.ProfilePatch) (domain.Profile, error) {
	userID, err := s.verify(ctx, proof)
	if err != nil {
		return domain.Profile{}, err
	}
	if err := validatePatch(patch); err != nil {
		return domain.Profile{}, err
	}
	if patch.FullName != nil {
		trimmed := strings.TrimSpace(*patch.FullName)
		patch.FullName = &trimmed
	}
	user, err := s.users.UpdateProfile(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("valid proof for missing account", "user_id", userID)
			return domain.Profile{}, err
		}
		return domain.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	s.logger.Info("profile updated", "user_id", userID)
	return user.Profile(), nil
}

// verify collapses session-verification detail into ErrUnauthenticated.
func (s Service) verify(ctx context.Context, proof string) (string, error) {
	userID, err := s.sessions.Verify(ctx, proof)
	if err != nil {
		if errors.Is(err, session.ErrInvalid) || errors.Is(err, session.ErrExpired) {
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("verify session: %w", err)
	}
	return userID, nil
}
