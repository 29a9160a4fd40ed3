package auth

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"log/slog"

	"github.com/AayushAdhikari30/SwiftTalk/internal/domain"
	"github.com/AayushAdhikari30/SwiftTalk/internal/repository"
	"github.com/AayushAdhikari30/SwiftTalk/internal/repository/memory"
	"github.com/AayushAdhikari30/SwiftTalk/internal/session"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(t *testing.T) (Service, *memory.Repository) {
	t.Helper()
	store := session.NewMemoryRevocationStore()
	t.Cleanup(store.Close)
	users := memory.New()
	sessions := session.NewManager("unit-test-signing-secret", time.Hour, store)
	return New(users, sessions, newLogger()), users
}

func signupTestUser(t *testing.T, svc Service) (domain.Profile, string) {
	t.Helper()
	profile, proof, err := svc.Signup(context.Background(), SignupInput{
		Email:    "alice@example.com",
		FullName: "Alice Example",
		Password: "correcthorse",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	return profile, proof
}

func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    SignupInput
		field string
	}{
		{name: "missing email", in: SignupInput{FullName: "A", Password: "longenough"}, field: "email"},
		{name: "malformed email", in: SignupInput{Email: "not-an-address", FullName: "A", Password: "longenough"}, field: "email"},
		{name: "email without tld", in: SignupInput{Email: "a@b", FullName: "A", Password: "longenough"}, field: "email"},
		{name: "blank name", in: SignupInput{Email: "a@b.com", FullName: "   ", Password: "longenough"}, field: "fullName"},
		{name: "short password", in: SignupInput{Email: "a@b.com", FullName: "A", Password: "short"}, field: "password"},
		{name: "oversized password", in: SignupInput{Email: "a@b.com", FullName: "A", Password: strings.Repeat("x", 73)}, field: "password"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			svc, users := newService(t)
			_, _, err := svc.Signup(context.Background(), test.in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != test.field {
				t.Fatalf("expected field %q, got %q", test.field, verr.Field)
			}
			// Validation failures must not touch the directory.
			if _, err := users.GetUserByEmail(context.Background(), test.in.Email); !errors.Is(err, repository.ErrNotFound) {
				t.Fatalf("directory must stay empty, got %v", err)
			}
		})
	}
}

func TestSignupReturnsProfileAndProof(t *testing.T) {
	svc, _ := newService(t)
	profile, proof := signupTestUser(t, svc)

	if profile.Email != "alice@example.com" {
		t.Fatalf("unexpected email: %s", profile.Email)
	}
	if profile.FullName != "Alice Example" {
		t.Fatalf("unexpected name: %s", profile.FullName)
	}
	if profile.ProfilePic != domain.DefaultAvatar {
		t.Fatalf("expected placeholder avatar, got %q", profile.ProfilePic)
	}
	if profile.ID == "" {
		t.Fatalf("expected assigned id")
	}

	checked, err := svc.CheckSession(context.Background(), proof)
	if err != nil {
		t.Fatalf("check session: %v", err)
	}
	if checked.ID != profile.ID {
		t.Fatalf("proof resolves to %s, want %s", checked.ID, profile.ID)
	}
}

func TestSignupNormalizesEmail(t *testing.T) {
	svc, _ := newService(t)
	profile, _, err := svc.Signup(context.Background(), SignupInput{
		Email:    "  Bob@Example.COM ",
		FullName: "  Bob  ",
		Password: "longenough",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if profile.Email != "bob@example.com" {
		t.Fatalf("expected normalized email, got %q", profile.Email)
	}
	if profile.FullName != "Bob" {
		t.Fatalf("expected trimmed name, got %q", profile.FullName)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _ := newService(t)
	signupTestUser(t, svc)

	_, _, err := svc.Signup(context.Background(), SignupInput{
		Email:    "ALICE@example.com",
		FullName: "Another Alice",
		Password: "different1",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginSuccess(t *testing.T) {
	svc, _ := newService(t)
	created, _ := signupTestUser(t, svc)

	profile, proof, err := svc.Login(context.Background(), "Alice@Example.com", "correcthorse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if profile.ID != created.ID {
		t.Fatalf("login resolves to %s, want %s", profile.ID, created.ID)
	}

	checked, err := svc.CheckSession(context.Background(), proof)
	if err != nil {
		t.Fatalf("check session: %v", err)
	}
	if checked.ID != created.ID {
		t.Fatalf("proof resolves to %s, want %s", checked.ID, created.ID)
	}
}

func TestLoginUniformFailure(t *testing.T) {
	svc, _ := newService(t)
	signupTestUser(t, svc)

	wrongPassword := func() error {
		_, _, err := svc.Login(context.Background(), "alice@example.com", "wrongpass1")
		return err
	}
	unknownEmail := func() error {
		_, _, err := svc.Login(context.Background(), "nobody@example.com", "correcthorse")
		return err
	}

	errA, errB := wrongPassword(), unknownEmail()
	if !errors.Is(errA, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", errA)
	}
	if !errors.Is(errB, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", errB)
	}
	if errA.Error() != errB.Error() {
		t.Fatalf("failure shapes differ: %q vs %q", errA, errB)
	}
}

func TestCheckSessionRejectsBadProofs(t *testing.T) {
	svc, _ := newService(t)
	_, proof := signupTestUser(t, svc)

	tampered := []byte(proof)
	tampered[len(tampered)/2] ^= 0x01
	for _, bad := range []string{"", "garbage", string(tampered)} {
		if _, err := svc.CheckSession(context.Background(), bad); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("expected ErrUnauthenticated for %q, got %v", bad, err)
		}
	}
}

func TestCheckSessionExpiredProof(t *testing.T) {
	store := session.NewMemoryRevocationStore()
	t.Cleanup(store.Close)
	sessions := session.NewManager("unit-test-signing-secret", -time.Minute, store)
	svc := New(memory.New(), sessions, newLogger())

	proof, err := sessions.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.CheckSession(context.Background(), proof); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestLogoutRevokesProof(t *testing.T) {
	svc, _ := newService(t)
	_, proof := signupTestUser(t, svc)
	ctx := context.Background()

	svc.Logout(ctx, proof)
	if _, err := svc.CheckSession(ctx, proof); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected revoked proof to be unauthenticated, got %v", err)
	}
	// Logging out again, or with garbage, is still fine.
	svc.Logout(ctx, proof)
	svc.Logout(ctx, "garbage")
}

func TestUpdateProfile(t *testing.T) {
	svc, users := newService(t)
	created, proof := signupTestUser(t, svc)
	ctx := context.Background()

	name := "Alice Renamed"
	pic := "https://cdn.example.com/alice.png"
	updated, err := svc.UpdateProfile(ctx, proof, domain.ProfilePatch{FullName: &name, ProfilePic: &pic})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.FullName != name || updated.ProfilePic != pic {
		t.Fatalf("unexpected projection: %+v", updated)
	}
	if updated.Email != created.Email {
		t.Fatalf("email must not change, got %q", updated.Email)
	}

	stored, err := users.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.FullName != name {
		t.Fatalf("expected persisted name %q, got %q", name, stored.FullName)
	}
	if len(stored.PasswordHash) == 0 {
		t.Fatalf("password hash must survive profile updates")
	}
}

func TestUpdateProfileRequiresProof(t *testing.T) {
	svc, _ := newService(t)
	name := "X"
	if _, err := svc.UpdateProfile(context.Background(), "garbage", domain.ProfilePatch{FullName: &name}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestUpdateProfileBlankNameRejected(t *testing.T) {
	svc, _ := newService(t)
	_, proof := signupTestUser(t, svc)

	blank := "   "
	_, err := svc.UpdateProfile(context.Background(), proof, domain.ProfilePatch{FullName: &blank})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestUpdateProfileVanishedAccount(t *testing.T) {
	// A valid proof for an account missing from the directory is an
	// integrity signal surfaced as ErrNotFound.
	store := session.NewMemoryRevocationStore()
	t.Cleanup(store.Close)
	sessions := session.NewManager("unit-test-signing-secret", time.Hour, store)
	svc := New(memory.New(), sessions, newLogger())

	proof, err := sessions.Issue("ghost")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	name := "X"
	if _, err := svc.UpdateProfile(context.Background(), proof, domain.ProfilePatch{FullName: &name}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
