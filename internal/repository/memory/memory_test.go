package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AayushAdhikari30/SwiftTalk/internal/domain"
	"github.com/AayushAdhikari30/SwiftTalk/internal/repository"
)

func newUser(id, email string) *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:           id,
		Email:        email,
		FullName:     "Test User",
		PasswordHash: []byte("hash"),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCreateUserDuplicateEmailCaseInsensitive(t *testing.T) {
	repo := New()
	ctx := context.Background()

	if err := repo.CreateUser(ctx, newUser("u1", "alice@example.com")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := repo.CreateUser(ctx, newUser("u2", "ALICE@Example.COM"))
	if !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	got, err := repo.GetUserByEmail(ctx, "Alice@example.com")
	if err != nil {
		t.Fatalf("lookup after duplicate: %v", err)
	}
	if got.ID != "u1" {
		t.Fatalf("expected original record to survive, got id %s", got.ID)
	}
}

func TestConcurrentCreateSingleWinner(t *testing.T) {
	repo := New()
	ctx := context.Background()

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results <- repo.CreateUser(ctx, newUser(string(rune('a'+n)), "race@example.com"))
		}(i)
	}
	wg.Wait()
	close(results)

	var success, duplicate int
	for err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, repository.ErrDuplicateEmail):
			duplicate++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly one create to win, got %d", success)
	}
	if duplicate != attempts-1 {
		t.Fatalf("expected %d duplicate failures, got %d", attempts-1, duplicate)
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	repo := New()
	ctx := context.Background()
	if err := repo.CreateUser(ctx, newUser("u1", "bob@example.com")); err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Bob Renamed"
	updated, err := repo.UpdateProfile(ctx, "u1", domain.ProfilePatch{FullName: &name})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.FullName != name {
		t.Fatalf("expected full name %q, got %q", name, updated.FullName)
	}
	if updated.Email != "bob@example.com" {
		t.Fatalf("email must not change, got %q", updated.Email)
	}
	if string(updated.PasswordHash) != "hash" {
		t.Fatalf("password hash must not change")
	}

	got, err := repo.GetUserByID(ctx, "u1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.FullName != name {
		t.Fatalf("expected persisted name %q, got %q", name, got.FullName)
	}
}

func TestUpdateProfileUnknownID(t *testing.T) {
	repo := New()
	name := "Nobody"
	_, err := repo.UpdateProfile(context.Background(), "missing", domain.ProfilePatch{FullName: &name})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
