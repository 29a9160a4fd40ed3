package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-which-is-long-enough"

func newTestManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	store := NewMemoryRevocationStore()
	t.Cleanup(store.Close)
	return NewManager(testSecret, ttl, store)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := newTestManager(t, time.Hour)
	proof, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	userID, err := m.Verify(context.Background(), proof)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("expected user-123, got %s", userID)
	}
}

func TestVerifyTamperedProof(t *testing.T) {
	m := newTestManager(t, time.Hour)
	proof, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Flip one byte in each segment of the proof.
	for _, pos := range []int{2, len(proof) / 2, len(proof) - 2} {
		raw := []byte(proof)
		if raw[pos] == 'A' {
			raw[pos] = 'B'
		} else {
			raw[pos] = 'A'
		}
		if _, err := m.Verify(context.Background(), string(raw)); !errors.Is(err, ErrInvalid) {
			t.Fatalf("expected ErrInvalid for byte flip at %d, got %v", pos, err)
		}
	}
}

func TestVerifyMalformedProof(t *testing.T) {
	m := newTestManager(t, time.Hour)
	for _, proof := range []string{"", "garbage", "a.b", strings.Repeat("x", 512)} {
		if _, err := m.Verify(context.Background(), proof); !errors.Is(err, ErrInvalid) {
			t.Fatalf("expected ErrInvalid for %q, got %v", proof, err)
		}
	}
}

func TestVerifyExpiredProof(t *testing.T) {
	m := newTestManager(t, -time.Minute)
	proof, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(context.Background(), proof); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	m := newTestManager(t, time.Hour)
	other := NewManager("a-completely-different-secret-key", time.Hour, nil)
	proof, err := other.Issue("user-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(context.Background(), proof); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestRevokeInvalidatesProof(t *testing.T) {
	m := newTestManager(t, time.Hour)
	proof, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	ctx := context.Background()
	if err := m.Revoke(ctx, proof); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := m.Verify(ctx, proof); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected revoked proof to fail with ErrInvalid, got %v", err)
	}
	// Revoking again is a no-op success.
	if err := m.Revoke(ctx, proof); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
}

func TestRevokeMalformedProofIsNoop(t *testing.T) {
	m := newTestManager(t, time.Hour)
	for _, proof := range []string{"", "garbage", "a.b.c"} {
		if err := m.Revoke(context.Background(), proof); err != nil {
			t.Fatalf("revoke of %q must succeed, got %v", proof, err)
		}
	}
}

func TestRevokeDoesNotAffectOtherProofs(t *testing.T) {
	m := newTestManager(t, time.Hour)
	ctx := context.Background()
	first, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("issue first: %v", err)
	}
	second, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("issue second: %v", err)
	}
	if err := m.Revoke(ctx, first); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := m.Verify(ctx, second); err != nil {
		t.Fatalf("second proof must still verify: %v", err)
	}
}

func TestMemoryRevocationStoreExpiry(t *testing.T) {
	store := NewMemoryRevocationStore()
	defer store.Close()
	ctx := context.Background()

	if err := store.Revoke(ctx, "stale", time.Now().Add(-time.Second)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err := store.IsRevoked(ctx, "stale")
	if err != nil {
		t.Fatalf("is revoked: %v", err)
	}
	if revoked {
		t.Fatalf("entry past its expiry must read as not revoked")
	}
}
