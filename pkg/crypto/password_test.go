package crypto

import (
	"bytes"
	"strings"
	"testing"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		plain string
	}{
		{name: "simple", plain: "correcthorse"},
		{name: "special chars", plain: "p@ssw0rd!#$%"},
		{name: "unicode", plain: "пароль-秘密"},
		{name: "spaces", plain: "  padded password  "},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			hash, err := HashPassword(test.plain)
			if err != nil {
				t.Fatalf("hash password: %v", err)
			}
			if len(hash) == 0 {
				t.Fatalf("expected non-empty hash")
			}
			if bytes.Contains(hash, []byte(test.plain)) {
				t.Fatalf("hash must not embed the plaintext")
			}
			if !VerifyPassword(hash, test.plain) {
				t.Fatalf("expected hash to verify against its own plaintext")
			}
			if VerifyPassword(hash, test.plain+"x") {
				t.Fatalf("expected mismatched plaintext to fail verification")
			}
		})
	}
}

func TestHashPasswordDistinctSalts(t *testing.T) {
	first, err := HashPassword("samePassword1")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	second, err := HashPassword("samePassword1")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if bytes.Equal(first, second) {
		t.Fatalf("two hashes of the same plaintext must differ")
	}
	if !VerifyPassword(first, "samePassword1") || !VerifyPassword(second, "samePassword1") {
		t.Fatalf("both hashes must still verify")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	malformed := [][]byte{
		nil,
		[]byte(""),
		[]byte("not-a-bcrypt-hash"),
		[]byte("$2a$xx$garbage"),
		[]byte(strings.Repeat("$", 60)),
	}
	for _, hash := range malformed {
		if VerifyPassword(hash, "whatever") {
			t.Fatalf("malformed hash %q must verify false", hash)
		}
	}
}
