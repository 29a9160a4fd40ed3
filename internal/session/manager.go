package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalid covers malformed, tampered, and revoked proofs.
	ErrInvalid = errors.New("session: invalid proof")
	// ErrExpired covers well-formed proofs past their time-to-live.
	ErrExpired = errors.New("session: expired proof")
)

const issuerName = "swifttalk"

// Claims is the session proof payload.
type Claims struct {
	UserID string `json:"user_id"`
	jwtlib.RegisteredClaims
}

// Manager mints and verifies session proofs. Proofs are HS256-signed tokens
// carrying the account id and an expiry; revocation is enforced server-side
// through a RevocationStore until each proof's natural expiry.
type Manager struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
}

// NewManager constructs a Manager. The store may be nil, in which case
// logout falls back to client-side discard only.
func NewManager(secret string, ttl time.Duration, revoked RevocationStore) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, revoked: revoked}
}

// Issue mints a proof for the account with the configured time-to-live.
func (m *Manager) Issue(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuerName,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session proof: %w", err)
	}
	return signed, nil
}

// Verify checks a proof and returns the account id it was issued for.
// Expired-but-otherwise-valid proofs fail with ErrExpired; anything
// malformed, tampered, or revoked fails with ErrInvalid. Only revocation
// store outages surface as other errors.
func (m *Manager) Verify(ctx context.Context, proof string) (string, error) {
	claims, err := m.parse(proof, true)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrInvalid
	}
	if m.revoked != nil {
		revoked, err := m.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return "", fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return "", ErrInvalid
		}
	}
	return claims.UserID, nil
}

// Revoke invalidates a proof server-side until its natural expiry. Revoking
// a malformed, expired, or already-revoked proof is a successful no-op.
func (m *Manager) Revoke(ctx context.Context, proof string) error {
	if m.revoked == nil {
		return nil
	}
	claims, err := m.parse(proof, false)
	if err != nil {
		return nil
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		return nil
	}
	if err := m.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("record revocation: %w", err)
	}
	return nil
}

// parse verifies the signature and, when validateClaims is set, the
// registered claims. Revoke needs the claims of expired proofs, hence the
// flag.
func (m *Manager) parse(proof string, validateClaims bool) (*Claims, error) {
	keyFn := func(t *jwtlib.Token) (interface{}, error) { return m.secret, nil }
	opts := []jwtlib.ParserOption{jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Name})}
	if !validateClaims {
		opts = append(opts, jwtlib.WithoutClaimsValidation())
	}
	parsed, err := jwtlib.ParseWithClaims(proof, &Claims{}, keyFn, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwtlib.ErrTokenInvalidClaims
	}
	if claims.ID == "" || claims.UserID == "" {
		return nil, jwtlib.ErrTokenInvalidClaims
	}
	return claims, nil
}
