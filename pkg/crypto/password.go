package crypto

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt work factor. bcrypt embeds a random per-call
// salt, so hashing the same plaintext twice yields different secrets.
const PasswordCost = bcrypt.DefaultCost

// HashPassword hashes plaintext using bcrypt.
func HashPassword(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
}

// VerifyPassword reports whether plain matches the stored hash. A malformed
// hash verifies false rather than erroring; bcrypt's comparison is
// constant-time with respect to the hash contents.
func VerifyPassword(hash []byte, plain string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plain)) == nil
}
