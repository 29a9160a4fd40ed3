package auth

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AayushAdhikari30/SwiftTalk/internal/domain"
)

const (
	minPasswordLength = 8
	// bcrypt only reads the first 72 bytes of input.
	maxPasswordLength = 72
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError reports which input rule a request violated. Validation
// runs before any directory access, so a failed request has no side effects.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("auth: %s: %s", e.Field, e.Message)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateSignup(in SignupInput) (email, fullName string, err error) {
	email = normalizeEmail(in.Email)
	if email == "" {
		return "", "", &ValidationError{Field: "email", Message: "is required"}
	}
	if !emailPattern.MatchString(email) {
		return "", "", &ValidationError{Field: "email", Message: "is not a valid address"}
	}
	fullName = strings.TrimSpace(in.FullName)
	if fullName == "" {
		return "", "", &ValidationError{Field: "fullName", Message: "is required"}
	}
	if len(in.Password) < minPasswordLength {
		return "", "", &ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	if len(in.Password) > maxPasswordLength {
		return "", "", &ValidationError{Field: "password", Message: fmt.Sprintf("must be at most %d characters", maxPasswordLength)}
	}
	return email, fullName, nil
}

func validatePatch(patch domain.ProfilePatch) error {
	if patch.FullName != nil && strings.TrimSpace(*patch.FullName) == "" {
		return &ValidationError{Field: "fullName", Message: "must not be empty"}
	}
	return nil
}
