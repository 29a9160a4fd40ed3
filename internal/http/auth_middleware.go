package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/AayushAdhikari30/SwiftTalk/internal/domain"
)

type authContextKey string

const contextKeyProfile authContextKey = "swifttalk-profile"

type contextSetter interface {
	SetContext(context.Context)
}

// requireAuth validates the bearer proof, resolves the account it belongs
// to, and stashes the profile on the request context before invoking the
// handler.
func (r *Router) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		proof, err := bearerToken(req.Header.Get("Authorization"))
		if err != nil {
			r.logger.Warn("authorization header invalid", "error", err, "path", req.URL.Path)
			writeError(w, http.StatusUnauthorized, kindUnauthenticated, "authentication required")
			return
		}
		profile, err := r.auth.CheckSession(req.Context(), proof)
		if err != nil {
			r.logger.Warn("session validation failed", "error", err, "path", req.URL.Path)
			r.writeAuthError(w, err)
			return
		}
		ctx := context.WithValue(req.Context(), contextKeyProfile, profile)
		if setter, ok := w.(contextSetter); ok {
			setter.SetContext(ctx)
		}
		next(w, req.WithContext(ctx))
	}
}

// profileFromContext extracts the authenticated profile from the context.
func profileFromContext(ctx context.Context) (domain.Profile, bool) {
	value := ctx.Value(contextKeyProfile)
	if value == nil {
		return domain.Profile{}, false
	}
	profile, ok := value.(domain.Profile)
	return profile, ok
}

func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("empty bearer token")
	}
	return token, nil
}
