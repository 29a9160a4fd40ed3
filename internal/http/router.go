package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AayushAdhikari30/SwiftTalk/internal/domain"
	"github.com/AayushAdhikari30/SwiftTalk/internal/repository"
	"github.com/AayushAdhikari30/SwiftTalk/internal/service/auth"
)

// Router wires HTTP endpoints to the auth service.
type Router struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	auth     auth.Service
	limiter  RateLimiter
	dbHealth func(context.Context) error

	metricsOnce        sync.Once
	metricsInitialized bool
	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	rateLimitHits      *prometheus.CounterVec
}

const (
	rateWindowDefault     = time.Minute
	rateLimitSignup       = 5
	rateLimitLogin        = 12
	rateLimitSessionRead  = 120
	rateLimitProfileWrite = 60
	healthCheckTimeout    = 2 * time.Second
)

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, authSvc auth.Service, limiter RateLimiter, dbHealth func(context.Context) error) *Router {
	r := &Router{
		mux:      http.NewServeMux(),
		logger:   logger,
		auth:     authSvc,
		limiter:  limiter,
		dbHealth: dbHealth,
	}
	if r.limiter == nil {
		r.limiter = NewMemoryRateLimiter()
	}
	r.initMetrics()
	r.register()
	return r
}

// ServeHTTP delegates to the underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Close()
	}
}

func (r *Router) register() {
	r.mux.HandleFunc("/healthz", r.audit("healthz", r.handleHealthz))
	r.mux.Handle("/metrics", promhttp.Handler())
	r.mux.HandleFunc("/auth/signup", r.audit("auth_signup", r.withRateLimit("auth_signup", rateLimitSignup, rateWindowDefault, rateLimitKeyIP, r.handleSignup)))
	r.mux.HandleFunc("/auth/login", r.audit("auth_login", r.withRateLimit("auth_login", rateLimitLogin, rateWindowDefault, rateLimitKeyIP, r.handleLogin)))
	r.mux.HandleFunc("/auth/logout", r.audit("auth_logout", r.handleLogout))
	r.mux.HandleFunc("/auth/check", r.audit("auth_check", r.requireAuth(r.withRateLimit("auth_check", rateLimitSessionRead, rateWindowDefault, r.rateLimitKeyUser, r.handleCheck))))
	r.mux.HandleFunc("/auth/update-profile", r.audit("auth_update_profile", r.requireAuth(r.withRateLimit("auth_update_profile", rateLimitProfileWrite, rateWindowDefault, r.rateLimitKeyUser, r.handleUpdateProfile))))
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			r.logger.Error("database health check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, kindInternal, "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *Router) handleSignup(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Email    string `json:"email"`
		FullName string `json:"fullName"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, kindValidation, "invalid JSON body")
		return
	}
	profile, proof, err := r.auth.Signup(req.Context(), auth.SignupInput{
		Email:    payload.Email,
		FullName: payload.FullName,
		Password: payload.Password,
	})
	if err != nil {
		r.writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{User: profile, Token: proof})
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, kindValidation, "invalid JSON body")
		return
	}
	profile, proof, err := r.auth.Login(req.Context(), payload.Email, payload.Password)
	if err != nil {
		r.writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: profile, Token: proof})
}

// handleLogout always returns success: the server-side revocation is
// best-effort from the client's point of view.
func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	if proof, err := bearerToken(req.Header.Get("Authorization")); err == nil {
		r.auth.Logout(req.Context(), proof)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *Router) handleCheck(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	profile, ok := profileFromContext(req.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, kindUnauthenticated, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (r *Router) handleUpdateProfile(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPut {
		r.methodNotAllowed(w)
		return
	}
	proof, err := bearerToken(req.Header.Get("Authorization"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, kindUnauthenticated, "authentication required")
		return
	}
	var payload struct {
		FullName   *string `json:"fullName"`
		ProfilePic *string `json:"profilePic"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, kindValidation, "invalid JSON body")
		return
	}
	profile, err := r.auth.UpdateProfile(req.Context(), proof, domain.ProfilePatch{
		FullName:   payload.FullName,
		ProfilePic: payload.ProfilePic,
	})
	if err != nil {
		r.writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type sessionResponse struct {
	User  domain.Profile `json:"user"`
	Token string         `json:"token"`
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, kindValidation, "method not allowed")
}

// writeAuthError translates the auth service taxonomy into transport errors.
func (r *Router) writeAuthError(w http.ResponseWriter, err error) {
	var verr *auth.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, kindValidation, verr.Field+" "+verr.Message)
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusConflict, kindDuplicateEmail, "email already registered")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, kindInvalidCredentials, "invalid email or password")
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, kindUnauthenticated, "authentication required")
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, kindNotFound, "account not found")
	default:
		r.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, kindInternal, "internal error")
	}
}
