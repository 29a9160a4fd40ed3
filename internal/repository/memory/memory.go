package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/AayushAdhikari30/SwiftTalk/internal/domain"
	"github.com/AayushAdhikari30/SwiftTalk/internal/repository"
)

// Repository is an in-memory UserRepository used by tests and local tooling.
// A single mutex gives it the same atomic uniqueness-on-create guarantee the
// PostgreSQL unique index provides.
type Repository struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	byEmail map[string]string // lower(email) -> id
}

// New constructs an empty Repository.
func New() *Repository {
	return &Repository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

var _ repository.UserRepository = (*Repository)(nil)

// CreateUser inserts a user, failing on a case-insensitive email collision.
func (r *Repository) CreateUser(_ context.Context, user *domain.User) error {
	key := strings.ToLower(user.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[key]; exists {
		return repository.ErrDuplicateEmail
	}
	clone := *user
	r.byID[user.ID] = &clone
	r.byEmail[key] = user.ID
	return nil
}

// GetUserByEmail fetches a user by email, case-insensitively.
func (r *Repository) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *r.byID[id]
	return &clone, nil
}

// GetUserByID retrieves a user by identifier.
func (r *Repository) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

// UpdateProfile applies a partial profile update.
func (r *Repository) UpdateProfile(_ context.Context, id string, patch domain.ProfilePatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.FullName != nil {
		user.FullName = *patch.FullName
	}
	if patch.ProfilePic != nil {
		user.ProfilePic = *patch.ProfilePic
	}
	user.UpdatedAt = time.Now().UTC()
	clone := *user
	return &clone, nil
}
