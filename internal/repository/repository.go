package repository

import (
	"context"

	"github.com/AayushAdhikari30/SwiftTalk/internal/domain"
)

// UserRepository persists users.
//
// CreateUser enforces email uniqueness case-insensitively: two concurrent
// creates for the same address must yield exactly one success and one
// ErrDuplicateEmail. Implementations rely on their own concurrency control
// (a unique index, a mutex) rather than on callers.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) (*domain.User, error)
}
