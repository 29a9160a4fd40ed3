package repository

import "errors"

// ErrNotFound indicates an entity was not located.
var ErrNotFound = errors.New("repository: not found")

// ErrDuplicateEmail indicates a create collided with an existing account's
// email, compared case-insensitively.
var ErrDuplicateEmail = errors.New("repository: duplicate email")
