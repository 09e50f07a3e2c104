package repository

import (
	"context"
	"errors"

	"user-directory-backend/internal/features/user/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserDirectory is the durable directory keyed by user id. Create and
// Save are both upserts; there is no "must not exist" insert. Search with
// empty criteria returns the whole directory, and a criteria matching
// nothing returns an empty slice, not an error.
type UserDirectory interface {
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	Search(ctx context.Context, criteria models.Criteria) ([]*models.User, error)
	// SoftDeleteByCriteria flips isDeleted on every matching record and
	// returns how many records actually changed. Empty criteria matches
	// the whole directory; call sites are expected to confirm that
	// explicitly before asking for it.
	SoftDeleteByCriteria(ctx context.Context, criteria models.Criteria) (int, error)
}
