package service

import (
	"context"
	"errors"
	"time"

	"user-directory-backend/internal/features/user/models"
	"user-directory-backend/internal/features/user/repository"
)

var (
	// ErrNotAuthorized is an expected business outcome, not an
	// infrastructure failure: callers check it with errors.Is instead
	// of treating it as a store error.
	ErrNotAuthorized = errors.New("acting user is not authorized")
	ErrUserNotFound  = repository.ErrUserNotFound
)

// DirectoryService runs the read-modify-persist sequences of the
// directory. Authorization is evaluated against the acting user's role
// as stored at the moment of each call, never cached between calls.
// Reads and writes against the same id from concurrent callers are
// last-write-wins; the service adds no locking on top of the store.
type DirectoryService interface {
	Create(ctx context.Context, name, email, credential string, role models.Role) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Search(ctx context.Context, criteria models.Criteria) ([]*models.User, error)

	Warn(ctx context.Context, actingID, targetID string) (int, error)
	Mute(ctx context.Context, actingID, targetID string, d time.Duration) (int64, error)
	CheckCredential(ctx context.Context, actingID, targetID, input string) (bool, error)
	ResetCredential(ctx context.Context, actingID, targetID, newValue string) error
	SoftDelete(ctx context.Context, actingID, targetID string) (bool, error)
	PurgeByCriteria(ctx context.Context, actingID string, criteria models.Criteria) (int, error)
}

type directoryService struct {
	repo repository.UserDirectory
}

func NewDirectoryService(repo repository.UserDirectory) DirectoryService {
	return &directoryService{repo: repo}
}

func (s *directoryService) Create(ctx context.Context, name, email, credential string, role models.Role) (*models.User, error) {
	user := models.NewUser(name, email, credential, role)
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *directoryService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *directoryService) Search(ctx context.Context, criteria models.Criteria) ([]*models.User, error) {
	return s.repo.Search(ctx, criteria)
}

// loadPair resolves the acting and target users for a gated operation.
func (s *directoryService) loadPair(ctx context.Context, actingID, targetID string) (*models.User, *models.User, error) {
	acting, err := s.repo.GetByID(ctx, actingID)
	if err != nil {
		return nil, nil, err
	}
	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}
	return acting, target, nil
}

func (s *directoryService) Warn(ctx context.Context, actingID, targetID string) (int, error) {
	acting, target, err := s.loadPair(ctx, actingID, targetID)
	if err != nil {
		return 0, err
	}
	if !models.HasModerationCapability(acting.Role()) || target.IsDeleted() {
		return 0, ErrNotAuthorized
	}

	count := target.AddWarning()
	if err := s.repo.Save(ctx, target); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *directoryService) Mute(ctx context.Context, actingID, targetID string, d time.Duration) (int64, error) {
	acting, target, err := s.loadPair(ctx, actingID, targetID)
	if err != nil {
		return 0, err
	}
	if !models.HasModerationCapability(acting.Role()) || target.IsDeleted() {
		return 0, ErrNotAuthorized
	}

	until := target.Mute(d)
	if err := s.repo.Save(ctx, target); err != nil {
		return 0, err
	}
	return until, nil
}

func (s *directoryService) CheckCredential(ctx context.Context, actingID, targetID, input string) (bool, error) {
	acting, target, err := s.loadPair(ctx, actingID, targetID)
	if err != nil {
		return false, err
	}
	// Self-service check is the one place identity alone authorizes.
	if acting.ID() != target.ID() && !models.HasAdminCapability(acting.Role()) {
		return false, ErrNotAuthorized
	}
	return target.CheckCredential(input), nil
}

func (s *directoryService) ResetCredential(ctx context.Context, actingID, targetID, newValue string) error {
	acting, target, err := s.loadPair(ctx, actingID, targetID)
	if err != nil {
		return err
	}
	if target.IsDeleted() {
		return ErrNotAuthorized
	}
	// The capability check lives on the target's mutation entrypoint.
	if !target.ResetCredential(acting, newValue) {
		return ErrNotAuthorized
	}
	return s.repo.Save(ctx, target)
}

func (s *directoryService) SoftDelete(ctx context.Context, actingID, targetID string) (bool, error) {
	acting, target, err := s.loadPair(ctx, actingID, targetID)
	if err != nil {
		return false, err
	}
	if !models.HasAdminCapability(acting.Role()) {
		return false, ErrNotAuthorized
	}

	flipped := target.SoftDelete()
	if err := s.repo.Save(ctx, target); err != nil {
		return false, err
	}
	return flipped, nil
}

func (s *directoryService) PurgeByCriteria(ctx context.Context, actingID string, criteria models.Criteria) (int, error) {
	acting, err := s.repo.GetByID(ctx, actingID)
	if err != nil {
		return 0, err
	}
	if !models.HasAdminCapability(acting.Role()) {
		return 0, ErrNotAuthorized
	}
	return s.repo.SoftDeleteByCriteria(ctx, criteria)
}
