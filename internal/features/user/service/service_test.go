package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-directory-backend/internal/features/user/models"
	"user-directory-backend/internal/features/user/repository"
)

// stubDirectory keeps records in a map and hands out fresh copies through
// the codec, so a mutation only becomes visible after Save, same as the
// real store.
type stubDirectory struct {
	records  map[string]models.Record
	failWith error
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{records: make(map[string]models.Record)}
}

func (d *stubDirectory) Create(_ context.Context, u *models.User) error {
	if d.failWith != nil {
		return d.failWith
	}
	d.records[u.ID()] = models.ToRecord(u)
	return nil
}

func (d *stubDirectory) Save(ctx context.Context, u *models.User) error {
	return d.Create(ctx, u)
}

func (d *stubDirectory) GetByID(_ context.Context, id string) (*models.User, error) {
	if d.failWith != nil {
		return nil, d.failWith
	}
	rec, ok := d.records[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return models.FromRecord(rec), nil
}

func (d *stubDirectory) Search(_ context.Context, criteria models.Criteria) ([]*models.User, error) {
	if d.failWith != nil {
		return nil, d.failWith
	}
	matched := []*models.User{}
	for _, rec := range d.records {
		u := models.FromRecord(rec)
		if criteria.IsEmpty() || criteria.Matches(u) {
			matched = append(matched, u)
		}
	}
	return matched, nil
}

func (d *stubDirectory) SoftDeleteByCriteria(ctx context.Context, criteria models.Criteria) (int, error) {
	users, err := d.Search(ctx, criteria)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, u := range users {
		if u.SoftDelete() {
			count++
		}
		d.records[u.ID()] = models.ToRecord(u)
	}
	return count, nil
}

func seed(t *testing.T, svc DirectoryService, name string, role models.Role) *models.User {
	t.Helper()
	u, err := svc.Create(context.Background(), name, name+"@example.com", "pw", role)
	require.NoError(t, err)
	return u
}

func TestWarnScenario(t *testing.T) {
	svc := NewDirectoryService(newStubDirectory())
	ctx := context.Background()

	mo := seed(t, svc, "Mo", models.RoleModerator)
	ann := seed(t, svc, "Ann", models.RoleUser)

	count, err := svc.Warn(ctx, mo.ID(), ann.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = svc.Warn(ctx, mo.ID(), ann.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// the new count must be persisted, not just returned
	got, err := svc.Get(ctx, ann.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, got.Warnings())
}

func TestMuteScenario(t *testing.T) {
	svc := NewDirectoryService(newStubDirectory())
	ctx := context.Background()

	mo := seed(t, svc, "Mo", models.RoleModerator)
	ann := seed(t, svc, "Ann", models.RoleUser)

	until, err := svc.Mute(ctx, mo.ID(), ann.ID(), time.Minute)
	require.NoError(t, err)

	ahead := until - time.Now().UnixMilli()
	assert.InDelta(t, 60_000, ahead, 2_000)

	got, err := svc.Get(ctx, ann.ID())
	require.NoError(t, err)
	assert.True(t, got.IsMuted(time.Now()))
	assert.False(t, got.IsMuted(time.UnixMilli(until+1)))
}

func TestResetCredentialScenario(t *testing.T) {
	svc := NewDirectoryService(newStubDirectory())
	ctx := context.Background()

	ad := seed(t, svc, "Ad", models.RoleAdmin)
	bob, err := svc.Create(ctx, "Bob", "bob@example.com", "pw1", models.RoleUser)
	require.NoError(t, err)

	require.NoError(t, svc.ResetCredential(ctx, ad.ID(), bob.ID(), "pw2"))

	ok, err := svc.CheckCredential(ctx, ad.ID(), bob.ID(), "pw1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.CheckCredential(ctx, ad.ID(), bob.ID(), "pw2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckCredentialSelfService(t *testing.T) {
	svc := NewDirectoryService(newStubDirectory())
	ctx := context.Background()

	ann := seed(t, svc, "Ann", models.RoleUser)
	bob := seed(t, svc, "Bob", models.RoleUser)

	// a plain user may check their own credential
	ok, err := svc.CheckCredential(ctx, ann.ID(), ann.ID(), "pw")
	require.NoError(t, err)
	assert.True(t, ok)

	// but not someone else's
	_, err = svc.CheckCredential(ctx, ann.ID(), bob.ID(), "pw")
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestAuthorizationMatrix(t *testing.T) {
	tests := []struct {
		role        models.Role
		canModerate bool
		canAdmin    bool
	}{
		{models.RoleUser, false, false},
		{models.RoleModerator, true, false},
		{models.RoleAdmin, false, true},
		{models.RoleSuperAdmin, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			svc := NewDirectoryService(newStubDirectory())
			ctx := context.Background()

			acting := seed(t, svc, "Act", tt.role)
			target := seed(t, svc, "Target", models.RoleUser)

			_, err := svc.Warn(ctx, acting.ID(), target.ID())
			assert.Equal(t, tt.canModerate, err == nil, "warn")

			_, err = svc.Mute(ctx, acting.ID(), target.ID(), time.Minute)
			assert.Equal(t, tt.canModerate, err == nil, "mute")

			err = svc.ResetCredential(ctx, acting.ID(), target.ID(), "pw2")
			assert.Equal(t, tt.canAdmin, err == nil, "reset credential")

			_, err = svc.SoftDelete(ctx, acting.ID(), target.ID())
			assert.Equal(t, tt.canAdmin, err == nil, "soft delete")
		})
	}
}

func TestSoftDeleteReportsTransition(t *testing.T) {
	svc := NewDirectoryService(newStubDirectory())
	ctx := context.Background()

	ad := seed(t, svc, "Ad", models.RoleAdmin)
	ann := seed(t, svc, "Ann", models.RoleUser)

	flipped, err := svc.SoftDelete(ctx, ad.ID(), ann.ID())
	require.NoError(t, err)
	assert.True(t, flipped)

	flipped, err = svc.SoftDelete(ctx, ad.ID(), ann.ID())
	require.NoError(t, err)
	assert.False(t, flipped)

	got, err := svc.Get(ctx, ann.ID())
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())
}

func TestModerationRejectsDeletedTarget(t *testing.T) {
	svc := NewDirectoryService(newStubDirectory())
	ctx := context.Background()

	mo := seed(t, svc, "Mo", models.RoleModerator)
	ad := seed(t, svc, "Ad", models.RoleAdmin)
	ann := seed(t, svc, "Ann", models.RoleUser)

	_, err := svc.SoftDelete(ctx, ad.ID(), ann.ID())
	require.NoError(t, err)

	_, err = svc.Warn(ctx, mo.ID(), ann.ID())
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = svc.Mute(ctx, mo.ID(), ann.ID(), time.Minute)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	err = svc.ResetCredential(ctx, ad.ID(), ann.ID(), "pw2")
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestPurgeByCriteria(t *testing.T) {
	svc := NewDirectoryService(newStubDirectory())
	ctx := context.Background()

	ad := seed(t, svc, "Ad", models.RoleAdmin)
	seed(t, svc, "Ann", models.RoleUser)
	seed(t, svc, "Bob", models.RoleUser)

	count, err := svc.PurgeByCriteria(ctx, ad.ID(), models.Criteria{Role: models.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	active := false
	left, err := svc.Search(ctx, models.Criteria{IsDeleted: &active})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, ad.ID(), left[0].ID())
}

func TestPurgeDeniedForModerator(t *testing.T) {
	svc := NewDirectoryService(newStubDirectory())
	ctx := context.Background()

	mo := seed(t, svc, "Mo", models.RoleModerator)
	seed(t, svc, "Ann", models.RoleUser)

	_, err := svc.PurgeByCriteria(ctx, mo.ID(), models.Criteria{})
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestUnknownActingUser(t *testing.T) {
	svc := NewDirectoryService(newStubDirectory())
	ctx := context.Background()

	ann := seed(t, svc, "Ann", models.RoleUser)

	_, err := svc.Warn(ctx, "missing", ann.ID())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStoreFailurePropagates(t *testing.T) {
	dir := newStubDirectory()
	svc := NewDirectoryService(dir)
	ctx := context.Background()

	ann := seed(t, svc, "Ann", models.RoleUser)

	dir.failWith = errors.New("connection refused")
	_, err := svc.Get(ctx, ann.ID())
	assert.EqualError(t, err, "connection refused")
}
