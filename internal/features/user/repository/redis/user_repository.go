package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"user-directory-backend/internal/features/user/models"
	"user-directory-backend/internal/features/user/repository"
	platformredis "user-directory-backend/internal/platform/redis"
)

const (
	keyPrefixUser   = "user:"
	keyUsersActive  = "users:active"
	keyUsersDeleted = "users:deleted"
	keyPrefixRole   = "users:role:"
)

// userDirectory хранит User-ы только в Redis (ключ "user:<id>").
//
// The role and deletion sets are secondary indexes kept for cheap
// exact-match lookups; Search never reads them, it scans and filters the
// records themselves, so a stale index cannot change a search result.
type userDirectory struct {
	store *platformredis.Store
}

func NewUserDirectory(store *platformredis.Store) repository.UserDirectory {
	return &userDirectory{store: store}
}

func makeUserKey(id string) string { return keyPrefixUser + id }

func makeRoleKey(role models.Role) string { return keyPrefixRole + string(role) }

// put upserts the record and refreshes the index sets in one MULTI/EXEC
// round-trip, so a reader never observes the record without its indexes.
func (d *userDirectory) put(ctx context.Context, user *models.User) error {
	client, err := d.store.Client(ctx)
	if err != nil {
		return err
	}

	rec := models.ToRecord(user)
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal user record: %w", err)
	}

	pipe := client.TxPipeline()
	pipe.Set(ctx, makeUserKey(rec.ID), data, 0)
	pipe.SAdd(ctx, makeRoleKey(user.Role()), rec.ID)
	if rec.IsDeleted {
		pipe.SRem(ctx, keyUsersActive, rec.ID)
		pipe.SAdd(ctx, keyUsersDeleted, rec.ID)
	} else {
		pipe.SAdd(ctx, keyUsersActive, rec.ID)
		pipe.SRem(ctx, keyUsersDeleted, rec.ID)
	}

	_, err = pipe.Exec(ctx)
	return err
}

func (d *userDirectory) Create(ctx context.Context, user *models.User) error {
	return d.put(ctx, user)
}

func (d *userDirectory) Save(ctx context.Context, user *models.User) error {
	return d.put(ctx, user)
}

func (d *userDirectory) GetByID(ctx context.Context, id string) (*models.User, error) {
	client, err := d.store.Client(ctx)
	if err != nil {
		return nil, err
	}

	data, err := client.Get(ctx, makeUserKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec models.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user record: %w", err)
	}

	return models.FromRecord(rec), nil
}

// loadAll reads every record in the directory through the codec.
func (d *userDirectory) loadAll(ctx context.Context) ([]*models.User, error) {
	client, err := d.store.Client(ctx)
	if err != nil {
		return nil, err
	}

	users := []*models.User{}
	iter := client.Scan(ctx, 0, keyPrefixUser+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue // key vanished between SCAN and GET
		}
		if err != nil {
			return nil, err
		}

		var rec models.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal user record: %w", err)
		}
		users = append(users, models.FromRecord(rec))
	}

	return users, iter.Err()
}

func (d *userDirectory) Search(ctx context.Context, criteria models.Criteria) ([]*models.User, error) {
	users, err := d.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	if criteria.IsEmpty() {
		return users, nil
	}

	matched := []*models.User{}
	for _, u := range users {
		if criteria.Matches(u) {
			matched = append(matched, u)
		}
	}
	return matched, nil
}

func (d *userDirectory) SoftDeleteByCriteria(ctx context.Context, criteria models.Criteria) (int, error) {
	users, err := d.Search(ctx, criteria)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, u := range users {
		flipped := u.SoftDelete()
		if err := d.put(ctx, u); err != nil {
			return deleted, err
		}
		if flipped {
			deleted++
		}
	}
	return deleted, nil
}
