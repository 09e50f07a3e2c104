package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Store is an explicitly constructed handle to the one Redis connection
// the process uses. The underlying client is dialed lazily on first use
// and shared for the process lifetime; there is no teardown contract.
type Store struct {
	opts *redis.Options

	once   sync.Once
	client *redis.Client
	err    error
}

func NewStore(addr, password string, db int) *Store {
	return &Store{opts: &redis.Options{Addr: addr, Password: password, DB: db}}
}

// NewStoreFromClient wraps an already-connected client. Used by tests.
func NewStoreFromClient(client *redis.Client) *Store {
	s := &Store{}
	s.once.Do(func() { s.client = client })
	return s
}

// Client returns the shared client, dialing and pinging it the first
// time. A failed dial is sticky: the handle does not retry, callers get
// the original error back.
func (s *Store) Client(ctx context.Context) (*redis.Client, error) {
	s.once.Do(func() {
		if s.opts == nil || s.opts.Addr == "" {
			s.err = fmt.Errorf("empty redis addr")
			return
		}
		c := redis.NewClient(s.opts)
		if err := c.Ping(ctx).Err(); err != nil {
			_ = c.Close()
			s.err = fmt.Errorf("failed to connect to redis: %w", err)
			return
		}
		s.client = c
	})
	return s.client, s.err
}
