// Package redis provides the verification-result cache. Only offense codes
// and their legal classifications are cached; the cache never sees
// applicant data, so the privacy posture of the system is unaffected.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/charlesmartinedd/k12-background-check-interpreter/internal/infrastructure/monitoring/logging"
	"github.com/charlesmartinedd/k12-background-check-interpreter/pkg/errors"
)

var (
	ErrConnectionFailed = errors.New(errors.ErrCodeCacheError, "redis connection failed")
)

// Options holds standalone Redis connection parameters.
type Options struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Client wraps a go-redis client with the interpreter's logging.
type Client struct {
	rdb    *redis.Client
	logger logging.Logger
}

// NewClient dials Redis and verifies connectivity with a ping.
func NewClient(ctx context.Context, opts Options, log logging.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     opts.PoolSize,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, ErrConnectionFailed.WithCause(err)
	}

	log.Info("redis connected", logging.String("addr", opts.Addr))
	return &Client{rdb: rdb, logger: log}, nil
}

// NewClientFromRDB wraps an existing go-redis client. Used by tests with
// redismock.
func NewClientFromRDB(rdb *redis.Client, log logging.Logger) *Client {
	return &Client{rdb: rdb, logger: log}
}

// Ping checks connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
