// Package store provides support for connecting to the shared key-value store that
// coordinates vehicle simulation across instances (spec.md §4.4, §6). It is the
// fleetsim analogue of the teacher's foundation/database package, adapted from a
// relational connection opener to a Redis one since the shared collections this
// system needs (a time-ordered sorted set, two membership sets, a map) are a
// Redis data model, not a relational one.
package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Config is the required properties to reach the shared store.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Open knows how to open a client connection based on the configuration, verifying
// reachability with a PING before returning.
func Open(cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to store at %s: %w", cfg.Addr, err)
	}
	return client, nil
}
