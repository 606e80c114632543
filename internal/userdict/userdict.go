// Package userdict stores user-added words in Redis, keyed per locale, so
// accepted personal words survive restarts and are shared between editor
// sessions talking to the same server.
package userdict

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// UserDict wraps a Redis set of words the user has accepted as correct.
type UserDict struct {
	client *redis.Client
	key    string
}

// Open connects to Redis and verifies the connection before returning.
func Open(ctx context.Context, addr string, db int, keyPrefix, locale string) (*UserDict, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to user dictionary at %s: %w", addr, err)
	}
	key := keyPrefix
	if locale != "" {
		key = keyPrefix + ":" + locale
	}
	log.Debugf("user dictionary connected: addr=%s key=%s", addr, key)
	return &UserDict{client: client, key: key}, nil
}

// Add inserts a word into the user dictionary.
func (ud *UserDict) Add(ctx context.Context, word string) error {
	return ud.client.SAdd(ctx, ud.key, word).Err()
}

// Remove deletes a word from the user dictionary.
func (ud *UserDict) Remove(ctx context.Context, word string) error {
	return ud.client.SRem(ctx, ud.key, word).Err()
}

// Contains reports whether the user has accepted word.
func (ud *UserDict) Contains(ctx context.Context, word string) (bool, error) {
	return ud.client.SIsMember(ctx, ud.key, word).Result()
}

// All returns every word in the user dictionary.
func (ud *UserDict) All(ctx context.Context) ([]string, error) {
	return ud.client.SMembers(ctx, ud.key).Result()
}

// Close releases the Redis connection.
func (ud *UserDict) Close() error {
	return ud.client.Close()
}
