// Package redis persists the heartbeat mark in Redis so the screener
// survives restarts without double-beating.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

const (
	beatKey = "screener:last_beat"

	// Marks are only compared within a day; 48h of retention is plenty.
	beatTTL = 48 * time.Hour
)

// Config configures the Redis beat store.
type Config struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
}

// BeatStore keeps the last-sent heartbeat mark in a Redis string key.
// It implements heartbeat.BeatStore.
type BeatStore struct {
	client *goredis.Client
}

// Client returns the underlying Redis client for health checks.
func (s *BeatStore) Client() *goredis.Client { return s.client }

// New creates a Redis beat store and pings the server.
func New(cfg Config) (*BeatStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &BeatStore{client: client}, nil
}

// LastBeat returns the stored mark, or "" when no beat was recorded yet.
func (s *BeatStore) LastBeat(ctx context.Context) (string, error) {
	mark, err := s.client.Get(ctx, beatKey).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", beatKey, err)
	}
	return mark, nil
}

// SetLastBeat stores the mark with a refresh of the retention TTL.
func (s *BeatStore) SetLastBeat(ctx context.Context, mark string) error {
	if err := s.client.Set(ctx, beatKey, mark, beatTTL).Err(); err != nil {
		return fmt.Errorf("set %s: %w", beatKey, err)
	}
	return nil
}

// Close releases the client connection pool.
func (s *BeatStore) Close() error {
	return s.client.Close()
}
