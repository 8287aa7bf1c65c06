// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Redis stores JSON-encoded records under "<prefix>task:<id>" and
// "<prefix>summary:<id>". A zero TTL keeps records indefinitely.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// OpenRedis connects to cfg.RedisAddr and verifies the connection.
func OpenRedis(ctx context.Context, cfg types.StoreConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
	}
	return NewRedis(client, cfg.RedisPrefix, cfg.RedisTTL), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) taskKey(id string) string    { return r.prefix + "task:" + id }
func (r *Redis) summaryKey(id string) string { return r.prefix + "summary:" + id }

func (r *Redis) PutTask(ctx context.Context, task *types.Task) error {
	return r.put(ctx, r.taskKey(task.ID), task)
}

func (r *Redis) GetTask(ctx context.Context, id string) (*types.Task, error) {
	var t types.Task
	if err := r.get(ctx, r.taskKey(id), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Redis) PutSummary(ctx context.Context, summary *types.PaperSummary) error {
	return r.put(ctx, r.summaryKey(summary.ID), summary)
}

func (r *Redis) GetSummary(ctx context.Context, id string) (*types.PaperSummary, error) {
	var s types.PaperSummary
	if err := r.get(ctx, r.summaryKey(id), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Redis) put(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (r *Redis) get(ctx context.Context, key string, dst any) error {
	payload, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", key, err)
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
