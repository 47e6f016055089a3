package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voicelab/voiceprobe/internal/credentials"
)

// RedisStore keeps session state in Redis with a TTL, so sessions survive
// process restarts and multiple tester instances can share them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func credentialKey(sessionID string) string { return "session:" + sessionID + ":credential" }
func transcriptKey(sessionID string) string { return "session:" + sessionID + ":transcript" }

func (r *RedisStore) SaveCredential(ctx context.Context, sessionID string, cred *credentials.Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}
	if err := r.client.Set(ctx, credentialKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	return nil
}

func (r *RedisStore) Credential(ctx context.Context, sessionID string) (*credentials.Credential, error) {
	val, err := r.client.Get(ctx, credentialKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}

	var cred credentials.Credential
	if err := json.Unmarshal([]byte(val), &cred); err != nil {
		return nil, fmt.Errorf("unmarshal credential: %w", err)
	}
	return &cred, nil
}

func (r *RedisStore) SaveTranscript(ctx context.Context, sessionID, transcript string) error {
	if err := r.client.Set(ctx, transcriptKey(sessionID), transcript, r.ttl).Err(); err != nil {
		return fmt.Errorf("store transcript: %w", err)
	}
	return nil
}

func (r *RedisStore) Transcript(ctx context.Context, sessionID string) (string, error) {
	val, err := r.client.Get(ctx, transcriptKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load transcript: %w", err)
	}
	return val, nil
}
