package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"mysafepocket/internal/pocket/models"
)

const redisKeyPrefix = "pocket:"

// RedisStore persists pocket records in Redis without expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed pocket store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(pocketID, record string) string {
	return redisKeyPrefix + pocketID + ":" + record
}

// LoadIdentity returns the pocket identity or ErrNotFound.
func (s *RedisStore) LoadIdentity(ctx context.Context, pocketID string) (models.Identity, error) {
	data, err := s.client.Get(ctx, redisKey(pocketID, IdentityRecord)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Identity{}, ErrNotFound
		}
		return models.Identity{}, fmt.Errorf("load identity: %w", err)
	}
	return decodeIdentity(data)
}

func (s *RedisStore) SaveIdentity(ctx context.Context, pocketID string, identity models.Identity) error {
	data, err := encodeIdentity(identity)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKey(pocketID, IdentityRecord), data, 0).Err(); err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

// LoadCredentials returns the stored credentials, or an empty slice when none were saved.
func (s *RedisStore) LoadCredentials(ctx context.Context, pocketID string) ([]models.Credential, error) {
	data, err := s.client.Get(ctx, redisKey(pocketID, CredentialsRecord)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.Credential{}, nil
		}
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	return decodeCredentials(data)
}

func (s *RedisStore) SaveCredentials(ctx context.Context, pocketID string, creds []models.Credential) error {
	data, err := encodeCredentials(creds)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKey(pocketID, CredentialsRecord), data, 0).Err(); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// Delete removes both records of a pocket in a single DEL.
func (s *RedisStore) Delete(ctx context.Context, pocketID string) error {
	err := s.client.Del(ctx,
		redisKey(pocketID, IdentityRecord),
		redisKey(pocketID, CredentialsRecord),
	).Err()
	if err != nil {
		return fmt.Errorf("delete pocket: %w", err)
	}
	return nil
}

// Ping checks Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
