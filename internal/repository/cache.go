package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tink/internal/logger"
	"tink/internal/model"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "tink:"

// Store is the read side of the system of record
type Store interface {
	ListPendingApplications(ctx context.Context, propertyID int64) ([]model.Application, error)
	ListAllPendingApplications(ctx context.Context) ([]model.Application, error)
	GetApplication(ctx context.Context, id int64) (*model.Application, error)
	ListRooms(ctx context.Context, propertyID int64) ([]model.Room, error)
	ListRoomsForProperties(ctx context.Context, propertyIDs []int64) ([]model.Room, error)
}

// SnapshotCache keeps short lived copies of per-property snapshots in Redis.
// Redis failures fall through to the store.
type SnapshotCache struct {
	store  Store
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewSnapshotCache wraps store with a Redis cache
func NewSnapshotCache(store Store, client *redis.Client, ttl time.Duration, log logger.Logger) *SnapshotCache {
	return &SnapshotCache{
		store:  store,
		redis:  client,
		ttl:    ttl,
		logger: log,
	}
}

// NewRedisClient creates a Redis client with the pool settings used by the service
func NewRedisClient(address, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         address,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

func pendingApplicationsKey(propertyID int64) string {
	return fmt.Sprintf("%sapplications:pending:%d", keyPrefix, propertyID)
}

func roomsKey(propertyID int64) string {
	return fmt.Sprintf("%srooms:%d", keyPrefix, propertyID)
}

// ListPendingApplications serves the pending applications of a property
func (c *SnapshotCache) ListPendingApplications(ctx context.Context, propertyID int64) ([]model.Application, error) {
	key := pendingApplicationsKey(propertyID)

	var apps []model.Application
	if c.get(ctx, key, &apps) {
		return apps, nil
	}

	apps, err := c.store.ListPendingApplications(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, apps)
	return apps, nil
}

// ListRooms serves the rooms of a property
func (c *SnapshotCache) ListRooms(ctx context.Context, propertyID int64) ([]model.Room, error) {
	key := roomsKey(propertyID)

	var rooms []model.Room
	if c.get(ctx, key, &rooms) {
		return rooms, nil
	}

	rooms, err := c.store.ListRooms(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, rooms)
	return rooms, nil
}

// GetApplication always reads through; single lookups back write decisions
func (c *SnapshotCache) GetApplication(ctx context.Context, id int64) (*model.Application, error) {
	return c.store.GetApplication(ctx, id)
}

// ListAllPendingApplications reads through
func (c *SnapshotCache) ListAllPendingApplications(ctx context.Context) ([]model.Application, error) {
	return c.store.ListAllPendingApplications(ctx)
}

// ListRoomsForProperties reads through
func (c *SnapshotCache) ListRoomsForProperties(ctx context.Context, propertyIDs []int64) ([]model.Room, error) {
	return c.store.ListRoomsForProperties(ctx, propertyIDs)
}

// Invalidate drops the cached snapshots of a property
func (c *SnapshotCache) Invalidate(ctx context.Context, propertyID int64) error {
	if err := c.redis.Del(ctx, pendingApplicationsKey(propertyID), roomsKey(propertyID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate property %d: %w", propertyID, err)
	}
	return nil
}

// Ping checks the Redis connection
func (c *SnapshotCache) Ping(ctx context.Context) error {
	if err := c.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *SnapshotCache) get(ctx context.Context, key string, dest interface{}) bool {
	val, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WithError(err).Warn("Snapshot cache read failed", map[string]interface{}{"key": key})
		}
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		c.logger.WithError(err).Warn("Discarding malformed cache entry", map[string]interface{}{"key": key})
		return false
	}
	return true
}

func (c *SnapshotCache) set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("Snapshot cache write failed", map[string]interface{}{"key": key})
	}
}
