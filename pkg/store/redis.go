package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-training/gh-notifier/pkg/core"
	"github.com/redis/rueidis"
)

// Key prefix for Redis storage
const keyPrefix = "notifier:"

// record is the JSON document stored under each Redis key.
type record struct {
	Value     string `json:"value"`
	UpdatedAt int64  `json:"updated_at"`
}

// RedisStore implements the core.Store interface using Redis via rueidis.
// Reads bypass client-side caching: the OAuth state is consumed once and a
// cached token could outlive a logout issued from another process.
type RedisStore struct {
	slots

	client   rueidis.Client
	nonceTTL time.Duration
}

// NewRedisStore creates a new instance of RedisStore with the provided rueidis client.
func NewRedisStore(client rueidis.Client) *RedisStore {
	r := &RedisStore{
		client: client,
	}
	r.slots = slots{b: r}
	return r
}

// RedisOptions contains configuration for Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// NonceTTL expires a pending OAuth state after the given duration. Zero keeps it until cleared.
	NonceTTL time.Duration
}

// NewRedisStoreFromOptions creates a new RedisStore with simplified options.
func NewRedisStoreFromOptions(opts RedisOptions) (*RedisStore, error) {
	clientOpts := rueidis.ClientOption{
		InitAddress: []string{opts.Addr},
		Password:    opts.Password,
		SelectDB:    opts.DB,
	}
	store, err := NewRedisStoreFromClientOption(clientOpts)
	if err != nil {
		return nil, err
	}
	store.nonceTTL = opts.NonceTTL
	return store, nil
}

// NewRedisStoreFromClientOption creates a new RedisStore with full rueidis client options.
func NewRedisStoreFromClientOption(opts rueidis.ClientOption) (*RedisStore, error) {
	client, err := rueidis.NewClient(opts)
	if err != nil {
		return nil, persistenceError(core.PersistenceIO, "create redis client", err)
	}
	return NewRedisStore(client), nil
}

// Close closes the Redis client connection.
func (r *RedisStore) Close() {
	r.client.Close()
}

func (r *RedisStore) get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	cmd := r.client.B().Get().Key(keyPrefix + key).Build()
	result, err := r.client.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", nil
		}
		return "", redisError("get "+key+" from redis", err)
	}

	var rec record
	if err := json.Unmarshal([]byte(result), &rec); err != nil {
		return "", persistenceError(core.PersistenceSerialization, "unmarshal "+key, err)
	}
	return rec.Value, nil
}

func (r *RedisStore) set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	data, err := json.Marshal(record{Value: value, UpdatedAt: time.Now().Unix()})
	if err != nil {
		return persistenceError(core.PersistenceSerialization, "marshal "+key, err)
	}

	var cmd rueidis.Completed
	if key == oauthStateKey && r.nonceTTL > 0 {
		cmd = r.client.B().Set().Key(keyPrefix + key).Value(string(data)).ExSeconds(ttlSeconds(r.nonceTTL)).Build()
	} else {
		cmd = r.client.B().Set().Key(keyPrefix + key).Value(string(data)).Build()
	}
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return redisError("save "+key+" to redis", err)
	}
	return nil
}

func (r *RedisStore) del(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	cmd := r.client.B().Del().Key(keyPrefix + key).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return redisError("delete "+key+" from redis", err)
	}
	return nil
}

// redisError classifies a rueidis failure. Errors replied by the server are
// unknown; everything else is a transport problem.
func redisError(op string, err error) error {
	if _, ok := rueidis.IsRedisErr(err); ok {
		return persistenceError(core.PersistenceUnknown, op, err)
	}
	return persistenceError(core.PersistenceIO, op, err)
}

// ttlSeconds rounds d up to whole seconds. Redis rejects an expiry of 0.
func ttlSeconds(d time.Duration) int64 {
	secs := int64(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}
