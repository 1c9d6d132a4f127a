package store

import (
	"context"
	"testing"
	"time"

	"github.com/go-training/gh-notifier/pkg/core"

	"github.com/redis/rueidis"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer starts a disposable Redis and returns its address and a cleanup func.
func setupRedisContainer(ctx context.Context) (string, func(), error) {
	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", nil, err
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		_ = container.Terminate(ctx)
		return "", nil, err
	}

	cleanup := func() {
		_ = container.Terminate(context.Background())
	}
	return endpoint, cleanup, nil
}

// setupRedisStore creates a RedisStore backed by a test container.
// Skip tests if Docker is not available.
func setupRedisStore(t *testing.T, nonceTTL time.Duration) *RedisStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()
	addr, cleanup, err := setupRedisContainer(ctx)
	if err != nil {
		t.Skipf("Redis container not available, skipping test: %v", err)
	}
	t.Cleanup(cleanup)

	store, err := NewRedisStoreFromOptions(RedisOptions{Addr: addr, NonceTTL: nonceTTL})
	if err != nil {
		t.Fatalf("NewRedisStoreFromOptions() error = %v", err)
	}
	t.Cleanup(store.Close)

	return store
}

func TestRedisStore(t *testing.T) {
	testStoreContract(t, setupRedisStore(t, 0))
}

func TestRedisStore_NonceTTL(t *testing.T) {
	s := setupRedisStore(t, 10*time.Minute)
	ctx := context.Background()

	if err := s.SetOAuthState(ctx, "nonce"); err != nil {
		t.Fatalf("SetOAuthState() error = %v", err)
	}

	cmd := s.client.B().Ttl().Key(keyPrefix + oauthStateKey).Build()
	ttl, err := s.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		t.Fatalf("TTL error = %v", err)
	}
	if ttl <= 0 || ttl > 600 {
		t.Errorf("TTL = %d, want within (0, 600]", ttl)
	}

	if err := s.SetAccessToken(ctx, "token"); err != nil {
		t.Fatalf("SetAccessToken() error = %v", err)
	}
	cmd = s.client.B().Ttl().Key(keyPrefix + accessTokenKey).Build()
	ttl, err = s.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		t.Fatalf("TTL error = %v", err)
	}
	if ttl != -1 {
		t.Errorf("access token TTL = %d, want -1 (no expiry)", ttl)
	}
}

func TestRedisStore_CorruptValueIsSerializationError(t *testing.T) {
	s := setupRedisStore(t, 0)
	ctx := context.Background()

	cmd := s.client.B().Set().Key(keyPrefix + oauthStateKey).Value("not-json").Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		t.Fatalf("seed value: %v", err)
	}

	_, err := s.GetOAuthState(ctx)
	if kind := core.PersistenceErrorOf(err); kind != core.PersistenceSerialization {
		t.Errorf("PersistenceErrorOf() = %v, want %v", kind, core.PersistenceSerialization)
	}
}

func TestNewRedisStore_UnreachableIsIOError(t *testing.T) {
	_, err := NewRedisStoreFromClientOption(rueidis.ClientOption{
		InitAddress: []string{"127.0.0.1:1"},
	})
	if err == nil {
		t.Skip("a Redis server answered on 127.0.0.1:1")
	}
	if kind := core.PersistenceErrorOf(err); kind != core.PersistenceIO {
		t.Errorf("PersistenceErrorOf() = %v, want %v", kind, core.PersistenceIO)
	}
}

func TestTTLSeconds(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int64
	}{
		{in: time.Millisecond, want: 1},
		{in: 500 * time.Millisecond, want: 1},
		{in: time.Second, want: 1},
		{in: 1500 * time.Millisecond, want: 2},
		{in: 10 * time.Minute, want: 600},
	}

	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			if got := ttlSeconds(tt.in); got != tt.want {
				t.Errorf("ttlSeconds(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestRedisStore_SubSecondNonceTTL(t *testing.T) {
	s := setupRedisStore(t, 500*time.Millisecond)
	ctx := context.Background()

	if err := s.SetOAuthState(ctx, "nonce"); err != nil {
		t.Fatalf("SetOAuthState() error = %v", err)
	}
	got, err := s.GetOAuthState(ctx)
	if err != nil {
		t.Fatalf("GetOAuthState() error = %v", err)
	}
	if got != "nonce" {
		t.Errorf("GetOAuthState() = %q, want %q", got, "nonce")
	}
}
