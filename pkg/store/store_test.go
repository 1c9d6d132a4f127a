package store

import (
	"context"
	"sync"
	"testing"

	"github.com/go-training/gh-notifier/pkg/core"
)

// testStoreContract runs the behaviour every core.Store backend must share.
func testStoreContract(t *testing.T, s core.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty slots read as empty string", func(t *testing.T) {
		token, err := s.GetAccessToken(ctx)
		if err != nil {
			t.Fatalf("GetAccessToken() error = %v", err)
		}
		if token != "" {
			t.Errorf("GetAccessToken() = %q, want empty", token)
		}
		state, err := s.GetOAuthState(ctx)
		if err != nil {
			t.Fatalf("GetOAuthState() error = %v", err)
		}
		if state != "" {
			t.Errorf("GetOAuthState() = %q, want empty", state)
		}
	})

	t.Run("set then get access token", func(t *testing.T) {
		if err := s.SetAccessToken(ctx, "gho_token"); err != nil {
			t.Fatalf("SetAccessToken() error = %v", err)
		}
		token, err := s.GetAccessToken(ctx)
		if err != nil {
			t.Fatalf("GetAccessToken() error = %v", err)
		}
		if token != "gho_token" {
			t.Errorf("GetAccessToken() = %q, want %q", token, "gho_token")
		}
	})

	t.Run("slots are independent", func(t *testing.T) {
		if err := s.SetOAuthState(ctx, "nonce-1"); err != nil {
			t.Fatalf("SetOAuthState() error = %v", err)
		}
		if err := s.ClearOAuthState(ctx); err != nil {
			t.Fatalf("ClearOAuthState() error = %v", err)
		}
		state, _ := s.GetOAuthState(ctx)
		if state != "" {
			t.Errorf("GetOAuthState() after clear = %q, want empty", state)
		}
		token, _ := s.GetAccessToken(ctx)
		if token != "gho_token" {
			t.Errorf("GetAccessToken() after clearing state = %q, want %q", token, "gho_token")
		}
	})

	t.Run("overwrite keeps latest value", func(t *testing.T) {
		_ = s.SetOAuthState(ctx, "first")
		_ = s.SetOAuthState(ctx, "second")
		state, err := s.GetOAuthState(ctx)
		if err != nil {
			t.Fatalf("GetOAuthState() error = %v", err)
		}
		if state != "second" {
			t.Errorf("GetOAuthState() = %q, want %q", state, "second")
		}
	})

	t.Run("clearing an empty slot succeeds", func(t *testing.T) {
		if err := s.ClearAccessToken(ctx); err != nil {
			t.Fatalf("ClearAccessToken() error = %v", err)
		}
		if err := s.ClearAccessToken(ctx); err != nil {
			t.Errorf("second ClearAccessToken() error = %v", err)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, NewMemoryStore())
}

func TestMemoryStore_EmptyKey(t *testing.T) {
	m := NewMemoryStore()
	if _, err := m.get(context.Background(), ""); err != ErrEmptyKey {
		t.Errorf("get(\"\") error = %v, want %v", err, ErrEmptyKey)
	}
	if err := m.set(context.Background(), "", "v"); err != ErrEmptyKey {
		t.Errorf("set(\"\") error = %v, want %v", err, ErrEmptyKey)
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = m.SetAccessToken(ctx, "token")
		}()
		go func() {
			defer wg.Done()
			_, _ = m.GetAccessToken(ctx)
		}()
	}
	wg.Wait()

	token, _ := m.GetAccessToken(ctx)
	if token != "token" {
		t.Errorf("GetAccessToken() = %q, want %q", token, "token")
	}
}
