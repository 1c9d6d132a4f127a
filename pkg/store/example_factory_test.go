package store_test

import (
	"context"
	"fmt"
	"log"

	"github.com/go-training/gh-notifier/pkg/store"
)

// Example demonstrates basic usage of the store factory.
func Example() {
	// Create a memory store using the factory
	s, err := store.NewStore(store.MemoryConfig())
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	if err := s.SetOAuthState(ctx, "nonce-123"); err != nil {
		log.Fatal(err)
	}

	state, err := s.GetOAuthState(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(state)

	// Consume the nonce
	if err := s.ClearOAuthState(ctx); err != nil {
		log.Fatal(err)
	}
	state, _ = s.GetOAuthState(ctx)
	fmt.Printf("%q\n", state)
	// Output:
	// nonce-123
	// ""
}
