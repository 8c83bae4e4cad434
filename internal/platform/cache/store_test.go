package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestStore_GetOrLoadCachesValue(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()
	loads := 0

	loader := func(context.Context) (any, error) {
		loads++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		got, err := store.GetOrLoad(ctx, "key", loader)
		if err != nil {
			t.Fatalf("GetOrLoad error: %v", err)
		}
		if got != "value" {
			t.Fatalf("unexpected value %v", got)
		}
	}
	if loads != 1 {
		t.Fatalf("expected a single load, got %d", loads)
	}
}

func TestStore_LoadErrorIsNotCached(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()
	loads := 0

	loader := func(context.Context) (any, error) {
		loads++
		if loads == 1 {
			return nil, fmt.Errorf("boom")
		}
		return 42, nil
	}

	if _, err := store.GetOrLoad(ctx, "key", loader); err == nil {
		t.Fatal("expected first load to fail")
	}
	got, err := store.GetOrLoad(ctx, "key", loader)
	if err != nil {
		t.Fatalf("second load error: %v", err)
	}
	if got != 42 {
		t.Fatalf("unexpected value %v", got)
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "stats:players", 1)
	store.Set(ctx, "stats:teams", 2)
	store.Set(ctx, "matches:all", 3)

	store.DeletePrefix(ctx, "stats:")

	if _, ok := store.Get(ctx, "stats:players"); ok {
		t.Fatal("expected stats:players to be evicted")
	}
	if _, ok := store.Get(ctx, "matches:all"); !ok {
		t.Fatal("expected matches:all to survive")
	}
}
