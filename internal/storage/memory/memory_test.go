package memory

import (
	"context"
	"testing"
)

func TestStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := New(map[string]string{"seeded": "[]"})

	if v, ok, err := s.Get(ctx, "seeded"); err != nil || !ok || v != "[]" {
		t.Fatalf("unexpected seeded value: v=%q ok=%v err=%v", v, ok, err)
	}
	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, "k", "one"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "k", "two"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if v, _, _ := s.Get(ctx, "k"); v != "two" {
		t.Fatalf("expected overwrite, got %q", v)
	}

	keys := s.Keys()
	if len(keys) != 2 || keys[0] != "k" || keys[1] != "seeded" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestStoreSeedIsCopied(t *testing.T) {
	seed := map[string]string{"a": "1"}
	s := New(seed)
	seed["a"] = "changed"
	if v, _, _ := s.Get(context.Background(), "a"); v != "1" {
		t.Fatalf("store shares the seed map: got %q", v)
	}
}

func TestStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New(nil)
	if err := s.Set(ctx, "k", "v"); err == nil {
		t.Fatal("expected error on cancelled context")
	}
	if _, _, err := s.Get(ctx, "k"); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}
