package webhooks

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memStore struct {
	keys   map[string]string
	setErr error
}

func newMemStore() *memStore { return &memStore{keys: map[string]string{}} }

func (s *memStore) Get(ctx context.Context, key string) (string, error) {
	v, ok := s.keys[key]
	if !ok {
		return "", errors.New("redis: nil")
	}
	return v, nil
}

func (s *memStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if s.setErr != nil {
		return false, s.setErr
	}
	if _, exists := s.keys[key]; exists {
		return false, nil
	}
	s.keys[key] = "1"
	return true, nil
}

func (s *memStore) IdempotencyKey(scope, id string) string {
	return "lp:idempotency:" + scope + ":" + id
}

func (s *memStore) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.keys, k)
	}
	return nil
}

func TestGuardCheckAndMark(t *testing.T) {
	store := newMemStore()
	guard, err := NewIdempotencyGuard(store, time.Hour, "provider")
	if err != nil {
		t.Fatalf("NewIdempotencyGuard: %v", err)
	}
	ctx := context.Background()

	seen, err := guard.CheckAndMark(ctx, "evt-1")
	if err != nil {
		t.Fatalf("CheckAndMark: %v", err)
	}
	if seen {
		t.Fatal("first delivery must not be seen")
	}

	seen, err = guard.CheckAndMark(ctx, "evt-1")
	if err != nil {
		t.Fatalf("CheckAndMark: %v", err)
	}
	if !seen {
		t.Fatal("redelivery must be seen")
	}

	if err := guard.Release(ctx, "evt-1"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	seen, _ = guard.CheckAndMark(ctx, "evt-1")
	if seen {
		t.Fatal("released event must be retryable")
	}
}

func TestGuardValidation(t *testing.T) {
	if _, err := NewIdempotencyGuard(nil, time.Hour, "x"); err == nil {
		t.Fatal("expected error for missing store")
	}
	if _, err := NewIdempotencyGuard(newMemStore(), time.Hour, ""); err == nil {
		t.Fatal("expected error for missing scope")
	}

	guard, _ := NewIdempotencyGuard(newMemStore(), time.Hour, "provider")
	if _, err := guard.CheckAndMark(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty event id")
	}
}

func TestGuardStoreError(t *testing.T) {
	store := newMemStore()
	store.setErr = errors.New("connection refused")
	guard, _ := NewIdempotencyGuard(store, time.Hour, "provider")
	if _, err := guard.CheckAndMark(context.Background(), "evt-1"); err == nil {
		t.Fatal("expected store error to surface")
	}
}
