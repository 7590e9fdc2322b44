package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type fakeStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	val, ok := f.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeStore) AccessSessionKey(accessID string) string {
	return fmt.Sprintf("mart:session:%s", accessID)
}

func TestManagerGenerateRotateRevoke(t *testing.T) {
	store := newFakeStore()
	manager := &Manager{store: store, ttl: time.Hour}

	ctx := context.Background()
	accessID := NewAccessID()
	token, err := manager.Generate(ctx, accessID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if stored := store.data[store.AccessSessionKey(accessID)]; stored != token {
		t.Fatalf("expected stored token %q, got %q", token, stored)
	}

	if _, _, err := manager.Rotate(ctx, accessID, "nope"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token error, got %v", err)
	}

	newAccessID, newToken, err := manager.Rotate(ctx, accessID, token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if newAccessID == accessID {
		t.Fatal("expected rotation to mint a new access id")
	}
	if _, exists := store.data[store.AccessSessionKey(accessID)]; exists {
		t.Fatal("old session left behind after rotation")
	}
	if stored := store.data[store.AccessSessionKey(newAccessID)]; stored != newToken {
		t.Fatalf("expected new token stored, got %q", stored)
	}

	if err := manager.Revoke(ctx, newAccessID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	has, err := manager.HasSession(ctx, newAccessID)
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if has {
		t.Fatal("expected session gone after revoke")
	}
}

func TestManagerRotateMissingSession(t *testing.T) {
	manager := &Manager{store: newFakeStore(), ttl: time.Hour}
	if _, _, err := manager.Rotate(context.Background(), "gone", "token"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token error, got %v", err)
	}
}
