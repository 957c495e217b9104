package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type fakeStore struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) SessionKey(tokenID string) string { return "gp:session:" + tokenID }

func newTestManager(store *fakeStore) *Manager {
	return &Manager{store: store, keyer: fakeKeyer{}, ttl: time.Hour}
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	mgr := newTestManager(store)

	tokenID := NewTokenID()
	if err := mgr.Open(ctx, tokenID, "operator-1"); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if ttl := store.ttls["gp:session:"+tokenID]; ttl != time.Hour {
		t.Errorf("session ttl = %s, want token ttl", ttl)
	}

	live, err := mgr.HasSession(ctx, tokenID)
	if err != nil {
		t.Fatalf("has session failed: %v", err)
	}
	if !live {
		t.Fatal("expected live session after open")
	}

	if err := mgr.Revoke(ctx, tokenID); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	live, err = mgr.HasSession(ctx, tokenID)
	if err != nil {
		t.Fatalf("has session failed: %v", err)
	}
	if live {
		t.Error("expected no session after revoke")
	}
}

func TestHasSessionUnknownToken(t *testing.T) {
	mgr := newTestManager(newFakeStore())
	live, err := mgr.HasSession(context.Background(), "never-issued")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if live {
		t.Error("unknown token should have no session")
	}
}

func TestBlankInputsRejected(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(newFakeStore())

	if err := mgr.Open(ctx, " ", "operator-1"); err == nil {
		t.Error("expected error for blank token id")
	}
	if err := mgr.Open(ctx, "token", ""); err == nil {
		t.Error("expected error for blank operator id")
	}
	if _, err := mgr.HasSession(ctx, ""); err == nil {
		t.Error("expected error for blank token id")
	}
	if err := mgr.Revoke(ctx, ""); err == nil {
		t.Error("expected error for blank token id")
	}
}
