package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type stubStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newStubStore() *stubStore {
	return &stubStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *stubStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.values[key] = value.(string)
	s.ttls[key] = ttl
	return nil
}

func (s *stubStore) Get(ctx context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (s *stubStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

type stubKeyer struct{}

func (stubKeyer) SessionKey(sessionID string) string {
	return "test:session:" + sessionID
}

func TestManagerRegisterHasRevoke(t *testing.T) {
	store := newStubStore()
	mgr := &Manager{store: store, keyer: stubKeyer{}, ttl: time.Minute}
	ctx := context.Background()

	id := NewSessionID()
	if err := mgr.Register(ctx, id); err != nil {
		t.Fatalf("register: %v", err)
	}
	if store.ttls["test:session:"+id] != time.Minute {
		t.Fatalf("expected ttl bound to token lifetime")
	}

	ok, err := mgr.HasSession(ctx, id)
	if err != nil || !ok {
		t.Fatalf("expected live session, ok=%v err=%v", ok, err)
	}

	if err := mgr.Revoke(ctx, id); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err = mgr.HasSession(ctx, id)
	if err != nil {
		t.Fatalf("has after revoke: %v", err)
	}
	if ok {
		t.Fatal("expected revoked session to be gone")
	}
}

func TestManagerHasSessionBlankID(t *testing.T) {
	mgr := &Manager{store: newStubStore(), keyer: stubKeyer{}, ttl: time.Minute}
	ok, err := mgr.HasSession(context.Background(), "  ")
	if err != nil || ok {
		t.Fatalf("blank session id should be absent, ok=%v err=%v", ok, err)
	}
}

type failingStore struct{ stubStore }

func (f *failingStore) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("connection reset")
}

func TestManagerHasSessionSurfacesStoreErrors(t *testing.T) {
	mgr := &Manager{store: &failingStore{}, keyer: stubKeyer{}, ttl: time.Minute}
	_, err := mgr.HasSession(context.Background(), "abc")
	if err == nil {
		t.Fatal("expected store error to surface")
	}
}
