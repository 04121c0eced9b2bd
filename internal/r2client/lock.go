package r2client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ConditionalStore is the subset of Client a Lock needs.
type ConditionalStore interface {
	CreateIfAbsent(ctx context.Context, key string, body io.Reader, contentType string) (string, bool, error)
	ReplaceIfMatch(ctx context.Context, key string, body io.Reader, etag, contentType string) (string, bool, error)
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}

// lease is the JSON body of a lock object.
type lease struct {
	Owner     string    `json:"owner"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Lock is a lease stored as an object. An expired lease may be taken over
// by any instance; the ETag check makes the takeover race-free.
type Lock struct {
	store ConditionalStore
	key   string
	ttl   time.Duration
	owner string
	now   func() time.Time

	mu   sync.Mutex
	held bool
}

// NewLock creates a lock on key held for at most ttl per acquisition.
func NewLock(store ConditionalStore, key string, ttl time.Duration) *Lock {
	return &Lock{
		store: store,
		key:   key,
		ttl:   ttl,
		owner: uuid.NewString(),
		now:   time.Now,
	}
}

// Owner identifies this instance in the lease.
func (l *Lock) Owner() string {
	return l.owner
}

// Acquire takes the lease. It returns false, without error, when another
// owner holds an unexpired lease.
func (l *Lock) Acquire(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	body, err := l.leaseBody()
	if err != nil {
		return false, err
	}
	if _, ok, err := l.store.CreateIfAbsent(ctx, l.key, bytes.NewReader(body), "application/json"); err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	} else if ok {
		l.held = true
		return true, nil
	}

	current, etag, err := l.read(ctx)
	if errors.Is(err, ErrNotFound) {
		// Released between our create and read; next attempt will get it.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}
	if current != nil && l.now().Before(current.ExpiresAt) {
		return false, nil
	}

	_, ok, err := l.store.ReplaceIfMatch(ctx, l.key, bytes.NewReader(body), etag, "application/json")
	if err != nil {
		return false, fmt.Errorf("acquire lock: take over: %w", err)
	}
	l.held = ok
	return ok, nil
}

// Release deletes the lease if this instance still owns it.
func (l *Lock) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.held {
		return nil
	}
	l.held = false

	current, _, err := l.read(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	if current != nil && current.Owner != l.owner {
		return nil
	}
	return l.store.Delete(ctx, l.key)
}

func (l *Lock) leaseBody() ([]byte, error) {
	body, err := json.Marshal(lease{Owner: l.owner, ExpiresAt: l.now().Add(l.ttl)})
	if err != nil {
		return nil, fmt.Errorf("marshal lease: %w", err)
	}
	return body, nil
}

// read returns the stored lease; a nil lease means the body was unreadable
// and the lock counts as expired.
func (l *Lock) read(ctx context.Context) (*lease, string, error) {
	rc, etag, err := l.store.Get(ctx, l.key)
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()

	var current lease
	if err := json.NewDecoder(rc).Decode(&current); err != nil {
		return nil, etag, nil
	}
	return &current, etag, nil
}
