// Package cache wraps a core.ContactStore with a Redis read-through cache for single contacts.
// The wrapped store stays authoritative: Redis failures are logged and otherwise ignored.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prior-it/directory/core"
)

const (
	keyPrefix = "contact:"
	lockCount = 64
)

// Connect creates a Redis client from a redis:// url and checks that the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Join(core.ErrStoreUnavailable, fmt.Errorf("cannot reach redis: %w", err))
	}
	return client, nil
}

// ContactStore implements [core.ContactStore] by caching GetContact results of another store.
//
// Cache fills and writes for the same id are serialized, so a fill can never
// store a record that a concurrent write has already replaced or deleted.
// This only holds between callers sharing one ContactStore.
type ContactStore struct {
	next   core.ContactStore
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	locks  [lockCount]sync.Mutex
}

// Force struct to implement the core interface
var (
	_ core.ContactStore = &ContactStore{}
	_ core.Pinger       = &ContactStore{}
)

func NewContactStore(next core.ContactStore, client *redis.Client, ttl time.Duration) *ContactStore {
	return &ContactStore{next: next, client: client, ttl: ttl, logger: slog.Default()}
}

func (s *ContactStore) WithLogger(logger *slog.Logger) *ContactStore {
	s.logger = logger
	return s
}

// CreateContact implements core.ContactStore.
func (s *ContactStore) CreateContact(
	ctx context.Context,
	data core.ContactCreateData,
) (*core.Contact, error) {
	contact, err := s.next.CreateContact(ctx, data)
	if err != nil {
		return nil, err
	}
	unlock := s.lock(contact.ID)
	defer unlock()
	s.store(ctx, contact)
	return contact, nil
}

// ListContacts implements core.ContactStore.
func (s *ContactStore) ListContacts(ctx context.Context) ([]core.Contact, error) {
	return s.next.ListContacts(ctx)
}

// GetContact implements core.ContactStore.
func (s *ContactStore) GetContact(ctx context.Context, id core.ContactID) (*core.Contact, error) {
	data, err := s.client.Get(ctx, key(id)).Bytes()
	switch {
	case err == nil:
		var contact core.Contact
		if err := json.Unmarshal(data, &contact); err == nil {
			return &contact, nil
		}
		s.logger.Warn("Discarding unreadable cache entry", "contact_id", id, "error", err)
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("Could not read contact from cache", "contact_id", id, "error", err)
	}

	unlock := s.lock(id)
	defer unlock()
	contact, err := s.next.GetContact(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store(ctx, contact)
	return contact, nil
}

// FindContactsByName implements core.ContactStore.
func (s *ContactStore) FindContactsByName(ctx context.Context, query string) ([]core.Contact, error) {
	return s.next.FindContactsByName(ctx, query)
}

// FindContactsByBookmark implements core.ContactStore.
func (s *ContactStore) FindContactsByBookmark(
	ctx context.Context,
	bookmarked bool,
) ([]core.Contact, error) {
	return s.next.FindContactsByBookmark(ctx, bookmarked)
}

// SetContactBookmarked implements core.ContactStore.
func (s *ContactStore) SetContactBookmarked(
	ctx context.Context,
	id core.ContactID,
	bookmarked bool,
) (*core.Contact, error) {
	unlock := s.lock(id)
	defer unlock()
	contact, err := s.next.SetContactBookmarked(ctx, id, bookmarked)
	return s.refresh(ctx, id, contact, err)
}

// UpdateContact implements core.ContactStore.
func (s *ContactStore) UpdateContact(
	ctx context.Context,
	id core.ContactID,
	data core.ContactUpdateData,
) (*core.Contact, error) {
	unlock := s.lock(id)
	defer unlock()
	contact, err := s.next.UpdateContact(ctx, id, data)
	return s.refresh(ctx, id, contact, err)
}

// DeleteContact implements core.ContactStore.
func (s *ContactStore) DeleteContact(ctx context.Context, id core.ContactID) error {
	unlock := s.lock(id)
	defer unlock()
	err := s.next.DeleteContact(ctx, id)
	s.evict(ctx, id)
	return err
}

// Ping implements core.Pinger. Only the wrapped store decides readiness.
func (s *ContactStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.logger.Warn("Redis cache is unreachable", "error", err)
	}
	if pinger, ok := s.next.(core.Pinger); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

// lock holds the mutex guarding id until the returned func is called.
func (s *ContactStore) lock(id core.ContactID) func() {
	mu := &s.locks[uint64(id)%lockCount]
	mu.Lock()
	return mu.Unlock
}

func (s *ContactStore) refresh(
	ctx context.Context,
	id core.ContactID,
	contact *core.Contact,
	err error,
) (*core.Contact, error) {
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			s.evict(ctx, id)
		}
		return nil, err
	}
	s.store(ctx, contact)
	return contact, nil
}

func (s *ContactStore) store(ctx context.Context, contact *core.Contact) {
	data, err := json.Marshal(contact)
	if err != nil {
		s.logger.Warn("Could not encode contact for cache", "contact_id", contact.ID, "error", err)
		return
	}
	if err := s.client.Set(ctx, key(contact.ID), data, s.ttl).Err(); err != nil {
		s.logger.Warn("Could not cache contact", "contact_id", contact.ID, "error", err)
	}
}

func (s *ContactStore) evict(ctx context.Context, id core.ContactID) {
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		s.logger.Warn("Could not evict contact from cache", "contact_id", id, "error", err)
	}
}

func key(id core.ContactID) string {
	return keyPrefix + id.String()
}
