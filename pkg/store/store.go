package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when an update or removal targets an unknown id
	ErrNotFound = errors.New("record not found")
	// ErrInvalidRecord is returned when a write fails validation
	ErrInvalidRecord = errors.New("invalid record")
)

var validate = validator.New()

// Backend is durable per-client storage holding one JSON document per key.
// Load returns nil data when the key has never been written.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Codec tells a Store how to identify, decode and check its records
type Codec[T any] struct {
	ID func(T) string
	// Decode converts one stored element; ok=false drops the element
	Decode func(raw json.RawMessage) (T, bool)
	// Validate runs before every write; nil means struct tag validation
	Validate func(T) error
}

// Store is a subscribable collection persisted under a single backend key.
// Add, Update and Remove are the only write paths; each one persists the
// whole collection and then notifies every subscriber.
type Store[T any] struct {
	mu          sync.Mutex
	key         string
	backend     Backend
	codec       Codec[T]
	logger      *zap.Logger
	subscribers map[int]func([]T)
	nextSubID   int
}

// New creates a store for key
func New[T any](key string, backend Backend, codec Codec[T], logger *zap.Logger) *Store[T] {
	if codec.Decode == nil {
		codec.Decode = decodeJSON[T]
	}
	if codec.Validate == nil {
		codec.Validate = func(item T) error { return validate.Struct(item) }
	}
	return &Store[T]{
		key:         key,
		backend:     backend,
		codec:       codec,
		logger:      logger,
		subscribers: make(map[int]func([]T)),
	}
}

// Key returns the backend key of the collection
func (s *Store[T]) Key() string {
	return s.key
}

// List returns every well-formed record. Malformed records are skipped.
func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

// Get returns the record with id
func (s *Store[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	items, err := s.List(ctx)
	if err != nil {
		return zero, err
	}
	for _, item := range items {
		if s.codec.ID(item) == id {
			return item, nil
		}
	}
	return zero, fmt.Errorf("%s %s: %w", s.key, id, ErrNotFound)
}

// Add prepends item to the collection
func (s *Store[T]) Add(ctx context.Context, item T) error {
	if err := s.codec.Validate(item); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	return s.mutate(ctx, func(items []T) ([]T, error) {
		return append([]T{item}, items...), nil
	})
}

// Update replaces the record sharing item's id
func (s *Store[T]) Update(ctx context.Context, item T) error {
	if err := s.codec.Validate(item); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	id := s.codec.ID(item)
	return s.mutate(ctx, func(items []T) ([]T, error) {
		idx := slices.IndexFunc(items, func(existing T) bool { return s.codec.ID(existing) == id })
		if idx < 0 {
			return nil, fmt.Errorf("%s %s: %w", s.key, id, ErrNotFound)
		}
		items[idx] = item
		return items, nil
	})
}

// Remove deletes the record with id
func (s *Store[T]) Remove(ctx context.Context, id string) error {
	return s.mutate(ctx, func(items []T) ([]T, error) {
		next := slices.DeleteFunc(items, func(existing T) bool { return s.codec.ID(existing) == id })
		if len(next) == len(items) {
			return nil, fmt.Errorf("%s %s: %w", s.key, id, ErrNotFound)
		}
		return next, nil
	})
}

// Replace overwrites the whole collection
func (s *Store[T]) Replace(ctx context.Context, items []T) error {
	return s.mutate(ctx, func([]T) ([]T, error) {
		return items, nil
	})
}

// Subscribe registers fn to receive the collection after every write.
// The returned function removes the subscription.
func (s *Store[T]) Subscribe(fn func([]T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store[T]) mutate(ctx context.Context, change func([]T) ([]T, error)) error {
	s.mu.Lock()
	items, err := s.read(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	next, err := change(items)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.write(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	subscribers := make([]func([]T), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.mu.Unlock()

	// Subscribers run outside the lock so they may read the store
	for _, fn := range subscribers {
		fn(slices.Clone(next))
	}
	return nil
}

func (s *Store[T]) read(ctx context.Context) ([]T, error) {
	data, err := s.backend.Load(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.key, err)
	}
	if len(data) == 0 {
		return []T{}, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		s.logger.Warn("Discarding unreadable collection", zap.String("key", s.key), zap.Error(err))
		return []T{}, nil
	}

	items := make([]T, 0, len(raws))
	for i, raw := range raws {
		item, ok := s.codec.Decode(raw)
		if !ok {
			s.logger.Debug("Dropping malformed record", zap.String("key", s.key), zap.Int("index", i))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Store[T]) write(ctx context.Context, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.key, err)
	}
	if err := s.backend.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", s.key, err)
	}
	return nil
}

func decodeJSON[T any](raw json.RawMessage) (T, bool) {
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return item, false
	}
	if err := validate.Struct(item); err != nil {
		return item, false
	}
	return item, true
}
