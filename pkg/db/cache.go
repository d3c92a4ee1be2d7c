package db

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/swiftshift/pkg/core/model"
)

// CacheTTL is how long each resource stays fresh
type CacheTTL struct {
	Locations time.Duration
	Positions time.Duration
	Users     time.Duration
	Shifts    time.Duration
}

// DefaultCacheTTL keeps reference data longer than shifts
var DefaultCacheTTL = CacheTTL{
	Locations: time.Hour,
	Positions: time.Hour,
	Users:     10 * time.Minute,
	Shifts:    5 * time.Minute,
}

const (
	keyLocations   = "locations"
	keyPositions   = "positions"
	keyUsers       = "users"
	keyShiftPrefix = "shifts:"
)

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

// CachedSource memoises fetches from a Database per resource and date range.
// Entries expire lazily on read; writes pass through and drop cached shifts.
type CachedSource struct {
	db     Database
	ttl    CacheTTL
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCachedSource wraps db; zero TTLs fall back to DefaultCacheTTL
func NewCachedSource(db Database, ttl CacheTTL, logger *zap.Logger) *CachedSource {
	if ttl.Locations == 0 {
		ttl.Locations = DefaultCacheTTL.Locations
	}
	if ttl.Positions == 0 {
		ttl.Positions = DefaultCacheTTL.Positions
	}
	if ttl.Users == 0 {
		ttl.Users = DefaultCacheTTL.Users
	}
	if ttl.Shifts == 0 {
		ttl.Shifts = DefaultCacheTTL.Shifts
	}
	return &CachedSource{
		db:      db,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func cached[T any](c *CachedSource, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	now := c.now()

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok && now.Before(entry.expiresAt) {
		return entry.value.(T), nil
	}

	value, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, expiresAt: now.Add(ttl)}
	c.mu.Unlock()
	c.logger.Debug("Cache refreshed", zap.String("key", key))
	return value, nil
}

func (c *CachedSource) FetchLocations(ctx context.Context) ([]model.Location, error) {
	return cached(c, keyLocations, c.ttl.Locations, func() ([]model.Location, error) {
		return c.db.FetchLocations(ctx)
	})
}

func (c *CachedSource) FetchPositions(ctx context.Context) ([]model.Position, error) {
	return cached(c, keyPositions, c.ttl.Positions, func() ([]model.Position, error) {
		return c.db.FetchPositions(ctx)
	})
}

func (c *CachedSource) FetchUsers(ctx context.Context) ([]model.User, error) {
	return cached(c, keyUsers, c.ttl.Users, func() ([]model.User, error) {
		return c.db.FetchUsers(ctx)
	})
}

func (c *CachedSource) FetchShifts(ctx context.Context, startDate, endDate string) ([]model.Shift, error) {
	key := keyShiftPrefix + startDate + ".." + endDate
	return cached(c, key, c.ttl.Shifts, func() ([]model.Shift, error) {
		return c.db.FetchShifts(ctx, startDate, endDate)
	})
}

func (c *CachedSource) InsertShifts(ctx context.Context, shifts []model.Shift) error {
	defer c.InvalidateShifts()
	return c.db.InsertShifts(ctx, shifts)
}

func (c *CachedSource) UpdateShift(ctx context.Context, shift model.Shift) error {
	defer c.InvalidateShifts()
	return c.db.UpdateShift(ctx, shift)
}

func (c *CachedSource) DeleteShift(ctx context.Context, id string) error {
	defer c.InvalidateShifts()
	return c.db.DeleteShift(ctx, id)
}

// InvalidateShifts drops every cached shift range
func (c *CachedSource) InvalidateShifts() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, keyShiftPrefix) {
			delete(c.entries, key)
		}
	}
}

// Invalidate drops everything
func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}
