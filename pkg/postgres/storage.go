package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ClientStorage keeps client-side collections (availability, time off,
// drafts, session) in the client_storage table, one JSON document per key
type ClientStorage struct {
	db *DB
}

// ClientStorage returns the key/value store sharing this pool
func (db *DB) ClientStorage() *ClientStorage {
	return &ClientStorage{db: db}
}

// Load returns the stored document, or nil when the key is absent
func (s *ClientStorage) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.pool.QueryRow(ctx, `SELECT data FROM client_storage WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return data, nil
}

// Save upserts the document for key
func (s *ClientStorage) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.db.pool.Exec(ctx, `
		INSERT INTO client_storage (key, data, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, key, data)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Delete removes key; deleting an absent key is not an error
func (s *ClientStorage) Delete(ctx context.Context, key string) error {
	if _, err := s.db.pool.Exec(ctx, `DELETE FROM client_storage WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
