package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/swiftshift/pkg/core/model"
)

// FetchLocations returns every location ordered by id
func (db *DB) FetchLocations(ctx context.Context) ([]model.Location, error) {
	rows, err := db.pool.Query(ctx, `SELECT id, name, address FROM location ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	locations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Location, error) {
		var l model.Location
		err := row.Scan(&l.ID, &l.Name, &l.Address)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan locations: %w", err)
	}
	return locations, nil
}

// FetchPositions returns every position ordered by id
func (db *DB) FetchPositions(ctx context.Context) ([]model.Position, error) {
	rows, err := db.pool.Query(ctx, `SELECT id, name, color FROM position ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	positions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Position, error) {
		var p model.Position
		err := row.Scan(&p.ID, &p.Name, &p.Color)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan positions: %w", err)
	}
	return positions, nil
}

// FetchUsers returns every user ordered by id
func (db *DB) FetchUsers(ctx context.Context) ([]model.User, error) {
	rows, err := db.pool.Query(ctx, `
		SELECT id, first_name, last_name, email, phone_number, positions, locations
		FROM app_user
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.User, error) {
		var u model.User
		err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PhoneNumber, &u.Positions, &u.Locations)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}
	return users, nil
}

// SeedReference upserts reference data in one transaction
func (db *DB) SeedReference(ctx context.Context, locations []model.Location, positions []model.Position, users []model.User) error {
	batch := &pgx.Batch{}
	for _, l := range locations {
		batch.Queue(`
			INSERT INTO location (id, name, address) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, address = EXCLUDED.address
		`, l.ID, l.Name, l.Address)
	}
	for _, p := range positions {
		batch.Queue(`
			INSERT INTO position (id, name, color) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, color = EXCLUDED.color
		`, p.ID, p.Name, p.Color)
	}
	for _, u := range users {
		batch.Queue(`
			INSERT INTO app_user (id, first_name, last_name, email, phone_number, positions, locations)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name,
				email = EXCLUDED.email, phone_number = EXCLUDED.phone_number,
				positions = EXCLUDED.positions, locations = EXCLUDED.locations
		`, u.ID, u.FirstName, u.LastName, u.Email, u.PhoneNumber, nonNil(u.Positions), nonNil(u.Locations))
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to seed reference data: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reference data: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
