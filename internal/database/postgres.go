package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/natindo/CountdownBot/internal/models"
)

// PostgresStore хранит события в таблице countdown_events.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema создаёт таблицу, если её ещё нет.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS countdown_events (
    id         UUID PRIMARY KEY,
    chat_id    BIGINT NOT NULL,
    name       TEXT NOT NULL,
    deadline   TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (chat_id, name)
)`)
	if err != nil {
		return fmt.Errorf("failed to create countdown_events table: %w", err)
	}
	return nil
}

func (p *PostgresStore) Insert(ctx context.Context, ev models.Event, overwrite bool) error {
	query := `
INSERT INTO countdown_events (id, chat_id, name, deadline)
VALUES ($1, $2, $3, $4)
ON CONFLICT (chat_id, name) DO NOTHING
`
	if overwrite {
		query = `
INSERT INTO countdown_events (id, chat_id, name, deadline)
VALUES ($1, $2, $3, $4)
ON CONFLICT (chat_id, name)
DO UPDATE SET id = EXCLUDED.id, deadline = EXCLUDED.deadline, created_at = now()
`
	}

	tag, err := p.pool.Exec(ctx, query, ev.ID, ev.ChatID, ev.Name, ev.Deadline)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicate
	}
	return nil
}

// Get возвращает событие или nil, если строки нет.
func (p *PostgresStore) Get(ctx context.Context, key models.EventKey) (*models.Event, error) {
	rows, err := p.pool.Query(ctx, `
SELECT id, chat_id, name, deadline
FROM countdown_events
WHERE chat_id = $1 AND name = $2
`, key.ChatID, key.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to query event: %w", err)
	}

	ev, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Event])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	return &ev, nil
}

func (p *PostgresStore) Delete(ctx context.Context, key models.EventKey) (bool, error) {
	tag, err := p.pool.Exec(ctx, `
DELETE FROM countdown_events
WHERE chat_id = $1 AND name = $2
`, key.ChatID, key.Name)
	if err != nil {
		return false, fmt.Errorf("failed to delete event: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (p *PostgresStore) DeleteExact(ctx context.Context, ev models.Event) (bool, error) {
	tag, err := p.pool.Exec(ctx, `
DELETE FROM countdown_events
WHERE chat_id = $1 AND name = $2 AND id = $3
`, ev.ChatID, ev.Name, ev.ID)
	if err != nil {
		return false, fmt.Errorf("failed to delete event: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (p *PostgresStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx, `
DELETE FROM countdown_events
WHERE deadline < $1
`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge events: %w", err)
	}
	return tag.RowsAffected(), nil
}
