package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/localeforge/localeforge/internal/domain"
)

// Keys provides localization key persistence.
type Keys struct {
	pool *pgxpool.Pool
}

// NewKeys creates the key store.
func NewKeys(pool *pgxpool.Pool) *Keys {
	return &Keys{pool: pool}
}

const keyColumns = `id, workspace_id, key, module, type, screen, context, screenshot_ref, max_chars, created_at`

const listKeysSQL = `
SELECT ` + keyColumns + `
FROM i18n_keys
WHERE workspace_id = $1
ORDER BY module, key`

const listKeysByNamesSQL = `
SELECT ` + keyColumns + `
FROM i18n_keys
WHERE workspace_id = $1 AND key = ANY($2)`

const insertKeySQL = `
INSERT INTO i18n_keys (id, workspace_id, key, module, type, screen, context, screenshot_ref, max_chars)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

const upsertKeySQL = `
INSERT INTO i18n_keys (id, workspace_id, key, module, type, screen, context, screenshot_ref, max_chars)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (workspace_id, key) DO UPDATE SET
    module = EXCLUDED.module,
    type = EXCLUDED.type,
    screen = EXCLUDED.screen,
    context = EXCLUDED.context,
    screenshot_ref = EXCLUDED.screenshot_ref,
    max_chars = EXCLUDED.max_chars`

// ListByWorkspace returns all keys of a workspace ordered by module then key.
func (s *Keys) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Key, error) {
	rows, err := s.pool.Query(ctx, listKeysSQL, workspaceID)
	if err != nil {
		return nil, mapError(err, "keys", workspaceID.String())
	}
	defer rows.Close()

	return scanKeys(rows)
}

// ListByNames returns the workspace keys matching the given names.
func (s *Keys) ListByNames(ctx context.Context, workspaceID uuid.UUID, names []string) ([]domain.Key, error) {
	if len(names) == 0 {
		return []domain.Key{}, nil
	}

	rows, err := s.pool.Query(ctx, listKeysByNamesSQL, workspaceID, names)
	if err != nil {
		return nil, mapError(err, "keys", workspaceID.String())
	}
	defer rows.Close()

	return scanKeys(rows)
}

// BulkInsert inserts all keys in a single pgx batch. Any failure aborts the
// whole insert.
func (s *Keys) BulkInsert(ctx context.Context, keys []domain.Key) error {
	if len(keys) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, k := range keys {
		batch.Queue(insertKeySQL,
			k.ID, k.WorkspaceID, k.Key, k.Module, k.Type,
			k.Screen, k.Context, k.ScreenshotRef, k.MaxChars)
	}

	return s.sendBatch(ctx, batch)
}

// Update rewrites one key's classification fields. Optional fields that the
// import row left unset are not touched, so a partial row never blanks
// existing metadata.
func (s *Keys) Update(ctx context.Context, key domain.Key) error {
	builder := psql.Update("i18n_keys").
		Set("module", key.Module).
		Set("type", key.Type).
		Where("id = ?", key.ID)

	if key.Screen != nil {
		builder = builder.Set("screen", *key.Screen)
	}
	if key.Context != nil {
		builder = builder.Set("context", *key.Context)
	}
	if key.ScreenshotRef != nil {
		builder = builder.Set("screenshot_ref", *key.ScreenshotRef)
	}
	if key.MaxChars != nil {
		builder = builder.Set("max_chars", *key.MaxChars)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build key update: %w", err)
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapError(err, "key", key.Key)
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "key", key.Key)
	}
	return nil
}

// UpsertBatch inserts or fully replaces keys on (workspace_id, key). Unlike
// Update this overwrites the optional fields, nulls included: key sync is
// the authoritative source for key metadata.
func (s *Keys) UpsertBatch(ctx context.Context, keys []domain.Key) error {
	if len(keys) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, k := range keys {
		batch.Queue(upsertKeySQL,
			k.ID, k.WorkspaceID, k.Key, k.Module, k.Type,
			k.Screen, k.Context, k.ScreenshotRef, k.MaxChars)
	}

	return s.sendBatch(ctx, batch)
}

func (s *Keys) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return mapError(err, "keys", "batch")
		}
	}
	return nil
}

func scanKeys(rows pgx.Rows) ([]domain.Key, error) {
	var out []domain.Key
	for rows.Next() {
		var k domain.Key
		if err := rows.Scan(&k.ID, &k.WorkspaceID, &k.Key, &k.Module, &k.Type,
			&k.Screen, &k.Context, &k.ScreenshotRef, &k.MaxChars, &k.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read keys: %w", err)
	}
	return out, nil
}
