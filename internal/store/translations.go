package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/localeforge/localeforge/internal/domain"
)

// Translations provides translation value persistence.
type Translations struct {
	pool *pgxpool.Pool
}

// NewTranslations creates the translation store.
func NewTranslations(pool *pgxpool.Pool) *Translations {
	return &Translations{pool: pool}
}

const translationColumns = `id, workspace_id, key_id, language_id, value, status, created_at, updated_at`

const listTranslationsByKeyIDsSQL = `
SELECT ` + translationColumns + `
FROM i18n_translations
WHERE workspace_id = $1 AND key_id = ANY($2)`

const listTranslationsByLanguageSQL = `
SELECT ` + translationColumns + `
FROM i18n_translations
WHERE workspace_id = $1 AND language_id = $2`

const upsertTranslationSQL = `
INSERT INTO i18n_translations (id, workspace_id, key_id, language_id, value, status)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (key_id, language_id) DO UPDATE SET
    value = EXCLUDED.value,
    status = EXCLUDED.status,
    updated_at = now()`

// ListByKeyIDs returns all translations of the given keys.
func (s *Translations) ListByKeyIDs(ctx context.Context, workspaceID uuid.UUID, keyIDs []uuid.UUID) ([]domain.Translation, error) {
	if len(keyIDs) == 0 {
		return []domain.Translation{}, nil
	}

	rows, err := s.pool.Query(ctx, listTranslationsByKeyIDsSQL, workspaceID, keyIDs)
	if err != nil {
		return nil, mapError(err, "translations", workspaceID.String())
	}
	defer rows.Close()

	return scanTranslations(rows)
}

// ListByLanguage returns all translations in one language of a workspace.
func (s *Translations) ListByLanguage(ctx context.Context, workspaceID, languageID uuid.UUID) ([]domain.Translation, error) {
	rows, err := s.pool.Query(ctx, listTranslationsByLanguageSQL, workspaceID, languageID)
	if err != nil {
		return nil, mapError(err, "translations", languageID.String())
	}
	defer rows.Close()

	return scanTranslations(rows)
}

// Upsert inserts or replaces the value for (key_id, language_id).
func (s *Translations) Upsert(ctx context.Context, tr domain.Translation) error {
	_, err := s.pool.Exec(ctx, upsertTranslationSQL,
		tr.ID, tr.WorkspaceID, tr.KeyID, tr.LanguageID, tr.Value, tr.Status)
	if err != nil {
		return mapError(err, "translation", tr.KeyID.String())
	}
	return nil
}

func scanTranslations(rows pgx.Rows) ([]domain.Translation, error) {
	var out []domain.Translation
	for rows.Next() {
		var tr domain.Translation
		if err := rows.Scan(&tr.ID, &tr.WorkspaceID, &tr.KeyID, &tr.LanguageID,
			&tr.Value, &tr.Status, &tr.CreatedAt, &tr.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan translation: %w", err)
		}
		out = append(out, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read translations: %w", err)
	}
	return out, nil
}
