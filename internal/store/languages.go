package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/localeforge/localeforge/internal/domain"
)

// Languages provides workspace language persistence.
type Languages struct {
	pool *pgxpool.Pool
}

// NewLanguages creates the language store.
func NewLanguages(pool *pgxpool.Pool) *Languages {
	return &Languages{pool: pool}
}

const listLanguagesSQL = `
SELECT id, workspace_id, code, name, is_rtl, created_at
FROM i18n_languages
WHERE workspace_id = $1
ORDER BY code`

const getLanguageByCodeSQL = `
SELECT id, workspace_id, code, name, is_rtl, created_at
FROM i18n_languages
WHERE workspace_id = $1 AND code = $2`

const insertLanguageSQL = `
INSERT INTO i18n_languages (id, workspace_id, code, name, is_rtl)
VALUES ($1, $2, $3, $4, $5)`

// ListByWorkspace returns the workspace's languages ordered by code.
func (s *Languages) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Language, error) {
	rows, err := s.pool.Query(ctx, listLanguagesSQL, workspaceID)
	if err != nil {
		return nil, mapError(err, "languages", workspaceID.String())
	}
	defer rows.Close()

	return scanLanguages(rows)
}

// GetByCode returns the workspace language with the given code, or
// domain.ErrNotFound.
func (s *Languages) GetByCode(ctx context.Context, workspaceID uuid.UUID, code string) (*domain.Language, error) {
	var lang domain.Language
	err := s.pool.QueryRow(ctx, getLanguageByCodeSQL, workspaceID, code).
		Scan(&lang.ID, &lang.WorkspaceID, &lang.Code, &lang.Name, &lang.IsRTL, &lang.CreatedAt)
	if err != nil {
		return nil, mapError(err, "language", code)
	}
	return &lang, nil
}

// Create inserts a new language. (workspace_id, code) is unique.
func (s *Languages) Create(ctx context.Context, lang domain.Language) error {
	_, err := s.pool.Exec(ctx, insertLanguageSQL,
		lang.ID, lang.WorkspaceID, lang.Code, lang.Name, lang.IsRTL)
	if err != nil {
		return mapError(err, "language", lang.Code)
	}
	return nil
}

func scanLanguages(rows pgx.Rows) ([]domain.Language, error) {
	var out []domain.Language
	for rows.Next() {
		var lang domain.Language
		if err := rows.Scan(&lang.ID, &lang.WorkspaceID, &lang.Code, &lang.Name, &lang.IsRTL, &lang.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}
		out = append(out, lang)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read languages: %w", err)
	}
	return out, nil
}
