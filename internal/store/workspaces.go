package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/localeforge/localeforge/internal/domain"
)

// Workspaces provides workspace and membership persistence.
type Workspaces struct {
	pool *pgxpool.Pool
}

// NewWorkspaces creates the workspace store.
func NewWorkspaces(pool *pgxpool.Pool) *Workspaces {
	return &Workspaces{pool: pool}
}

const getWorkspaceSQL = `
SELECT id, name, owner_id, created_at
FROM workspaces
WHERE id = $1`

const getMemberSQL = `
SELECT workspace_id, user_id, role, created_at
FROM workspace_members
WHERE workspace_id = $1 AND user_id = $2`

// Get returns a workspace by id.
func (s *Workspaces) Get(ctx context.Context, id uuid.UUID) (*domain.Workspace, error) {
	var ws domain.Workspace
	err := s.pool.QueryRow(ctx, getWorkspaceSQL, id).
		Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.CreatedAt)
	if err != nil {
		return nil, mapError(err, "workspace", id.String())
	}
	return &ws, nil
}

// GetMember returns the membership row linking a user to a workspace.
func (s *Workspaces) GetMember(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.Member, error) {
	var m domain.Member
	err := s.pool.QueryRow(ctx, getMemberSQL, workspaceID, userID).
		Scan(&m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		return nil, mapError(err, "workspace member", userID.String())
	}
	return &m, nil
}
