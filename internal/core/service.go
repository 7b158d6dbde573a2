// Package core implements the workspace-scoped translation service: CSV
// import reconciliation, CSV export, key sync, and runtime message serving.
//
// The service never talks to the database directly; it depends on small
// store interfaces so the reconciliation engine can be exercised against
// in-memory fakes.
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/localeforge/localeforge/internal/domain"
)

// LanguageStore persists workspace languages.
type LanguageStore interface {
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Language, error)
	GetByCode(ctx context.Context, workspaceID uuid.UUID, code string) (*domain.Language, error)
	Create(ctx context.Context, lang domain.Language) error
}

// KeyStore persists localization keys.
type KeyStore interface {
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]domain.Key, error)
	ListByNames(ctx context.Context, workspaceID uuid.UUID, names []string) ([]domain.Key, error)
	BulkInsert(ctx context.Context, keys []domain.Key) error
	Update(ctx context.Context, key domain.Key) error
	UpsertBatch(ctx context.Context, keys []domain.Key) error
}

// TranslationStore persists translation values.
type TranslationStore interface {
	ListByKeyIDs(ctx context.Context, workspaceID uuid.UUID, keyIDs []uuid.UUID) ([]domain.Translation, error)
	ListByLanguage(ctx context.Context, workspaceID, languageID uuid.UUID) ([]domain.Translation, error)
	Upsert(ctx context.Context, tr domain.Translation) error
}

// WorkspaceStore reads workspaces and their membership.
type WorkspaceStore interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Workspace, error)
	GetMember(ctx context.Context, workspaceID, userID uuid.UUID) (*domain.Member, error)
}

// Membership errors surfaced to the HTTP layer.
var (
	ErrNoWorkspace = errors.New("no workspace selected")
	ErrNotMember   = errors.New("not a member of this workspace")
)

// Service is the translation management service for all workspaces.
type Service struct {
	workspaces   WorkspaceStore
	languages    LanguageStore
	keys         KeyStore
	translations TranslationStore
}

// NewService wires the service to its stores.
func NewService(workspaces WorkspaceStore, languages LanguageStore, keys KeyStore, translations TranslationStore) *Service {
	return &Service{
		workspaces:   workspaces,
		languages:    languages,
		keys:         keys,
		translations: translations,
	}
}

// ValidateMembership checks that the user belongs to the workspace, either
// as its owner or as a member. Returns ErrNoWorkspace when the workspace id
// is nil, ErrNotMember when the workspace is missing or the user is not in it.
func (s *Service) ValidateMembership(ctx context.Context, workspaceID, userID uuid.UUID) error {
	if workspaceID == uuid.Nil {
		return ErrNoWorkspace
	}

	ws, err := s.workspaces.Get(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotMember
		}
		return fmt.Errorf("load workspace: %w", err)
	}

	if ws.OwnerID == userID {
		return nil
	}

	_, err = s.workspaces.GetMember(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotMember
		}
		return fmt.Errorf("load membership: %w", err)
	}

	return nil
}

// IsOwnerOrAdmin reports whether the user owns the workspace or holds an
// owner or admin membership role.
func (s *Service) IsOwnerOrAdmin(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error) {
	if workspaceID == uuid.Nil {
		return false, nil
	}

	ws, err := s.workspaces.Get(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load workspace: %w", err)
	}

	if ws.OwnerID == userID {
		return true, nil
	}

	member, err := s.workspaces.GetMember(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load membership: %w", err)
	}

	return member.Role == domain.RoleOwner || member.Role == domain.RoleAdmin, nil
}
