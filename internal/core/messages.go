package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/localeforge/localeforge/internal/domain"
)

// Messages returns the key -> value map served to client UI for one locale.
// An unknown locale is not an error: the client falls back, so the result is
// simply empty. Translations with blank values are left out.
func (s *Service) Messages(ctx context.Context, workspaceID uuid.UUID, locale string) (map[string]string, error) {
	messages := make(map[string]string)

	lang, err := s.languages.GetByCode(ctx, workspaceID, locale)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return messages, nil
		}
		return nil, fmt.Errorf("load language: %w", err)
	}

	keys, err := s.keys.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}
	nameByID := make(map[uuid.UUID]string, len(keys))
	for _, k := range keys {
		nameByID[k.ID] = k.Key
	}

	translations, err := s.translations.ListByLanguage(ctx, workspaceID, lang.ID)
	if err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}

	for _, tr := range translations {
		name, ok := nameByID[tr.KeyID]
		if !ok {
			continue
		}
		value := strings.TrimSpace(tr.Value)
		if value == "" {
			continue
		}
		messages[name] = value
	}

	return messages, nil
}

// ValidateLocale checks that the locale is one of the workspace's languages.
// Returns domain.ErrNotFound when it is not.
func (s *Service) ValidateLocale(ctx context.Context, workspaceID uuid.UUID, locale string) error {
	_, err := s.languages.GetByCode(ctx, workspaceID, locale)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("load language: %w", err)
	}
	return nil
}
