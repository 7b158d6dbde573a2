package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/localeforge/localeforge/internal/domain"
)

// SyncKeyInput is one key pushed by tooling (code scanners, CI) through the
// key-sync endpoint. FallbackEn optionally seeds the English value.
type SyncKeyInput struct {
	Key           string  `json:"key"`
	Module        string  `json:"module"`
	Type          string  `json:"type"`
	Screen        *string `json:"screen"`
	Context       *string `json:"context"`
	ScreenshotRef *string `json:"screenshot_ref"`
	MaxChars      *int    `json:"max_chars"`
	FallbackEn    *string `json:"fallback_en"`
}

// SyncResult reports what a key sync did. Unlike import, updated_keys only
// counts keys where a provided field actually differs.
type SyncResult struct {
	Ok              bool `json:"ok"`
	InsertedKeys    int  `json:"inserted_keys"`
	UpdatedKeys     int  `json:"updated_keys"`
	EnValuesWritten int  `json:"en_values_written"`
}

// SyncKeys upserts the supplied keys on (workspace_id, key), ensures the
// "en" language exists, and writes fallback English values fill-missing
// (or unconditionally when overwriteEn is set). Entries without a key,
// module and type are silently dropped.
func (s *Service) SyncKeys(ctx context.Context, workspaceID uuid.UUID, inputs []SyncKeyInput, overwriteEn bool) (*SyncResult, error) {
	result := &SyncResult{Ok: true}

	incoming := normalizeSyncInputs(inputs)
	if len(incoming) == 0 {
		return result, nil
	}

	enLang, err := s.ensureLanguage(ctx, workspaceID, "en", "English")
	if err != nil {
		return nil, err
	}

	existing, err := s.keys.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}
	existingByName := make(map[string]domain.Key, len(existing))
	for _, k := range existing {
		existingByName[k.Key] = k
	}

	upserts := make([]domain.Key, 0, len(incoming))
	names := make([]string, 0, len(incoming))
	for _, in := range incoming {
		names = append(names, in.Key)

		prev, known := existingByName[in.Key]
		if !known {
			result.InsertedKeys++
		} else if syncKeyDiffers(prev, in) {
			result.UpdatedKeys++
		}

		upserts = append(upserts, domain.Key{
			ID:            uuid.New(),
			WorkspaceID:   workspaceID,
			Key:           in.Key,
			Module:        in.Module,
			Type:          in.Type,
			Screen:        in.Screen,
			Context:       in.Context,
			ScreenshotRef: in.ScreenshotRef,
			MaxChars:      in.MaxChars,
		})
	}

	if err := s.keys.UpsertBatch(ctx, upserts); err != nil {
		return nil, fmt.Errorf("upsert keys: %w", err)
	}

	// Re-resolve ids: conflicting upserts kept the pre-existing row ids.
	rows, err := s.keys.ListByNames(ctx, workspaceID, names)
	if err != nil {
		return nil, fmt.Errorf("load key ids: %w", err)
	}
	idByName := make(map[string]uuid.UUID, len(rows))
	for _, k := range rows {
		idByName[k.Key] = k.ID
	}

	written, err := s.writeFallbackEn(ctx, workspaceID, enLang.ID, incoming, idByName, overwriteEn)
	if err != nil {
		return nil, err
	}
	result.EnValuesWritten = written

	return result, nil
}

// ensureLanguage returns the workspace language with the given code,
// creating it with an explicit display name when missing.
func (s *Service) ensureLanguage(ctx context.Context, workspaceID uuid.UUID, code, name string) (*domain.Language, error) {
	lang, err := s.languages.GetByCode(ctx, workspaceID, code)
	if err == nil {
		return lang, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load language %q: %w", code, err)
	}

	created := domain.NewLanguage(workspaceID, code)
	created.Name = name
	if err := s.languages.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("create language %q: %w", code, err)
	}
	return &created, nil
}

// writeFallbackEn upserts English values for entries that carry one,
// protecting existing non-empty values unless overwrite is requested.
func (s *Service) writeFallbackEn(ctx context.Context, workspaceID, enLanguageID uuid.UUID, incoming []SyncKeyInput, idByName map[string]uuid.UUID, overwrite bool) (int, error) {
	type candidate struct {
		keyID uuid.UUID
		value string
	}

	var candidates []candidate
	for _, in := range incoming {
		if in.FallbackEn == nil {
			continue
		}
		value := strings.TrimSpace(*in.FallbackEn)
		if value == "" {
			continue
		}
		keyID, ok := idByName[in.Key]
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{keyID: keyID, value: value})
	}

	if len(candidates) == 0 {
		return 0, nil
	}

	existingEn := make(map[uuid.UUID]string)
	translations, err := s.translations.ListByLanguage(ctx, workspaceID, enLanguageID)
	if err != nil {
		return 0, fmt.Errorf("load en translations: %w", err)
	}
	for _, tr := range translations {
		existingEn[tr.KeyID] = tr.Value
	}

	written := 0
	for _, c := range candidates {
		if !overwrite && strings.TrimSpace(existingEn[c.keyID]) != "" {
			continue
		}

		tr := domain.Translation{
			ID:          uuid.New(),
			WorkspaceID: workspaceID,
			KeyID:       c.keyID,
			LanguageID:  enLanguageID,
			Value:       c.value,
			Status:      domain.StatusDraft,
		}
		if err := s.translations.Upsert(ctx, tr); err != nil {
			return written, fmt.Errorf("upsert en translation: %w", err)
		}
		written++
	}

	return written, nil
}

// normalizeSyncInputs trims fields and drops entries missing any of the
// mandatory key, module and type values.
func normalizeSyncInputs(inputs []SyncKeyInput) []SyncKeyInput {
	out := make([]SyncKeyInput, 0, len(inputs))
	for _, in := range inputs {
		in.Key = strings.TrimSpace(in.Key)
		in.Module = strings.TrimSpace(in.Module)
		in.Type = strings.TrimSpace(in.Type)
		if in.Key == "" || in.Module == "" || in.Type == "" {
			continue
		}
		in.Screen = trimOptional(in.Screen)
		in.Context = trimOptional(in.Context)
		in.ScreenshotRef = trimOptional(in.ScreenshotRef)
		out = append(out, in)
	}
	return out
}

// syncKeyDiffers reports whether any field provided by the sync entry
// differs from the stored key.
func syncKeyDiffers(prev domain.Key, in SyncKeyInput) bool {
	return prev.Module != in.Module ||
		prev.Type != in.Type ||
		!equalOptional(prev.Screen, in.Screen) ||
		!equalOptional(prev.Context, in.Context) ||
		!equalOptional(prev.ScreenshotRef, in.ScreenshotRef) ||
		!equalInt(prev.MaxChars, in.MaxChars)
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
