package core

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/localeforge/localeforge/internal/csv"
)

// Export renders the workspace's full translation matrix as CSV in the
// legacy fixed format: the seven singular columns followed by one column per
// language, languages ordered by code and keys by module then key. Returns
// the file content and a suggested attachment filename.
func (s *Service) Export(ctx context.Context, workspaceID uuid.UUID) (string, string, error) {
	languages, err := s.languages.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return "", "", fmt.Errorf("load languages: %w", err)
	}

	keys, err := s.keys.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return "", "", fmt.Errorf("load keys: %w", err)
	}

	keyIDs := make([]uuid.UUID, 0, len(keys))
	for _, k := range keys {
		keyIDs = append(keyIDs, k.ID)
	}

	values := make(map[uuid.UUID]map[uuid.UUID]string)
	if len(keyIDs) > 0 {
		translations, err := s.translations.ListByKeyIDs(ctx, workspaceID, keyIDs)
		if err != nil {
			return "", "", fmt.Errorf("load translations: %w", err)
		}
		for _, tr := range translations {
			byLang, ok := values[tr.KeyID]
			if !ok {
				byLang = make(map[uuid.UUID]string)
				values[tr.KeyID] = byLang
			}
			byLang[tr.LanguageID] = tr.Value
		}
	}

	header := append([]string{}, legacyColumns...)
	for _, lang := range languages {
		header = append(header, lang.Code)
	}

	records := [][]string{header}
	for _, k := range keys {
		row := []string{
			k.Key,
			k.Module,
			k.Type,
			stringOrEmpty(k.Screen),
			stringOrEmpty(k.Context),
			stringOrEmpty(k.ScreenshotRef),
			intOrEmpty(k.MaxChars),
		}
		for _, lang := range languages {
			row = append(row, values[k.ID][lang.ID])
		}
		records = append(records, row)
	}

	filename := fmt.Sprintf("i18n_%s_%s.csv", workspaceID.String()[:8], time.Now().Format("2006-01-02"))
	return csv.Join(records), filename, nil
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
