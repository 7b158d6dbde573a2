package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/localeforge/localeforge/internal/csv"
	"github.com/localeforge/localeforge/internal/domain"
)

// Row skip reasons. Both come from per-row validation; neither aborts the
// import.
const (
	reasonEmptyKey       = "Key field is empty or missing"
	reasonMissingLegacy  = "Missing required fields (key, module, or type)"
	reasonEmptyKeyLegacy = "Key field is empty"
)

// ImportOptions selects conflict policy, preview mode and an optional
// explicit column mapping. A nil Mapping means the legacy fixed format.
type ImportOptions struct {
	Policy  Policy
	Preview bool
	Mapping *ColumnMapping
}

// SkippedRow records why one data row was left out of the plan. Row numbers
// are 1-based with the header occupying row 1.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult summarizes an import plan. Apply mode returns the same shape
// as preview: the counts are the planned operations, not a post-apply
// confirmation.
type ImportResult struct {
	KeysToCreate         int          `json:"keys_to_create"`
	KeysToUpdate         int          `json:"keys_to_update"`
	TranslationsToUpsert int          `json:"translations_to_upsert"`
	RowsSkipped          int          `json:"rows_skipped"`
	SkippedReasons       []SkippedRow `json:"skipped_reasons"`
}

// translationWrite is one queued translation cell. Writes reference the key
// by name because freshly created keys get their ids merged in only at apply
// time.
type translationWrite struct {
	keyName    string
	languageID uuid.UUID
	value      string
}

// importPlan is everything the executor needs: pending language creations,
// key creates and updates in file order, and eligible translation writes.
type importPlan struct {
	result ImportResult

	newLanguages []domain.Language
	createKeys   []domain.Key
	createIndex  map[string]int
	updateKeys   []domain.Key
	writes       []translationWrite
}

// workspaceState is the persisted state snapshot loaded once before any row
// is processed. Rows are reconciled purely against these maps.
type workspaceState struct {
	workspaceID     uuid.UUID
	languagesByCode map[string]domain.Language
	keysByName      map[string]domain.Key
	// translations holds key id -> language id -> value, loaded only for
	// the fill-missing policy.
	translations map[uuid.UUID]map[uuid.UUID]string
}

// Import runs the CSV import pipeline: parse, resolve the column mapping,
// reconcile against current workspace state, then either return the plan
// (preview) or apply it.
func (s *Service) Import(ctx context.Context, workspaceID uuid.UUID, content string, opts ImportOptions) (*ImportResult, error) {
	rows := csv.Parse(content)
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	header := rows[0]
	dataRows := rows[1:]

	var mapping resolvedMapping
	if opts.Mapping != nil {
		mapping = resolveExplicit(opts.Mapping)
	} else {
		var err error
		mapping, err = resolveLegacy(header)
		if err != nil {
			return nil, err
		}
	}

	state, err := s.loadState(ctx, workspaceID, opts.Policy)
	if err != nil {
		return nil, err
	}

	plan := buildPlan(state, mapping, opts.Policy, dataRows)

	if opts.Preview {
		return &plan.result, nil
	}

	if err := s.applyPlan(ctx, state, plan); err != nil {
		return nil, err
	}

	return &plan.result, nil
}

// loadState fetches all languages and keys for the workspace, plus existing
// translations for those keys when the fill-missing policy needs them.
func (s *Service) loadState(ctx context.Context, workspaceID uuid.UUID, policy Policy) (*workspaceState, error) {
	state := &workspaceState{
		workspaceID:     workspaceID,
		languagesByCode: make(map[string]domain.Language),
		keysByName:      make(map[string]domain.Key),
		translations:    make(map[uuid.UUID]map[uuid.UUID]string),
	}

	languages, err := s.languages.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("load languages: %w", err)
	}
	for _, lang := range languages {
		state.languagesByCode[lang.Code] = lang
	}

	keys, err := s.keys.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}
	keyIDs := make([]uuid.UUID, 0, len(keys))
	for _, k := range keys {
		state.keysByName[k.Key] = k
		keyIDs = append(keyIDs, k.ID)
	}

	if policy == PolicyFillMissing && len(keyIDs) > 0 {
		translations, err := s.translations.ListByKeyIDs(ctx, workspaceID, keyIDs)
		if err != nil {
			return nil, fmt.Errorf("load translations: %w", err)
		}
		for _, tr := range translations {
			byLang, ok := state.translations[tr.KeyID]
			if !ok {
				byLang = make(map[uuid.UUID]string)
				state.translations[tr.KeyID] = byLang
			}
			byLang[tr.LanguageID] = tr.Value
		}
	}

	return state, nil
}

// buildPlan reconciles data rows against the loaded state. It mutates the
// state's language map when mapped codes need implicit creation: the pending
// language carries its id immediately so later rows can queue translation
// writes against it.
func buildPlan(state *workspaceState, mapping resolvedMapping, policy Policy, dataRows [][]string) *importPlan {
	plan := &importPlan{
		result:      ImportResult{SkippedReasons: []SkippedRow{}},
		createIndex: make(map[string]int),
	}

	// Resolve or synthesize every referenced language up front.
	languageIDs := make(map[string]uuid.UUID, len(mapping.languages))
	for _, lc := range mapping.languages {
		code := strings.TrimSpace(lc.code)
		if code == "" {
			continue
		}
		if _, seen := languageIDs[code]; seen {
			continue
		}
		lang, ok := state.languagesByCode[code]
		if !ok {
			lang = domain.NewLanguage(state.workspaceID, code)
			state.languagesByCode[code] = lang
			plan.newLanguages = append(plan.newLanguages, lang)
		}
		languageIDs[code] = lang.ID
	}

	for i, row := range dataRows {
		rowNum := i + 2 // header is row 1

		if skip := validateRow(row, mapping); skip != "" {
			plan.result.RowsSkipped++
			plan.result.SkippedReasons = append(plan.result.SkippedReasons, SkippedRow{Row: rowNum, Reason: skip})
			continue
		}

		keyName := cellAt(row, mapping.key)

		existing, exists := state.keysByName[keyName]

		key := domain.Key{
			WorkspaceID: state.workspaceID,
			Key:         keyName,
			Module:      valueOrDefault(cellValue(row, mapping.module), domain.DefaultModule),
			Type:        valueOrDefault(cellValue(row, mapping.typ), domain.DefaultType),
		}
		setOptional(&key.Screen, cellValue(row, mapping.screen))
		setOptional(&key.Context, cellValue(row, mapping.context))
		setOptional(&key.ScreenshotRef, cellValue(row, mapping.screenshotRef))
		if raw := cellValue(row, mapping.maxChars); raw != "" {
			// Non-numeric max_chars is dropped, not an error.
			if n, err := strconv.Atoi(raw); err == nil {
				key.MaxChars = &n
			}
		}

		if exists {
			key.ID = existing.ID
			plan.updateKeys = append(plan.updateKeys, key)
			plan.result.KeysToUpdate++
		} else if idx, queued := plan.createIndex[keyName]; queued {
			// Duplicate new key within the file: last row wins. The queued
			// create keeps its id, the attribute fields are replaced, and
			// the count does not move.
			key.ID = plan.createKeys[idx].ID
			plan.createKeys[idx] = key
		} else {
			key.ID = uuid.New()
			plan.createIndex[keyName] = len(plan.createKeys)
			plan.createKeys = append(plan.createKeys, key)
			plan.result.KeysToCreate++
		}

		for _, lc := range mapping.languages {
			code := strings.TrimSpace(lc.code)
			languageID, ok := languageIDs[code]
			if !ok {
				continue
			}

			value := cellAt(row, lc.col)
			if value == "" {
				continue // empty cell contributes nothing
			}

			// fill-missing protects existing non-empty values; a brand-new
			// key has nothing to protect.
			if policy == PolicyFillMissing && exists {
				if state.translations[existing.ID][languageID] != "" {
					continue
				}
			}

			plan.writes = append(plan.writes, translationWrite{
				keyName:    keyName,
				languageID: languageID,
				value:      value,
			})
			plan.result.TranslationsToUpsert++
		}
	}

	return plan
}

// validateRow returns a skip reason for rows the plan must leave out, or ""
// when the row is usable. Legacy format additionally requires module and
// type to be present.
func validateRow(row []string, mapping resolvedMapping) string {
	if mapping.legacy {
		if len(row) < 3 || row[0] == "" || row[1] == "" || row[2] == "" {
			return reasonMissingLegacy
		}
		if cellAt(row, mapping.key) == "" {
			return reasonEmptyKeyLegacy
		}
		return ""
	}

	if cellAt(row, mapping.key) == "" {
		return reasonEmptyKey
	}
	return ""
}

func valueOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// setOptional assigns only non-empty values: a mapped-but-empty cell never
// blanks an existing optional field.
func setOptional(dst **string, value string) {
	if value == "" {
		return
	}
	*dst = &value
}
