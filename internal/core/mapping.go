package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Structural errors reported before any row is processed. The HTTP layer
// maps all of them to 400 responses.
var (
	ErrEmptyFile      = errors.New("CSV file is empty")
	ErrInvalidPolicy  = errors.New("invalid conflict policy")
	ErrInvalidMapping = errors.New("invalid column mapping")
	ErrInvalidHeader  = errors.New("invalid CSV header")
)

// Policy decides what happens when an imported cell collides with an
// existing translation value.
type Policy string

const (
	// PolicyOverwrite replaces every mapped non-empty cell.
	PolicyOverwrite Policy = "overwrite"

	// PolicyFillMissing only writes cells that have no existing non-empty
	// translation value. This is the default.
	PolicyFillMissing Policy = "fill-missing"
)

// ParsePolicy validates a policy string. Empty input selects the default
// fill-missing policy.
func ParsePolicy(raw string) (Policy, error) {
	switch raw {
	case "":
		return PolicyFillMissing, nil
	case string(PolicyOverwrite):
		return PolicyOverwrite, nil
	case string(PolicyFillMissing):
		return PolicyFillMissing, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, raw)
	}
}

// ColumnMapping is the caller-supplied JSON document mapping semantic fields
// to column indices. Key is required; the singular fields are optional; the
// languages map must contain at least one entry.
type ColumnMapping struct {
	Key           *int           `json:"key"`
	Module        *int           `json:"module"`
	Type          *int           `json:"type"`
	Screen        *int           `json:"screen"`
	Context       *int           `json:"context"`
	ScreenshotRef *int           `json:"screenshot_ref"`
	MaxChars      *int           `json:"max_chars"`
	Languages     map[string]int `json:"languages"`
}

// ParseColumnMapping decodes and validates an explicit mapping document.
func ParseColumnMapping(raw []byte) (*ColumnMapping, error) {
	var m ColumnMapping
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidMapping)
	}
	if m.Key == nil {
		return nil, fmt.Errorf("%w: key column mapping is required", ErrInvalidMapping)
	}
	if len(m.Languages) == 0 {
		return nil, fmt.Errorf("%w: at least one language column must be mapped", ErrInvalidMapping)
	}
	return &m, nil
}

// legacyColumns is the fixed header sequence of the legacy format. Columns
// after it are language codes taken verbatim from the header row.
var legacyColumns = []string{"key", "module", "type", "screen", "context", "screenshot_ref", "max_chars"}

// languageColumn pairs a language code with the column index holding its
// values.
type languageColumn struct {
	code string
	col  int
}

// resolvedMapping is the single normalized mapping shape the reconciliation
// engine consumes, regardless of which mode produced it. A nil field index
// yields no value for every row.
type resolvedMapping struct {
	key           int
	module        *int
	typ           *int
	screen        *int
	context       *int
	screenshotRef *int
	maxChars      *int
	languages     []languageColumn

	// legacy switches row validation to the fixed-format rule that key,
	// module and type must all be present.
	legacy bool
}

// resolveExplicit normalizes a validated explicit mapping. Language columns
// are ordered by code so plans are deterministic.
func resolveExplicit(m *ColumnMapping) resolvedMapping {
	codes := make([]string, 0, len(m.Languages))
	for code := range m.Languages {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	languages := make([]languageColumn, 0, len(codes))
	for _, code := range codes {
		languages = append(languages, languageColumn{code: code, col: m.Languages[code]})
	}

	return resolvedMapping{
		key:           *m.Key,
		module:        m.Module,
		typ:           m.Type,
		screen:        m.Screen,
		context:       m.Context,
		screenshotRef: m.ScreenshotRef,
		maxChars:      m.MaxChars,
		languages:     languages,
	}
}

// resolveLegacy validates the fixed-format header row and derives the
// mapping from column positions: the first seven columns are the singular
// fields, everything after is a language code.
func resolveLegacy(header []string) (resolvedMapping, error) {
	for i, want := range legacyColumns {
		var got string
		if i < len(header) {
			got = header[i]
		}
		if !strings.EqualFold(strings.TrimSpace(got), want) {
			return resolvedMapping{}, fmt.Errorf("%w: expected %q at column %d", ErrInvalidHeader, want, i+1)
		}
	}

	var languages []languageColumn
	for i := len(legacyColumns); i < len(header); i++ {
		languages = append(languages, languageColumn{code: header[i], col: i})
	}

	idx := func(i int) *int { return &i }
	return resolvedMapping{
		key:           0,
		module:        idx(1),
		typ:           idx(2),
		screen:        idx(3),
		context:       idx(4),
		screenshotRef: idx(5),
		maxChars:      idx(6),
		languages:     languages,
		legacy:        true,
	}, nil
}

// cellValue reads a trimmed cell through an optional column index. Out of
// range or unmapped columns yield the empty string.
func cellValue(row []string, col *int) string {
	if col == nil {
		return ""
	}
	return cellAt(row, *col)
}

// cellAt reads a trimmed cell by position, tolerating short rows.
func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
