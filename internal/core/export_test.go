package core

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localeforge/localeforge/internal/csv"
)

func TestExport(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)
	ws := f.addWorkspace(uuid.New())

	en := f.addLanguage(ws, "en")
	ar := f.addLanguage(ws, "ar")

	save := f.addKey(ws, "cta.save", "checkout", "button")
	maxChars := 24
	save.MaxChars = &maxChars
	screen := "Checkout"
	save.Screen = &screen
	f.keys[0] = save

	title := f.addKey(ws, "home.title", "common", "text")

	f.addTranslation(ws, save.ID, en.ID, "Save")
	f.addTranslation(ws, save.ID, ar.ID, "حفظ")
	f.addTranslation(ws, title.ID, en.ID, "Hello, \"world\"")

	content, filename, err := svc.Export(context.Background(), ws)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(filename, "i18n_"+ws.String()[:8]+"_"), "filename = %q", filename)
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	rows := csv.Parse(content)
	require.Len(t, rows, 3)

	// Languages come after the seven fixed columns, ordered by code.
	assert.Equal(t, []string{"key", "module", "type", "screen", "context", "screenshot_ref", "max_chars", "ar", "en"}, rows[0])

	// Keys order by module then key: checkout before common.
	assert.Equal(t, []string{"cta.save", "checkout", "button", "Checkout", "", "", "24", "حفظ", "Save"}, rows[1])
	assert.Equal(t, []string{"home.title", "common", "text", "", "", "", "", "", "Hello, \"world\""}, rows[2])
}

func TestExport_EmptyWorkspace(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)
	ws := f.addWorkspace(uuid.New())

	content, _, err := svc.Export(context.Background(), ws)
	require.NoError(t, err)

	rows := csv.Parse(content)
	require.Len(t, rows, 1, "header only")
	assert.Equal(t, []string{"key", "module", "type", "screen", "context", "screenshot_ref", "max_chars"}, rows[0])
}

// Export output must survive a round trip through Import unchanged.
func TestExport_RoundTrip(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)
	ws := f.addWorkspace(uuid.New())

	en := f.addLanguage(ws, "en")
	key := f.addKey(ws, "terms.blurb", "legal", "text")
	f.addTranslation(ws, key.ID, en.ID, "Line one\nline two, with a comma and \"quotes\"")

	content, _, err := svc.Export(context.Background(), ws)
	require.NoError(t, err)

	result, err := svc.Import(context.Background(), ws, content, ImportOptions{Policy: PolicyOverwrite})
	require.NoError(t, err)
	assert.Equal(t, 0, result.KeysToCreate)
	assert.Equal(t, 1, result.KeysToUpdate)
	assert.Equal(t, "Line one\nline two, with a comma and \"quotes\"", f.value(key.ID, en.ID))
}
