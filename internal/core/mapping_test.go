package core

import (
	"errors"
	"testing"
)

// ============================================================================
// ParsePolicy Tests
// ============================================================================

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Policy
		wantErr bool
	}{
		{
			name:  "empty selects fill-missing default",
			input: "",
			want:  PolicyFillMissing,
		},
		{
			name:  "overwrite",
			input: "overwrite",
			want:  PolicyOverwrite,
		},
		{
			name:  "fill-missing",
			input: "fill-missing",
			want:  PolicyFillMissing,
		},
		{
			name:    "unknown value rejected",
			input:   "merge",
			wantErr: true,
		},
		{
			name:    "case sensitive",
			input:   "Overwrite",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePolicy(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPolicy) {
					t.Fatalf("ParsePolicy(%q) error = %v, want ErrInvalidPolicy", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePolicy(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParsePolicy(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ============================================================================
// ParseColumnMapping Tests
// ============================================================================

func TestParseColumnMapping(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:  "minimal valid mapping",
			input: `{"key":0,"languages":{"en":1}}`,
		},
		{
			name:  "full mapping",
			input: `{"key":0,"module":1,"type":2,"screen":3,"context":4,"screenshot_ref":5,"max_chars":6,"languages":{"en":7,"ar":8}}`,
		},
		{
			name:    "malformed JSON",
			input:   `{"key":0,`,
			wantErr: true,
		},
		{
			name:    "missing key column",
			input:   `{"module":1,"languages":{"en":2}}`,
			wantErr: true,
		},
		{
			name:    "no language columns",
			input:   `{"key":0,"languages":{}}`,
			wantErr: true,
		},
		{
			name:    "languages absent",
			input:   `{"key":0}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseColumnMapping([]byte(tt.input))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMapping) {
					t.Fatalf("ParseColumnMapping() error = %v, want ErrInvalidMapping", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseColumnMapping() unexpected error: %v", err)
			}
			if m.Key == nil {
				t.Error("ParseColumnMapping() returned nil key column")
			}
		})
	}
}

// ============================================================================
// resolveLegacy Tests
// ============================================================================

func TestResolveLegacy(t *testing.T) {
	valid := []string{"key", "module", "type", "screen", "context", "screenshot_ref", "max_chars", "en", "ar"}

	t.Run("valid header", func(t *testing.T) {
		m, err := resolveLegacy(valid)
		if err != nil {
			t.Fatalf("resolveLegacy() unexpected error: %v", err)
		}
		if !m.legacy {
			t.Error("resolveLegacy() did not set legacy mode")
		}
		if m.key != 0 {
			t.Errorf("key column = %d, want 0", m.key)
		}
		if len(m.languages) != 2 {
			t.Fatalf("language columns = %d, want 2", len(m.languages))
		}
		if m.languages[0].code != "en" || m.languages[0].col != 7 {
			t.Errorf("first language = %+v, want {en 7}", m.languages[0])
		}
		if m.languages[1].code != "ar" || m.languages[1].col != 8 {
			t.Errorf("second language = %+v, want {ar 8}", m.languages[1])
		}
	})

	t.Run("header match is case insensitive", func(t *testing.T) {
		header := []string{"Key", "MODULE", "Type", "Screen", "Context", "Screenshot_Ref", "Max_Chars", "en"}
		if _, err := resolveLegacy(header); err != nil {
			t.Fatalf("resolveLegacy() unexpected error: %v", err)
		}
	})

	t.Run("header cells are trimmed", func(t *testing.T) {
		header := []string{" key ", "module", "type", "screen", "context", "screenshot_ref", "max_chars"}
		if _, err := resolveLegacy(header); err != nil {
			t.Fatalf("resolveLegacy() unexpected error: %v", err)
		}
	})

	t.Run("no language columns is allowed", func(t *testing.T) {
		m, err := resolveLegacy(valid[:7])
		if err != nil {
			t.Fatalf("resolveLegacy() unexpected error: %v", err)
		}
		if len(m.languages) != 0 {
			t.Errorf("language columns = %d, want 0", len(m.languages))
		}
	})

	t.Run("wrong column name reports position", func(t *testing.T) {
		header := []string{"key", "module", "kind", "screen", "context", "screenshot_ref", "max_chars"}
		_, err := resolveLegacy(header)
		if !errors.Is(err, ErrInvalidHeader) {
			t.Fatalf("resolveLegacy() error = %v, want ErrInvalidHeader", err)
		}
		want := `invalid CSV header: expected "type" at column 3`
		if err.Error() != want {
			t.Errorf("error = %q, want %q", err.Error(), want)
		}
	})

	t.Run("short header fails on first missing column", func(t *testing.T) {
		_, err := resolveLegacy([]string{"key", "module"})
		if !errors.Is(err, ErrInvalidHeader) {
			t.Fatalf("resolveLegacy() error = %v, want ErrInvalidHeader", err)
		}
	})
}

// ============================================================================
// Cell Access Tests
// ============================================================================

func TestCellAccess(t *testing.T) {
	row := []string{"  home.title  ", "common", ""}

	if got := cellAt(row, 0); got != "home.title" {
		t.Errorf("cellAt(0) = %q, want trimmed value", got)
	}
	if got := cellAt(row, 5); got != "" {
		t.Errorf("cellAt out of range = %q, want empty", got)
	}
	if got := cellAt(row, -1); got != "" {
		t.Errorf("cellAt negative = %q, want empty", got)
	}
	if got := cellValue(row, nil); got != "" {
		t.Errorf("cellValue(nil column) = %q, want empty", got)
	}
	one := 1
	if got := cellValue(row, &one); got != "common" {
		t.Errorf("cellValue(&1) = %q, want %q", got, "common")
	}
}
