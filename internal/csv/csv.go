// Package csv implements the delimited-text format used by translation
// import and export. The parser is a character-level state machine rather
// than a split-then-unescape pass: a naive split breaks on delimiters and
// line endings embedded in quoted fields.
package csv

import "strings"

// Delimiter separates fields within a record.
const Delimiter = ','

// Parse turns raw file text into records of string fields.
//
// Rules:
//   - Records end on "\n" or "\r\n"; blank lines produce no record.
//   - A field wrapped in double quotes may contain delimiters, quotes and
//     line endings. Two consecutive quote characters inside a quoted span
//     yield one literal quote.
//   - An unterminated quote is not an error: the remainder of the input is
//     treated as still quoted. This is a documented limitation.
//
// All-blank input yields zero records; the caller decides whether that is
// an empty-file error.
func Parse(content string) [][]string {
	var (
		records  [][]string
		fields   []string
		field    strings.Builder
		inQuotes bool
		// sawData distinguishes a blank line from a record whose first
		// field is empty: a bare delimiter or quote already counts.
		sawData bool
	)

	endField := func() {
		fields = append(fields, field.String())
		field.Reset()
	}

	endRecord := func() {
		if !sawData && len(fields) == 0 {
			field.Reset()
			return
		}
		endField()
		records = append(records, fields)
		fields = nil
		sawData = false
	}

	for i := 0; i < len(content); i++ {
		c := content[i]

		if inQuotes {
			if c == '"' {
				if i+1 < len(content) && content[i+1] == '"' {
					field.WriteByte('"')
					i++
					continue
				}
				inQuotes = false
				continue
			}
			field.WriteByte(c)
			continue
		}

		switch c {
		case '"':
			inQuotes = true
			sawData = true
		case Delimiter:
			endField()
			sawData = true
		case '\r':
			if i+1 < len(content) && content[i+1] == '\n' {
				i++
			}
			endRecord()
		case '\n':
			endRecord()
		default:
			if !isSpace(c) {
				sawData = true
			}
			field.WriteByte(c)
		}
	}
	endRecord()

	return records
}

// isSpace reports whether c is horizontal whitespace. A line containing only
// spaces and tabs is still considered blank.
func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

// EscapeField quotes a field value when it contains a delimiter, quote or
// line ending, doubling any embedded quotes.
func EscapeField(value string) string {
	if !strings.ContainsAny(value, "\",\n\r") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// FormatRow renders one record as a single line without a trailing newline.
func FormatRow(fields []string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = EscapeField(f)
	}
	return strings.Join(escaped, string(Delimiter))
}

// Join renders records into file content, one line per record.
func Join(records [][]string) string {
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = FormatRow(r)
	}
	return strings.Join(lines, "\n")
}
