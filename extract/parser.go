package extract

import (
	"regexp"
	"strings"

	"github.com/oesukam/r-incident-query-webapp/core"
)

// emailPattern is the unanchored fallback matcher for documents with no
// recognizable header row.
var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// headerKeywords decide whether the first line of a document is a header
// row. Substring match, case-insensitive.
var headerKeywords = []string{"email", "full_name", "source", "name", "title", "description", "username"}

// columnIndexes holds the detected column position per record field, -1 when
// the document has no such column.
type columnIndexes struct {
	email       int
	fullName    int
	title       int
	description int
}

// ParseDocument converts the raw text of one evidence document into email
// records keyed by address. The format is sniffed per document: delimiter
// from the first line's tab vs comma counts, header presence from keyword
// substrings. Malformed content never fails; rows that do not yield a valid
// email are skipped.
func ParseDocument(content string) map[string]core.EmailRecord {
	records := make(map[string]core.EmailRecord)

	lines := contentLines(content)
	if len(lines) == 0 {
		return records
	}

	delim := detectDelimiter(lines[0])

	if hasHeaderRow(lines[0]) {
		parseStructured(lines, delim, records)
	} else {
		parseFallback(lines, records)
	}

	return records
}

func contentLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// detectDelimiter inspects only the first line. Tab wins when it outnumbers
// comma, otherwise comma.
func detectDelimiter(firstLine string) byte {
	if strings.Count(firstLine, "\t") > strings.Count(firstLine, ",") {
		return '\t'
	}
	return ','
}

func hasHeaderRow(firstLine string) bool {
	lower := strings.ToLower(firstLine)
	for _, kw := range headerKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// mapColumns locates field columns by header name. The Username, Title and
// Source exact matches mirror real upstream file variants where those
// headers carry the email, description and source-title values respectively.
func mapColumns(headers []string) columnIndexes {
	cols := columnIndexes{email: -1, fullName: -1, title: -1, description: -1}

	for i, header := range headers {
		lower := strings.ToLower(header)

		if cols.email < 0 {
			if strings.Contains(lower, "email") || strings.Contains(lower, "e-mail") ||
				strings.Contains(lower, "mail") || header == "Username" {
				cols.email = i
			}
		}
		if cols.fullName < 0 {
			if strings.Contains(lower, "full_name") || strings.Contains(lower, "fullname") {
				cols.fullName = i
			}
		}
		if cols.description < 0 {
			if strings.Contains(lower, "source_description") || strings.Contains(lower, "description") ||
				header == "Title" {
				cols.description = i
			}
		}
		if cols.title < 0 {
			if strings.Contains(lower, "source_title") || header == "Source" {
				cols.title = i
			}
		}
	}

	return cols
}

func parseStructured(lines []string, delim byte, records map[string]core.EmailRecord) {
	cols := mapColumns(splitFields(lines[0], delim))
	if cols.email < 0 {
		return
	}

	for _, line := range lines[1:] {
		fields := splitFields(line, delim)

		email := fieldAt(fields, cols.email)
		if email == "" || !strings.Contains(email, "@") || strings.Contains(email, "email") {
			continue
		}

		mergeRecord(records, core.EmailRecord{
			Email:             email,
			FullName:          fieldAt(fields, cols.fullName),
			SourceTitle:       fieldAt(fields, cols.title),
			SourceDescription: fieldAt(fields, cols.description),
		})
	}
}

func parseFallback(lines []string, records map[string]core.EmailRecord) {
	for _, line := range lines {
		for _, match := range emailPattern.FindAllString(line, -1) {
			if _, seen := records[match]; !seen {
				records[match] = core.EmailRecord{Email: match}
			}
		}
	}
}

// splitFields is a delimiter-aware, quote-aware splitter. Delimiters inside
// double quotes do not split; each field is trimmed, surrounding quotes are
// stripped, and doubled quotes collapse to one.
func splitFields(line string, delim byte) []string {
	var fields []string
	var b strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			inQuotes = !inQuotes
			b.WriteByte(ch)
		case ch == delim && !inQuotes:
			fields = append(fields, cleanField(b.String()))
			b.Reset()
		default:
			b.WriteByte(ch)
		}
	}
	fields = append(fields, cleanField(b.String()))

	return fields
}

func cleanField(raw string) string {
	f := strings.TrimSpace(raw)
	if len(f) >= 2 && strings.HasPrefix(f, `"`) && strings.HasSuffix(f, `"`) {
		f = f[1 : len(f)-1]
	}
	return strings.ReplaceAll(f, `""`, `"`)
}

func fieldAt(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

// mergeRecord folds one record into the map. Non-empty optional fields
// overwrite what is already there; empty ones never erase earlier values.
// Applies both to later rows within a document and to later documents of the
// same incident.
func mergeRecord(records map[string]core.EmailRecord, rec core.EmailRecord) {
	existing := records[rec.Email]
	existing.Email = rec.Email
	if rec.FullName != "" {
		existing.FullName = rec.FullName
	}
	if rec.SourceTitle != "" {
		existing.SourceTitle = rec.SourceTitle
	}
	if rec.SourceDescription != "" {
		existing.SourceDescription = rec.SourceDescription
	}
	records[rec.Email] = existing
}

// MergeInto folds every record of src into dst with mergeRecord semantics.
func MergeInto(dst, src map[string]core.EmailRecord) {
	for _, rec := range src {
		mergeRecord(dst, rec)
	}
}
