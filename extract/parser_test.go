package extract

import (
	"reflect"
	"testing"

	"github.com/oesukam/r-incident-query-webapp/core"
)

// Requirement: structured CSV with an email column yields one record per row
func TestParseDocumentStructuredCSV(t *testing.T) {
	records := ParseDocument("email,full_name\na@x.com,Alice\nb@x.com,Bob\n")

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if got := records["a@x.com"]; got.FullName != "Alice" {
		t.Errorf("Expected fullName Alice for a@x.com, got %q", got.FullName)
	}
	if got := records["b@x.com"]; got.FullName != "Bob" {
		t.Errorf("Expected fullName Bob for b@x.com, got %q", got.FullName)
	}
}

// Requirement: delimiters inside quoted fields do not split and quotes are
// stripped
func TestParseDocumentQuotedFields(t *testing.T) {
	records := ParseDocument("email,description\na@x.com,\"contains, a comma\"")

	got, ok := records["a@x.com"]
	if !ok {
		t.Fatal("Expected record for a@x.com")
	}
	if got.SourceDescription != "contains, a comma" {
		t.Errorf("Expected description with comma preserved, got %q", got.SourceDescription)
	}
}

// Requirement: doubled quotes inside a quoted field collapse to one
func TestParseDocumentEscapedQuotes(t *testing.T) {
	records := ParseDocument("email,description\na@x.com,\"she said \"\"hi\"\"\"")

	if got := records["a@x.com"].SourceDescription; got != `she said "hi"` {
		t.Errorf("Expected unescaped quotes, got %q", got)
	}
}

// Requirement: a headerless document falls back to regex scanning with no
// optional fields, first occurrence wins
func TestParseDocumentHeaderlessFallback(t *testing.T) {
	records := ParseDocument("random text a@x.com more text b@y.org a@x.com")

	want := map[string]core.EmailRecord{
		"a@x.com": {Email: "a@x.com"},
		"b@y.org": {Email: "b@y.org"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("Expected %v, got %v", want, records)
	}
}

// Requirement: an empty document yields an empty set, not a failure
func TestParseDocumentEmpty(t *testing.T) {
	for _, content := range []string{"", "\n\n", "   \n\t\n"} {
		if records := ParseDocument(content); len(records) != 0 {
			t.Errorf("Expected no records for %q, got %d", content, len(records))
		}
	}
}

// Requirement: tab wins as delimiter when it outnumbers comma in line one
func TestParseDocumentTabDelimited(t *testing.T) {
	records := ParseDocument("email\tfull_name\tSource\na@x.com\tAlice\tforum dump\n")

	got := records["a@x.com"]
	if got.FullName != "Alice" {
		t.Errorf("Expected fullName Alice, got %q", got.FullName)
	}
	if got.SourceTitle != "forum dump" {
		t.Errorf("Expected sourceTitle 'forum dump', got %q", got.SourceTitle)
	}
}

// Requirement: Username maps to email, Title to description, Source to
// source title, exactly as the upstream file variants use them
func TestParseDocumentLegacyHeaderVariants(t *testing.T) {
	records := ParseDocument("Username,Title,Source\na@x.com,Stolen credentials,paste site\n")

	got, ok := records["a@x.com"]
	if !ok {
		t.Fatal("Expected Username column to be treated as email")
	}
	if got.SourceDescription != "Stolen credentials" {
		t.Errorf("Expected Title value in description, got %q", got.SourceDescription)
	}
	if got.SourceTitle != "paste site" {
		t.Errorf("Expected Source value in sourceTitle, got %q", got.SourceTitle)
	}
}

// Requirement: a header row without an email column produces no structured
// records
func TestParseDocumentNoEmailColumn(t *testing.T) {
	records := ParseDocument("full_name,description\nAlice,something\nBob,other\n")

	if len(records) != 0 {
		t.Errorf("Expected no records without an email column, got %d", len(records))
	}
}

// Requirement: rows whose email cell is empty, lacks @, or looks like a
// second header are skipped
func TestParseDocumentRowGuards(t *testing.T) {
	records := ParseDocument("email,full_name\n,NoAddress\nnot-an-address,Bob\nemail,full_name\nc@x.com,Carol\n")

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d: %v", len(records), records)
	}
	if _, ok := records["c@x.com"]; !ok {
		t.Error("Expected only c@x.com to survive the guards")
	}
}

// Requirement: later rows overwrite optional fields for the same email but
// empty cells never erase earlier values
func TestParseDocumentLastRowWins(t *testing.T) {
	records := ParseDocument("email,full_name,description\na@x.com,Alice,first\na@x.com,,second\na@x.com,Alicia,\n")

	got := records["a@x.com"]
	if got.FullName != "Alicia" {
		t.Errorf("Expected last non-empty fullName Alicia, got %q", got.FullName)
	}
	if got.SourceDescription != "second" {
		t.Errorf("Expected last non-empty description second, got %q", got.SourceDescription)
	}
}

// Requirement: documents of one incident merge incrementally, later
// documents overwriting non-empty optional fields
func TestMergeIntoAcrossDocuments(t *testing.T) {
	combined := make(map[string]core.EmailRecord)

	MergeInto(combined, ParseDocument("email,full_name\na@x.com,Alice\n"))
	MergeInto(combined, ParseDocument("random line with a@x.com and b@y.org"))
	MergeInto(combined, ParseDocument("email,description\na@x.com,seen again\n"))

	if len(combined) != 2 {
		t.Fatalf("Expected 2 merged records, got %d", len(combined))
	}

	got := combined["a@x.com"]
	if got.FullName != "Alice" {
		t.Errorf("Expected fullName Alice preserved through merges, got %q", got.FullName)
	}
	if got.SourceDescription != "seen again" {
		t.Errorf("Expected description from the later document, got %q", got.SourceDescription)
	}
}

func TestSplitFields(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		delim byte
		want  []string
	}{
		{"plain", "a,b,c", ',', []string{"a", "b", "c"}},
		{"trimmed", " a , b ", ',', []string{"a", "b"}},
		{"quoted comma", `a,"b,c",d`, ',', []string{"a", "b,c", "d"}},
		{"escaped quote", `"a ""b"" c"`, ',', []string{`a "b" c`}},
		{"trailing empty", "a,b,", ',', []string{"a", "b", ""}},
		{"tab delim", "a\tb,c", '\t', []string{"a", "b,c"}},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := splitFields(test.line, test.delim); !reflect.DeepEqual(got, test.want) {
				t.Errorf("Expected %q, got %q", test.want, got)
			}
		})
	}
}
