package core

import (
	"encoding/json"
	"testing"
)

func rawItem(t *testing.T, src string) map[string]json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	if err := json.Unmarshal([]byte(src), &m); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return m
}

// Requirement: upstream field aliases map onto named Incident fields in
// priority order
func TestMapIncidentAliases(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Incident
	}{
		{
			name: "primary keys",
			src:  `{"id":"INC-1","title":"Dump","severity":"high","date":"2026-08-01","description":"desc","brandName":"Acme","emailCount":4}`,
			want: Incident{ID: "INC-1", Title: "Dump", Severity: "high", CreatedDate: "2026-08-01", Description: "desc", BrandName: "Acme", EmailCount: 4},
		},
		{
			name: "alias keys",
			src:  `{"incidentId":"INC-2","name":"Kit","createdDate":"2026-08-02","details":"more","brand":"Acme","leakedEmailsCount":7}`,
			want: Incident{ID: "INC-2", Title: "Kit", CreatedDate: "2026-08-02", Description: "more", BrandName: "Acme", EmailCount: 7},
		},
		{
			name: "primary wins over alias",
			src:  `{"id":"INC-3","incidentId":"ignored","title":"Real","name":"ignored"}`,
			want: Incident{ID: "INC-3", Title: "Real"},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			got := MapIncident(rawItem(t, test.src))
			got.Extra = nil
			if got.ID != test.want.ID || got.Title != test.want.Title ||
				got.Severity != test.want.Severity || got.CreatedDate != test.want.CreatedDate ||
				got.Description != test.want.Description || got.BrandName != test.want.BrandName ||
				got.EmailCount != test.want.EmailCount {
				t.Errorf("Expected %+v, got %+v", test.want, got)
			}
		})
	}
}

// Requirement: unrecognized upstream keys survive in Extra instead of being
// dropped or spread untyped
func TestMapIncidentKeepsExtra(t *testing.T) {
	inc := MapIncident(rawItem(t, `{"id":"INC-1","vendorScore":9,"tags":["a","b"]}`))

	if len(inc.Extra) != 2 {
		t.Fatalf("Expected 2 extra fields, got %d", len(inc.Extra))
	}
	if _, ok := inc.Extra["vendorScore"]; !ok {
		t.Error("Expected vendorScore kept in Extra")
	}
	if _, ok := inc.Extra["id"]; ok {
		t.Error("Mapped key must not be duplicated into Extra")
	}
}

func TestMapIncidentFilesAndChangeLogs(t *testing.T) {
	inc := MapIncident(rawItem(t,
		`{"id":"INC-1","files":[{"id":"doc-1","name":"dump.csv"}],"changeLogs":[{"content":"file added to incident"}]}`))

	if len(inc.Files) != 1 || inc.Files[0].ID != "doc-1" {
		t.Errorf("Expected files decoded, got %v", inc.Files)
	}
	if len(inc.ChangeLogs) != 1 || inc.ChangeLogs[0].Content != "file added to incident" {
		t.Errorf("Expected change logs decoded, got %v", inc.ChangeLogs)
	}
}

// Requirement: document references fall back from id to documentId
func TestDocumentFileRef(t *testing.T) {
	tests := []struct {
		name string
		doc  DocumentFile
		want string
	}{
		{"id preferred", DocumentFile{ID: "doc-1", DocumentID: "doc-2"}, "doc-1"},
		{"documentId fallback", DocumentFile{DocumentID: "doc-2"}, "doc-2"},
		{"neither", DocumentFile{}, ""},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := test.doc.Ref(); got != test.want {
				t.Errorf("Expected %q, got %q", test.want, got)
			}
		})
	}
}
