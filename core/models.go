package core

import "encoding/json"

// Incident is one record from the upstream incident search.
//
// The upstream payload is loosely shaped and has drifted over time, so the
// mapping copies only the fields we name and keeps everything else in Extra.
type Incident struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Severity    string         `json:"severity"`
	Status      string         `json:"status"`
	CreatedDate string         `json:"createdDate"`
	Description string         `json:"description"`
	BrandName   string         `json:"brandName,omitempty"`
	EmailCount  int            `json:"emailCount"`
	Files       []DocumentFile `json:"files,omitempty"`
	ChangeLogs  []ChangeLog    `json:"changeLogs,omitempty"`

	// Extra holds upstream fields we do not map explicitly.
	Extra map[string]json.RawMessage `json:"extra,omitempty"`
}

// IncidentPage is one page of search results.
type IncidentPage struct {
	Items      []Incident `json:"items"`
	TotalCount int        `json:"totalCount"`
}

// ChangeLog is an audit entry attached to an incident. The UI uses the
// presence of an "added to incident" entry to decide whether evidence
// documents exist.
type ChangeLog struct {
	Content string `json:"content"`
}

// DocumentFile identifies one evidence document attached to an incident.
// Upstream uses "id" in some responses and "documentId" in others.
type DocumentFile struct {
	ID         string `json:"id,omitempty"`
	DocumentID string `json:"documentId,omitempty"`
	Name       string `json:"name,omitempty"`
}

// Ref returns whichever identifier the upstream populated, or "".
func (d DocumentFile) Ref() string {
	if d.ID != "" {
		return d.ID
	}
	return d.DocumentID
}

// IncidentDetails is the upstream detail response. Raw preserves the full
// body for pass-through responses; DocumentFiles is the decoded subset the
// extraction pipeline needs.
type IncidentDetails struct {
	DocumentFiles []DocumentFile  `json:"documentFiles"`
	Raw           json.RawMessage `json:"-"`
}

// EmailRecord is one extracted email address with whatever optional context
// the source document carried. Identity is the email address, exact match.
type EmailRecord struct {
	Email             string `json:"email"`
	FullName          string `json:"fullName,omitempty"`
	SourceTitle       string `json:"sourceTitle,omitempty"`
	SourceDescription string `json:"sourceDescription,omitempty"`
}

// SessionClaims is the payload of a signed session token. ExpiresAt is in
// milliseconds since the Unix epoch.
type SessionClaims struct {
	Username  string `json:"username"`
	ExpiresAt int64  `json:"expiresAt"`
}

// incidentStringAliases lists, per Incident field, the upstream keys that may
// carry the value, in priority order.
var incidentStringAliases = map[string][]string{
	"id":          {"id", "incidentId"},
	"title":       {"title", "name"},
	"severity":    {"severity"},
	"status":      {"status"},
	"createdDate": {"date", "createdDate"},
	"description": {"description", "details"},
	"brandName":   {"brandName", "brand"},
}

// MapIncident converts one raw upstream search item into an Incident. Only
// named fields are copied; unrecognized keys survive in Extra.
func MapIncident(raw map[string]json.RawMessage) Incident {
	inc := Incident{}
	used := make(map[string]bool)

	pickString := func(field string) string {
		for _, key := range incidentStringAliases[field] {
			v, ok := raw[key]
			if !ok {
				continue
			}
			used[key] = true
			var s string
			if err := json.Unmarshal(v, &s); err == nil && s != "" {
				return s
			}
		}
		return ""
	}

	inc.ID = pickString("id")
	inc.Title = pickString("title")
	inc.Severity = pickString("severity")
	inc.Status = pickString("status")
	inc.CreatedDate = pickString("createdDate")
	inc.Description = pickString("description")
	inc.BrandName = pickString("brandName")

	for _, key := range []string{"emailCount", "leakedEmailsCount"} {
		if v, ok := raw[key]; ok {
			used[key] = true
			var n int
			if err := json.Unmarshal(v, &n); err == nil && inc.EmailCount == 0 {
				inc.EmailCount = n
			}
		}
	}

	for _, key := range []string{"files", "attachments"} {
		if v, ok := raw[key]; ok {
			used[key] = true
			if len(inc.Files) == 0 {
				var files []DocumentFile
				if err := json.Unmarshal(v, &files); err == nil {
					inc.Files = files
				}
			}
		}
	}

	if v, ok := raw["changeLogs"]; ok {
		used["changeLogs"] = true
		var logs []ChangeLog
		if err := json.Unmarshal(v, &logs); err == nil {
			inc.ChangeLogs = logs
		}
	}

	for key, v := range raw {
		if used[key] {
			continue
		}
		if inc.Extra == nil {
			inc.Extra = make(map[string]json.RawMessage)
		}
		inc.Extra[key] = v
	}

	return inc
}
