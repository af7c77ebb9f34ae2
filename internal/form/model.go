package form

import (
	"strings"
	"time"
)

// Form statuses. Status only ever moves forward: draft advances to
// in_progress on the first edit, submitted is reached only through a
// successful external sync. "complete" is reserved but currently unused.
const (
	StatusDraft      = "draft"
	StatusInProgress = "in_progress"
	StatusComplete   = "complete"
	StatusSubmitted  = "submitted"
)

// Document is the form payload. The synchronization engine treats it as an
// opaque nested value addressable by dotted field paths; the fixed field list
// lives in the UI and in the Loxo transform, not here.
type Document = map[string]any

type Form struct {
	ID            uint       `gorm:"primaryKey" json:"-"`
	FormID        string     `gorm:"uniqueIndex;size:64;not null" json:"formId"`
	Status        string     `gorm:"size:16;not null;default:draft" json:"status"`
	Data          Document   `gorm:"type:jsonb;serializer:json" json:"data"`
	Revision      uint64     `gorm:"not null;default:0" json:"revision"`
	LoxoJobID     *int64     `json:"loxoJobId"`
	LoxoCompanyID *int64     `json:"loxoCompanyId"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	SubmittedAt   *time.Time `json:"submittedAt"`
}

// DefaultData is the skeleton a brand-new intake form starts from.
func DefaultData() Document {
	return Document{
		"clientCompany": map[string]any{
			"name":         "",
			"address":      map[string]any{},
			"contactName":  "",
			"contacts":     []any{},
			"feeStructure": map[string]any{"rawString": ""},
		},
		"meetingDate": "",
		"jobTitle":    "",
	}
}

// Lookup walks a dotted field path through nested objects. The second return
// is false when any segment is missing or a non-object is hit mid-path.
func Lookup(doc Document, path string) (any, bool) {
	var current any = map[string]any(doc)
	for path != "" {
		seg := path
		if i := strings.IndexByte(path, '.'); i >= 0 {
			seg, path = path[:i], path[i+1:]
		} else {
			path = ""
		}
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// LookupString returns the string value at path, or "" when the path is
// missing or not a string.
func LookupString(doc Document, path string) string {
	v, ok := Lookup(doc, path)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
