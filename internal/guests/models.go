package guests

import (
	"errors"
	"fmt"
	"strings"
)

// Entry is one name/phone pair entered for a registration code
type Entry struct {
	Name  string `json:"name" validate:"required,max=200"`
	Phone string `json:"phone,omitempty" validate:"omitempty,guestphone"`
}

// IsBlank reports whether the row carries no input at all
func (e Entry) IsBlank() bool {
	return strings.TrimSpace(e.Name) == "" && strings.TrimSpace(e.Phone) == ""
}

var (
	ErrNoEntries     = errors.New("no guest entries")
	ErrQuotaExceeded = errors.New("guest count exceeds remaining quota")
)

// Reason identifies why a row failed validation
type Reason string

const (
	ReasonMissingName  Reason = "missing_name"
	ReasonInvalidPhone Reason = "invalid_phone"
)

// RowError points at a single rejected row (0-based)
type RowError struct {
	Row    int    `json:"row"`
	Reason Reason `json:"reason"`
}

// ValidationErrors collects every rejected row of a submission
type ValidationErrors []RowError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, fmt.Sprintf("row %d: %s", e.Row+1, e.Reason))
	}
	return "invalid entries: " + strings.Join(parts, "; ")
}
