package registration

import (
	"fmt"

	"inviteform/internal/guests"
	"inviteform/internal/i18n"
)

// FormMode selects how guests are entered on the page
type FormMode string

const (
	ModeTextarea FormMode = "textarea" // one name per line
	ModeRows     FormMode = "rows"     // name + phone rows
)

// ParseFormMode defaults to the textarea variant
func ParseFormMode(v string) FormMode {
	if FormMode(v) == ModeRows {
		return ModeRows
	}
	return ModeTextarea
}

// Form actions posted by the page buttons
const (
	ActionSubmit    = "submit"
	ActionAddRow    = "add"
	ActionRemoveRow = "remove"
)

// QuotaResult is the advisory quota for one registration code
type QuotaResult struct {
	Code      string `json:"code"`
	Remaining int    `json:"remaining"`
	Open      bool   `json:"open"`
	Cached    bool   `json:"cached"`
}

// RegisterInput is one submission attempt
type RegisterInput struct {
	Code     string
	Lang     i18n.Lang
	Entries  []guests.Entry
	ClientIP string
}

// RegisterResult is a forwarded submission the hosted backend accepted
type RegisterResult struct {
	Code      string `json:"code"`
	Count     int    `json:"count"`
	Message   string `json:"message"`
	Remaining int    `json:"remaining"`
	Open      bool   `json:"open"`
	Verified  bool   `json:"verified"`
}

// ExceededError reports more guests than the quota allows
type ExceededError struct {
	Count     int
	Remaining int
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("%d guests exceed remaining quota %d", e.Count, e.Remaining)
}

func (e *ExceededError) Is(target error) bool {
	return target == guests.ErrQuotaExceeded
}

// ForwardError wraps a failure after the entries were sent, with the quota seen before sending
type ForwardError struct {
	Remaining int
	Err       error
}

func (e *ForwardError) Error() string {
	return "forward submission: " + e.Err.Error()
}

func (e *ForwardError) Unwrap() error {
	return e.Err
}

// FormInput is what the page posts back
type FormInput struct {
	Code     string
	Lang     i18n.Lang
	Action   string
	RowIndex int
	Names    string
	Rows     []guests.Entry
	ClientIP string
}

// Notice is the single status line shown under the form
type Notice struct {
	Kind string // "error" or "success"
	Text string
}

// Page is the view model behind the registration page
type Page struct {
	Lang         i18n.Lang
	Code         string
	Mode         FormMode
	Open         bool
	Closed       bool
	Disabled     bool
	HasRemaining bool
	Remaining    int
	Count        int
	CanAddRow    bool
	Names        string
	Rows         []guests.Entry
	Notice       *Notice
	RowErrors    []string
	ToggleURL    string
}

// Rows mode
func (p *Page) IsRows() bool {
	return p.Mode == ModeRows
}

// Exceeded reports whether the current input is over the quota
func (p *Page) Exceeded() bool {
	return p.Open && p.Count > p.Remaining
}

// SubmitGuestsRequest is the JSON API body. Either names or entries is used, depending on the form mode.
// Rows are checked by the registration flow so blank rows are skipped and errors come back per row.
type SubmitGuestsRequest struct {
	Lang    string         `json:"lang" validate:"omitempty,oneof=ar en"`
	Names   string         `json:"names" validate:"omitempty,max=20000"`
	Entries []guests.Entry `json:"entries" validate:"omitempty,max=500"`
}

// QuotaResponse is the JSON API quota payload
type QuotaResponse struct {
	QuotaResult
	Text string `json:"text"`
}

// SubmitResponse is the JSON API submission payload
type SubmitResponse struct {
	RegisterResult
	Text string `json:"text"`
}
