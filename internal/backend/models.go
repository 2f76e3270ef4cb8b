package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"inviteform/internal/guests"
)

// Encoding selects how entries are sent to the hosted backend
type Encoding string

const (
	EncodingJSONNames   Encoding = "json-names"
	EncodingJSONEntries Encoding = "json-entries"
	EncodingForm        Encoding = "form"
)

// IsValid reports whether the encoding is supported
func (e Encoding) IsValid() bool {
	switch e {
	case EncodingJSONNames, EncodingJSONEntries, EncodingForm:
		return true
	default:
		return false
	}
}

var (
	ErrInvalidLink         = errors.New("missing registration code")
	ErrConnection          = errors.New("hosted backend unreachable")
	ErrUnexpectedResponse  = errors.New("unexpected hosted backend response")
	ErrUnverified          = errors.New("submission could not be verified")
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
)

// RejectedError is returned when the hosted backend answers success=false
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("hosted backend rejected request: %s", e.Message)
}

// envelope is the {success, message} shape every backend answer uses
type envelope struct {
	Success bool            `json:"success"`
	Message json.RawMessage `json:"message"`
}

type quotaMessage struct {
	Remaining *float64 `json:"remaining"`
}

type submitMessage struct {
	OK             string   `json:"ok"`
	RemainingAfter *float64 `json:"remainingAfter"`
}

// SubmitRequest carries the entries for one registration code.
// RemainingBefore is the quota seen before submitting; it drives the verify fallback.
type SubmitRequest struct {
	ID              string
	Entries         []guests.Entry
	RemainingBefore int
}

// SubmitResult is the outcome of an accepted submission
type SubmitResult struct {
	Message        string `json:"message"`
	RemainingAfter *int   `json:"remaining_after,omitempty"`
	Verified       bool   `json:"verified"`
}

type namesPayload struct {
	ID    string `json:"id"`
	Names string `json:"names"`
}

type entriesPayload struct {
	ID      string         `json:"id"`
	Entries []guests.Entry `json:"entries"`
}

// toCount floors a backend count into [0, MaxInt32]
func toCount(v float64) int {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	}
	return int(math.Floor(v))
}

// messageText extracts a human string from either a JSON string or an object message
func messageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// objects only carry text in "ok"; anything else is left to the caller's default
	var m submitMessage
	if err := json.Unmarshal(raw, &m); err == nil {
		return strings.TrimSpace(m.OK)
	}
	return ""
}

func joinNames(entries []guests.Entry) string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return strings.Join(names, "\n")
}

func joinPhones(entries []guests.Entry) (string, bool) {
	phones := make([]string, 0, len(entries))
	hasPhone := false
	for _, e := range entries {
		if e.Phone != "" {
			hasPhone = true
		}
		phones = append(phones, e.Phone)
	}
	return strings.Join(phones, "\n"), hasPhone
}
