package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"inviteform/internal/guests"
)

// Outcome describes how the hosted backend handled a forwarded submission
type Outcome string

const (
	OutcomeAccepted   Outcome = "ACCEPTED"
	OutcomeVerified   Outcome = "VERIFIED"
	OutcomeRejected   Outcome = "REJECTED"
	OutcomeUnverified Outcome = "UNVERIFIED"
	OutcomeFailed     Outcome = "FAILED"
)

// IsValid reports whether the outcome is known
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeAccepted, OutcomeVerified, OutcomeRejected, OutcomeUnverified, OutcomeFailed:
		return true
	default:
		return false
	}
}

// Succeeded reports whether the guests landed on the hosted backend
func (o Outcome) Succeeded() bool {
	return o == OutcomeAccepted || o == OutcomeVerified
}

// SubmissionEvent is published for every submission forwarded to the hosted backend
type SubmissionEvent struct {
	ID               uuid.UUID      `json:"id"`
	RegistrationCode string         `json:"registration_code"`
	Outcome          Outcome        `json:"outcome"`
	Entries          []guests.Entry `json:"entries"`
	Message          string         `json:"message,omitempty"`
	RemainingBefore  int            `json:"remaining_before"`
	RemainingAfter   *int           `json:"remaining_after,omitempty"`
	Lang             string         `json:"lang"`
	ClientIP         string         `json:"client_ip,omitempty"`
	OccurredAt       time.Time      `json:"occurred_at"`
}

// NewSubmissionEvent stamps a new event with an id and time
func NewSubmissionEvent(code string, outcome Outcome, entries []guests.Entry) *SubmissionEvent {
	return &SubmissionEvent{
		ID:               uuid.New(),
		RegistrationCode: code,
		Outcome:          outcome,
		Entries:          entries,
		OccurredAt:       time.Now().UTC(),
	}
}

// GetPartitionKey keeps every event of one registration code on one partition
func (e *SubmissionEvent) GetPartitionKey() string {
	return e.RegistrationCode
}

// ToJSON serializes the event for the wire
func (e *SubmissionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON parses an event from the wire
func FromJSON(data []byte) (*SubmissionEvent, error) {
	var e SubmissionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
