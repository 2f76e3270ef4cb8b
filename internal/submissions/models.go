package submissions

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"inviteform/internal/guests"
	"inviteform/internal/notifications"
)

// EntryList stores guest entries as a jsonb column
type EntryList []guests.Entry

// Value implements the driver.Valuer interface for database storage
func (l EntryList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database retrieval
func (l *EntryList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("type assertion to []byte failed")
	}
}

// GormDataType tells GORM how to handle this type
func (EntryList) GormDataType() string {
	return "jsonb"
}

// Submission is the audit copy of one forwarded submission.
// ID is the event id so redelivered events insert once.
type Submission struct {
	ID               uuid.UUID             `gorm:"type:uuid;primaryKey" json:"id"`
	RegistrationCode string                `gorm:"type:varchar(200);index;not null" json:"registration_code"`
	Outcome          notifications.Outcome `gorm:"type:varchar(20);check:outcome IN ('ACCEPTED', 'VERIFIED', 'REJECTED', 'UNVERIFIED', 'FAILED');not null" json:"outcome"`
	GuestCount       int                   `gorm:"not null" json:"guest_count"`
	Entries          EntryList             `gorm:"type:jsonb;not null" json:"entries"`
	Message          string                `gorm:"type:text" json:"message,omitempty"`
	RemainingBefore  int                   `json:"remaining_before"`
	RemainingAfter   *int                  `json:"remaining_after,omitempty"`
	Lang             string                `gorm:"type:varchar(5)" json:"lang"`
	ClientIP         string                `gorm:"type:varchar(64)" json:"client_ip,omitempty"`
	OccurredAt       time.Time             `gorm:"index;not null" json:"occurred_at"`
	CreatedAt        time.Time             `json:"created_at"`
}

// TableName sets the table name for Submission
func (Submission) TableName() string {
	return "submissions"
}

// FromEvent converts a submission event into its audit row
func FromEvent(e *notifications.SubmissionEvent) *Submission {
	return &Submission{
		ID:               e.ID,
		RegistrationCode: e.RegistrationCode,
		Outcome:          e.Outcome,
		GuestCount:       len(e.Entries),
		Entries:          EntryList(e.Entries),
		Message:          e.Message,
		RemainingBefore:  e.RemainingBefore,
		RemainingAfter:   e.RemainingAfter,
		Lang:             e.Lang,
		ClientIP:         e.ClientIP,
		OccurredAt:       e.OccurredAt,
	}
}

// ListQuery filters the admin listing
type ListQuery struct {
	RegistrationCode string `form:"id" validate:"omitempty,max=200"`
	Outcome          string `form:"outcome" validate:"omitempty,oneof=ACCEPTED VERIFIED REJECTED UNVERIFIED FAILED"`
	Page             int    `form:"page" validate:"omitempty,min=1"`
	Limit            int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

// Normalize applies paging defaults
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 20
	}
}

// ExportRequest selects what to export; an empty code exports everything
type ExportRequest struct {
	RegistrationCode string `json:"id" validate:"omitempty,max=200"`
}

// ExportResult describes an uploaded export
type ExportResult struct {
	Location string `json:"location"`
	Key      string `json:"key"`
	Rows     int    `json:"rows"`
}
