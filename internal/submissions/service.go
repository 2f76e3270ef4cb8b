package submissions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inviteform/internal/notifications"
	"inviteform/internal/shared/utils/response"
	"inviteform/pkg/logger"
)

var (
	ErrExportDisabled  = errors.New("export storage is not configured")
	ErrNothingToExport = errors.New("no submissions to export")
	ErrInvalidEvent    = errors.New("invalid submission event")
)

type Service interface {
	notifications.Handler
	List(ctx context.Context, query ListQuery) (*ListResponse, error)
	Export(ctx context.Context, req ExportRequest) (*ExportResult, error)
}

// ListResponse is one page of audit rows
type ListResponse struct {
	Submissions []Submission        `json:"submissions"`
	Pagination  response.Pagination `json:"pagination"`
}

type service struct {
	repo     Repository
	uploader Uploader // nil when exports are disabled
	prefix   string
	logger   *logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, uploader Uploader, prefix string, log *logger.Logger) Service {
	return &service{
		repo:     repo,
		uploader: uploader,
		prefix:   prefix,
		logger:   log,
		now:      time.Now,
	}
}

// HandleSubmissionEvent records the audit copy of a forwarded submission
func (s *service) HandleSubmissionEvent(ctx context.Context, event *notifications.SubmissionEvent) error {
	if event == nil || event.RegistrationCode == "" || !event.Outcome.IsValid() {
		return ErrInvalidEvent
	}

	if err := s.repo.Create(ctx, FromEvent(event)); err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}

	s.logger.InfoWithContext(ctx, "Submission Recorded", map[string]interface{}{
		"event_id":          event.ID.String(),
		"registration_code": event.RegistrationCode,
		"outcome":           string(event.Outcome),
		"guests":            len(event.Entries),
	})
	return nil
}

func (s *service) List(ctx context.Context, query ListQuery) (*ListResponse, error) {
	query.Normalize()

	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	if rows == nil {
		rows = []Submission{}
	}

	return &ListResponse{
		Submissions: rows,
		Pagination:  response.NewPagination(query.Page, query.Limit, total),
	}, nil
}

func (s *service) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	if s.uploader == nil {
		return nil, ErrExportDisabled
	}

	rows, err := s.repo.ListForExport(ctx, req.RegistrationCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load submissions: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNothingToExport
	}

	body, err := WriteCSV(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to render export: %w", err)
	}

	key := ExportKey(s.prefix, req.RegistrationCode, s.now())
	location, err := s.uploader.Upload(ctx, key, body)
	if err != nil {
		return nil, err
	}

	s.logger.InfoWithContext(ctx, "Submissions Exported", map[string]interface{}{
		"key":  key,
		"rows": len(rows),
	})

	return &ExportResult{Location: location, Key: key, Rows: len(rows)}, nil
}
