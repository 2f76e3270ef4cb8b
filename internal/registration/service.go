package registration

import (
	"context"
	"errors"
	"strings"
	"time"

	"inviteform/internal/backend"
	"inviteform/internal/guests"
	"inviteform/internal/i18n"
	"inviteform/internal/notifications"
	"inviteform/internal/shared/constants"
	"inviteform/pkg/cache"
	"inviteform/pkg/logger"
)

// Backend is the hosted backend the flow forwards to
type Backend interface {
	Quota(ctx context.Context, id string) (int, error)
	Submit(ctx context.Context, sr backend.SubmitRequest) (*backend.SubmitResult, error)
}

type Service interface {
	Quota(ctx context.Context, code string) (*QuotaResult, error)
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	LoadPage(ctx context.Context, code string, lang i18n.Lang) *Page
	SubmitPage(ctx context.Context, in FormInput) *Page
	Mode() FormMode
}

// Options tunes the flow
type Options struct {
	Mode     FormMode
	CacheTTL time.Duration
}

type service struct {
	backend   Backend
	cache     cache.Service // nil without Redis
	publisher notifications.Publisher
	logger    *logger.Logger
	mode      FormMode
	cacheTTL  time.Duration
}

func NewService(be Backend, cacheService cache.Service, publisher notifications.Publisher, log *logger.Logger, opts Options) Service {
	if publisher == nil {
		publisher = notifications.NopPublisher{}
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = constants.TTL_REALTIME_SHORT
	}
	return &service{
		backend:   be,
		cache:     cacheService,
		publisher: publisher,
		logger:    log,
		mode:      ParseFormMode(string(opts.Mode)),
		cacheTTL:  opts.CacheTTL,
	}
}

func (s *service) Mode() FormMode {
	return s.mode
}

// Quota returns the advisory quota, from cache when fresh
func (s *service) Quota(ctx context.Context, code string) (*QuotaResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, backend.ErrInvalidLink
	}

	start := time.Now()
	var remaining int
	var cached bool
	var err error

	if s.cache == nil {
		remaining, err = s.backend.Quota(ctx, code)
	} else {
		cached, err = s.cache.GetOrSet(ctx, constants.QuotaKey(code), s.cacheTTL, func() (interface{}, error) {
			return s.backend.Quota(ctx, code)
		}, &remaining)
	}
	if err != nil {
		s.logger.LogBackendFailure(ctx, "quota", code, err)
		return nil, err
	}

	s.logger.LogQuotaFetched(ctx, code, remaining, cached, time.Since(start))
	return &QuotaResult{Code: code, Remaining: remaining, Open: remaining > 0, Cached: cached}, nil
}

// Register validates the entries, re-checks the live quota and forwards them.
// Every forwarded attempt is published, whatever the outcome.
func (s *service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return nil, backend.ErrInvalidLink
	}

	if err := guests.ValidateEntries(in.Entries, s.mode == ModeRows); err != nil {
		return nil, err
	}
	entries := guests.Clean(in.Entries)

	before, err := s.backend.Quota(ctx, code)
	if err != nil {
		s.logger.LogBackendFailure(ctx, "quota", code, err)
		return nil, err
	}
	if err := guests.CheckQuota(len(entries), before); err != nil {
		return nil, &ExceededError{Count: len(entries), Remaining: before}
	}

	result, err := s.backend.Submit(ctx, backend.SubmitRequest{
		ID:              code,
		Entries:         entries,
		RemainingBefore: before,
	})
	s.invalidateQuota(ctx, code)

	event := notifications.NewSubmissionEvent(code, outcomeOf(result, err), entries)
	event.RemainingBefore = before
	event.Lang = string(in.Lang)
	event.ClientIP = in.ClientIP

	if err != nil {
		event.Message = err.Error()
		s.publish(ctx, event)
		s.logger.LogBackendFailure(ctx, "submit", code, err)
		return nil, &ForwardError{Remaining: before, Err: err}
	}

	remaining := before - len(entries)
	if result.RemainingAfter != nil {
		remaining = *result.RemainingAfter
	}
	if remaining < 0 {
		remaining = 0
	}

	event.Message = result.Message
	event.RemainingAfter = &remaining
	s.publish(ctx, event)
	s.logger.LogSubmission(ctx, code, len(entries), string(event.Outcome), remaining)

	message := result.Message
	if message == "" {
		message = i18n.T(in.Lang, "submitted")
		if result.Verified {
			message = i18n.T(in.Lang, "verified")
		}
	}

	return &RegisterResult{
		Code:      code,
		Count:     len(entries),
		Message:   message,
		Remaining: remaining,
		Open:      remaining > 0,
		Verified:  result.Verified,
	}, nil
}

func outcomeOf(result *backend.SubmitResult, err error) notifications.Outcome {
	var rejected *backend.RejectedError
	switch {
	case err == nil && result.Verified:
		return notifications.OutcomeVerified
	case err == nil:
		return notifications.OutcomeAccepted
	case errors.As(err, &rejected):
		return notifications.OutcomeRejected
	case errors.Is(err, backend.ErrUnverified):
		return notifications.OutcomeUnverified
	default:
		return notifications.OutcomeFailed
	}
}

func (s *service) invalidateQuota(ctx context.Context, code string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, constants.QuotaKey(code)); err != nil {
		s.logger.WithRegistrationCode(code).WithError(err).WarnContext(ctx, "Quota Cache Invalidation Failed")
	}
}

func (s *service) publish(ctx context.Context, event *notifications.SubmissionEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithRegistrationCode(event.RegistrationCode).ErrorWithContext(ctx, "Submission Event Not Published", err, map[string]interface{}{
			"event_id": event.ID.String(),
		})
	}
}

// LoadPage renders the first visit: quota shown, form open or closed
func (s *service) LoadPage(ctx context.Context, code string, lang i18n.Lang) *Page {
	p := s.newPage(code, lang)

	q, err := s.Quota(ctx, code)
	if err != nil {
		p.disable(ErrorText(lang, err))
		return p
	}

	p.setRemaining(q.Remaining)
	p.finalize()
	return p
}

// SubmitPage handles a posted form: row edits or a submission
func (s *service) SubmitPage(ctx context.Context, in FormInput) *Page {
	if s.mode == ModeRows && (in.Action == ActionAddRow || in.Action == ActionRemoveRow) {
		return s.editRows(ctx, in)
	}

	p := s.newPage(in.Code, in.Lang)
	p.Names = in.Names
	p.Rows = append([]guests.Entry(nil), in.Rows...)

	entries := in.Rows
	if s.mode == ModeTextarea {
		entries = guests.FromNames(in.Names)
	}

	res, err := s.Register(ctx, RegisterInput{
		Code:     in.Code,
		Lang:     in.Lang,
		Entries:  entries,
		ClientIP: in.ClientIP,
	})
	if err == nil {
		p.Names = ""
		p.Rows = nil
		p.setRemaining(res.Remaining)
		p.Notice = &Notice{Kind: "success", Text: res.Message}
		p.finalize()
		return p
	}

	var exceeded *ExceededError
	var forward *ForwardError
	var validation guests.ValidationErrors

	switch {
	case errors.As(err, &exceeded):
		p.setRemaining(exceeded.Remaining)
	case errors.As(err, &forward):
		p.setRemaining(forward.Remaining)
	case errors.Is(err, guests.ErrNoEntries), errors.As(err, &validation):
		q, qerr := s.Quota(ctx, in.Code)
		if qerr != nil {
			p.disable(ErrorText(in.Lang, qerr))
			return p
		}
		p.setRemaining(q.Remaining)
		if validation != nil {
			p.RowErrors = rowErrorTexts(in.Lang, validation)
			p.finalize()
			return p
		}
	default:
		// invalid link, or the live quota could not be read
		p.disable(ErrorText(in.Lang, err))
		return p
	}

	p.Notice = &Notice{Kind: "error", Text: ErrorText(in.Lang, err)}
	p.finalize()
	return p
}

func (s *service) editRows(ctx context.Context, in FormInput) *Page {
	p := s.newPage(in.Code, in.Lang)
	p.Rows = append([]guests.Entry(nil), in.Rows...)

	q, err := s.Quota(ctx, in.Code)
	if err != nil {
		p.disable(ErrorText(in.Lang, err))
		return p
	}
	p.setRemaining(q.Remaining)

	if p.Open {
		switch in.Action {
		case ActionAddRow:
			if len(p.Rows) < p.Remaining {
				p.Rows = append(p.Rows, guests.Entry{})
			}
		case ActionRemoveRow:
			if len(p.Rows) > 1 && in.RowIndex >= 0 && in.RowIndex < len(p.Rows) {
				p.Rows = append(p.Rows[:in.RowIndex], p.Rows[in.RowIndex+1:]...)
			}
		}
	}

	p.finalize()
	return p
}

func (s *service) newPage(code string, lang i18n.Lang) *Page {
	return &Page{
		Lang: lang,
		Code: strings.TrimSpace(code),
		Mode: s.mode,
	}
}

// disable blocks submission and shows why
func (p *Page) disable(text string) {
	p.Open = false
	p.Disabled = true
	p.Notice = &Notice{Kind: "error", Text: text}
}

func (p *Page) setRemaining(remaining int) {
	if remaining < 0 {
		remaining = 0
	}
	p.HasRemaining = true
	p.Remaining = remaining

	if remaining == 0 {
		p.Open = false
		p.Closed = true
		p.Names = ""
		p.Rows = nil
		return
	}
	p.Open = true
	p.Closed = false
}

// finalize derives the counters once the rows are settled
func (p *Page) finalize() {
	if !p.Open {
		p.Count = 0
		p.CanAddRow = false
		return
	}

	if p.Mode == ModeRows {
		if len(p.Rows) == 0 {
			p.Rows = []guests.Entry{{}}
		}
		count := 0
		for _, r := range p.Rows {
			if !r.IsBlank() {
				count++
			}
		}
		p.Count = count
		p.CanAddRow = len(p.Rows) < p.Remaining
		return
	}

	p.Count = guests.CountNames(p.Names)
}
