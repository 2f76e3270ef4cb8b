package registration

import (
	"errors"
	"net/http"

	"inviteform/internal/backend"
	"inviteform/internal/guests"
	"inviteform/internal/i18n"
)

// ErrorText translates a flow error for the guest
func ErrorText(lang i18n.Lang, err error) string {
	var rejected *backend.RejectedError
	var exceeded *ExceededError

	switch {
	case errors.As(err, &rejected):
		if rejected.Message != "" {
			return rejected.Message
		}
		return i18n.T(lang, "connection_error")
	case errors.As(err, &exceeded):
		return i18n.T(lang, "exceeded", exceeded.Remaining)
	case errors.Is(err, backend.ErrInvalidLink):
		return i18n.T(lang, "invalid_link")
	case errors.Is(err, guests.ErrNoEntries):
		return i18n.T(lang, "empty")
	case errors.Is(err, backend.ErrUnverified):
		return i18n.T(lang, "unverified")
	default:
		return i18n.T(lang, "connection_error")
	}
}

// rowErrorTexts renders one line per rejected row, 1-based
func rowErrorTexts(lang i18n.Lang, errs guests.ValidationErrors) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		switch e.Reason {
		case guests.ReasonMissingName:
			out = append(out, i18n.T(lang, "missing_name", e.Row+1))
		case guests.ReasonInvalidPhone:
			out = append(out, i18n.T(lang, "invalid_phone", e.Row+1))
		}
	}
	return out
}

// statusFor maps a flow error to the JSON API status code
func statusFor(err error) int {
	var rejected *backend.RejectedError
	var validation guests.ValidationErrors

	switch {
	case errors.Is(err, backend.ErrInvalidLink),
		errors.Is(err, guests.ErrNoEntries),
		errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, guests.ErrQuotaExceeded):
		return http.StatusConflict
	case errors.As(err, &rejected):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
