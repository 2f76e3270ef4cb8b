package guests

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// CheckQuota fails when more guests are entered than the quota allows
func CheckQuota(count, remaining int) error {
	if count > remaining {
		return ErrQuotaExceeded
	}
	return nil
}

// FromNames builds entries from textarea input
func FromNames(text string) []Entry {
	names := ParseNames(text)
	entries := make([]Entry, 0, len(names))
	for _, n := range names {
		entries = append(entries, Entry{Name: n})
	}
	return entries
}

// Clean trims names, normalizes phones and drops blank rows
func Clean(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsBlank() {
			continue
		}
		out = append(out, Entry{
			Name:  strings.TrimSpace(e.Name),
			Phone: NormalizePhone(e.Phone),
		})
	}
	return out
}

// ValidateEntries checks every non-blank row. A phone, when given, must be valid even if not required.
// Row indexes refer to the input slice.
func ValidateEntries(entries []Entry, requirePhone bool) error {
	var errs ValidationErrors
	seen := 0
	for i, e := range entries {
		if e.IsBlank() {
			continue
		}
		seen++
		if strings.TrimSpace(e.Name) == "" {
			errs = append(errs, RowError{Row: i, Reason: ReasonMissingName})
			continue
		}
		hasPhone := strings.TrimSpace(e.Phone) != ""
		if (requirePhone || hasPhone) && !ValidPhone(e.Phone) {
			errs = append(errs, RowError{Row: i, Reason: ReasonInvalidPhone})
		}
	}

	if seen == 0 {
		return ErrNoEntries
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RegisterValidations adds the guestphone tag to a validator
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("guestphone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
}

// NewValidator returns a validator with the guest tags registered
func NewValidator() *validator.Validate {
	v := validator.New()
	if err := RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}
