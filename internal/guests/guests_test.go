package guests

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidPhone(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"+963944123456", true},
		{"0944123456", true},
		{"٠٩٤٤١٢٣٤٥٦", true},
		{"۰۹۴۴ ۱۲۳ ۴۵۶", true},
		{"+963 (944) 123-456", true},
		{"12345", false},
		{"abc", false},
		{"", false},
		{"1234567890123456", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPhone(tt.in))
		})
	}
}

func TestNormalizeDigits(t *testing.T) {
	assert.Equal(t, "0123", NormalizeDigits("٠١٢٣"))
	assert.Equal(t, "456789", NormalizeDigits("۴۵۶۷۸۹"))
	assert.Equal(t, "Ali 7", NormalizeDigits("Ali ٧"))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "0123", NormalizePhone("٠١٢٣"))
	assert.Equal(t, "+963944123456", NormalizePhone("  +963 944-123-456"))
	assert.Equal(t, "963944", NormalizePhone("963+944"))
	assert.Equal(t, "", NormalizePhone("abc"))
}

func TestParseNames(t *testing.T) {
	names := ParseNames(" Ali \n\nSara|  Omar  |\n")
	assert.Equal(t, []string{"Ali", "Sara", "Omar"}, names)
	assert.Equal(t, 0, CountNames("  \n | "))
	assert.Equal(t, 3, CountNames("a|b\nc"))
}

func TestCheckQuota_Boundary(t *testing.T) {
	remaining := 3
	assert.NoError(t, CheckQuota(remaining, remaining))
	assert.ErrorIs(t, CheckQuota(remaining+1, remaining), ErrQuotaExceeded)
	assert.ErrorIs(t, CheckQuota(1, 0), ErrQuotaExceeded)
}

func TestValidateEntries(t *testing.T) {
	t.Run("blank rows are ignored", func(t *testing.T) {
		err := ValidateEntries([]Entry{{Name: "Ali", Phone: "0944123456"}, {}}, true)
		assert.NoError(t, err)
	})

	t.Run("only blank rows", func(t *testing.T) {
		assert.ErrorIs(t, ValidateEntries([]Entry{{}, {Name: " "}}, false), ErrNoEntries)
	})

	t.Run("row errors keep input indexes", func(t *testing.T) {
		err := ValidateEntries([]Entry{
			{Name: "Ali", Phone: "0944123456"},
			{},
			{Name: "", Phone: "0944123456"},
			{Name: "Sara", Phone: "12345"},
		}, true)

		var verrs ValidationErrors
		require.True(t, errors.As(err, &verrs))
		assert.Equal(t, ValidationErrors{
			{Row: 2, Reason: ReasonMissingName},
			{Row: 3, Reason: ReasonInvalidPhone},
		}, verrs)
		assert.Contains(t, err.Error(), "row 4: invalid_phone")
	})

	t.Run("phones optional in names mode", func(t *testing.T) {
		assert.NoError(t, ValidateEntries([]Entry{{Name: "Ali"}}, false))
	})

	t.Run("optional phone still validated when given", func(t *testing.T) {
		err := ValidateEntries([]Entry{{Name: "Ali", Phone: "abc"}}, false)
		assert.Equal(t, ValidationErrors{{Row: 0, Reason: ReasonInvalidPhone}}, err)
	})
}

func TestClean(t *testing.T) {
	out := Clean([]Entry{{Name: " Ali ", Phone: "٠٩٤٤١٢٣٤٥٦"}, {}, {Name: "Sara"}})
	assert.Equal(t, []Entry{{Name: "Ali", Phone: "0944123456"}, {Name: "Sara"}}, out)
}

func TestGuestPhoneTag(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Struct(Entry{Name: "Ali", Phone: "+963944123456"}))
	assert.NoError(t, v.Struct(Entry{Name: "Ali"}))
	assert.Error(t, v.Struct(Entry{Name: "Ali", Phone: "abc"}))
	assert.Error(t, v.Struct(Entry{Phone: "0944123456"}))
}
