package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, getLogLevel(in), "level %q", in)
	}
}

func TestLogSubmission_JSONInReleaseMode(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info")
	l.LogSubmission(context.Background(), "abc", 3, "success", 2)

	out := buf.String()
	assert.Contains(t, out, `"msg":"Guests Submitted"`)
	assert.Contains(t, out, `"registration_code":"abc"`)
	assert.Contains(t, out, `"remaining_after":2`)
}

func TestLogQuotaFetched_FilteredAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")
	l.LogQuotaFetched(context.Background(), "abc", 4, true, time.Millisecond)
	assert.Empty(t, buf.String())

	l.LogBackendFailure(context.Background(), "quota", "abc", errors.New("boom"))
	assert.Contains(t, buf.String(), "boom")
}
