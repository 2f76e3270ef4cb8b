package submissions

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inviteform/internal/guests"
	"inviteform/internal/notifications"
	"inviteform/internal/shared/config"
	"inviteform/pkg/logger"
)

type fakeRepo struct {
	rows map[uuid.UUID]Submission
	err  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[uuid.UUID]Submission{}}
}

func (r *fakeRepo) Create(ctx context.Context, s *Submission) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.rows[s.ID]; !ok {
		r.rows[s.ID] = *s
	}
	return nil
}

func (r *fakeRepo) sorted(code string) []Submission {
	var out []Submission
	for _, s := range r.rows {
		if code == "" || s.RegistrationCode == code {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out
}

func (r *fakeRepo) List(ctx context.Context, q ListQuery) ([]Submission, int64, error) {
	if r.err != nil {
		return nil, 0, r.err
	}
	all := r.sorted(q.RegistrationCode)
	start := (q.Page - 1) * q.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *fakeRepo) ListForExport(ctx context.Context, code string) ([]Submission, error) {
	return r.sorted(code), r.err
}

type fakeUploader struct {
	key  string
	body []byte
}

func (u *fakeUploader) Upload(ctx context.Context, key string, body []byte) (string, error) {
	u.key, u.body = key, body
	return "s3://bucket/" + key, nil
}

func quietLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, "error")
}

func event(code string, outcome notifications.Outcome, at time.Time, names ...string) *notifications.SubmissionEvent {
	entries := make([]guests.Entry, 0, len(names))
	for _, n := range names {
		entries = append(entries, guests.Entry{Name: n})
	}
	e := notifications.NewSubmissionEvent(code, outcome, entries)
	e.OccurredAt = at
	e.RemainingBefore = 5
	return e
}

func TestHandleSubmissionEvent_RecordsOnce(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, "submissions", quietLogger())

	e := event("INV-1", notifications.OutcomeAccepted, time.Now(), "Ali", "Sara")
	require.NoError(t, svc.HandleSubmissionEvent(context.Background(), e))
	require.NoError(t, svc.HandleSubmissionEvent(context.Background(), e))

	require.Len(t, repo.rows, 1)
	row := repo.rows[e.ID]
	assert.Equal(t, 2, row.GuestCount)
	assert.Equal(t, "INV-1", row.RegistrationCode)
}

func TestHandleSubmissionEvent_Invalid(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, "", quietLogger())

	assert.ErrorIs(t, svc.HandleSubmissionEvent(context.Background(), nil), ErrInvalidEvent)
	assert.ErrorIs(t, svc.HandleSubmissionEvent(context.Background(),
		event("", notifications.OutcomeAccepted, time.Now(), "Ali")), ErrInvalidEvent)
	assert.ErrorIs(t, svc.HandleSubmissionEvent(context.Background(),
		event("INV", notifications.Outcome("LOST"), time.Now(), "Ali")), ErrInvalidEvent)
}

func TestHandleSubmissionEvent_RepoError(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("connection refused")
	svc := NewService(repo, nil, "", quietLogger())

	err := svc.HandleSubmissionEvent(context.Background(), event("INV", notifications.OutcomeFailed, time.Now(), "Ali"))
	assert.ErrorIs(t, err, repo.err)
}

func TestList_Paginates(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, "", quietLogger())
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, svc.HandleSubmissionEvent(context.Background(),
			event("INV-1", notifications.OutcomeAccepted, base.Add(time.Duration(i)*time.Minute), "Guest")))
	}

	resp, err := svc.List(context.Background(), ListQuery{RegistrationCode: "INV-1", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Submissions, 2)
	assert.Equal(t, 1, resp.Pagination.Page)
	assert.Equal(t, int64(5), resp.Pagination.Total)
	assert.Equal(t, 3, resp.Pagination.TotalPages)

	empty, err := svc.List(context.Background(), ListQuery{RegistrationCode: "NOPE"})
	require.NoError(t, err)
	assert.NotNil(t, empty.Submissions)
	assert.Equal(t, 20, empty.Pagination.Limit)
}

func TestExport(t *testing.T) {
	repo := newFakeRepo()
	up := &fakeUploader{}
	svc := NewService(repo, up, "submissions", quietLogger()).(*service)
	svc.now = func() time.Time { return time.Date(2026, 5, 2, 8, 30, 0, 0, time.UTC) }

	_, err := svc.Export(context.Background(), ExportRequest{RegistrationCode: "INV-1"})
	assert.ErrorIs(t, err, ErrNothingToExport)

	e := event("INV-1", notifications.OutcomeVerified, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC), "Ali", "Sara")
	after := 3
	e.RemainingAfter = &after
	require.NoError(t, svc.HandleSubmissionEvent(context.Background(), e))

	res, err := svc.Export(context.Background(), ExportRequest{RegistrationCode: "INV-1"})
	require.NoError(t, err)
	assert.Equal(t, "submissions/INV-1-20260502T083000Z.csv", res.Key)
	assert.Equal(t, "s3://bucket/"+res.Key, res.Location)
	assert.Equal(t, 1, res.Rows)

	records, err := csv.NewReader(bytes.NewReader(up.body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "VERIFIED", records[1][2])
	assert.Equal(t, "Ali | Sara", records[1][4])
	assert.Equal(t, "3", records[1][7])
}

func TestExport_Disabled(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, "", quietLogger())
	_, err := svc.Export(context.Background(), ExportRequest{})
	assert.ErrorIs(t, err, ErrExportDisabled)
}

func TestExportKey(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "exports/all-20260102T030405Z.csv", ExportKey("exports", "", at))
	assert.Equal(t, "X-1-20260102T030405Z.csv", ExportKey("", "X-1", at))
}

func TestEntryList_ScanValue(t *testing.T) {
	in := EntryList{{Name: "Ali", Phone: "+963944123456"}}
	v, err := in.Value()
	require.NoError(t, err)

	var out EntryList
	require.NoError(t, out.Scan([]byte(v.(string))))
	assert.Equal(t, in, out)

	require.NoError(t, out.Scan(nil))
	assert.Nil(t, out)
	assert.Error(t, out.Scan(42))
}

func adminToken(t *testing.T, secret, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"type": "access", "role": role, "email": "host@example.com",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestRoutes_AdminOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "k"}}
	repo := newFakeRepo()
	svc := NewService(repo, nil, "", quietLogger())
	require.NoError(t, svc.HandleSubmissionEvent(context.Background(),
		event("INV-9", notifications.OutcomeRejected, time.Now(), "Ali")))

	engine := gin.New()
	NewRouter(NewController(svc), cfg).SetupRoutes(engine.Group("/api/v1"))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/submissions", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/submissions?id=INV-9", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, "k", "ADMIN"))
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data ListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data.Submissions, 1)
	assert.Equal(t, notifications.OutcomeRejected, body.Data.Submissions[0].Outcome)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/submissions?limit=500", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, "k", "ADMIN"))
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/submissions/export", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, "k", "ADMIN"))
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
