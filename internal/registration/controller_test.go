package registration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inviteform/internal/backend"
	"inviteform/internal/guests"
	"inviteform/internal/i18n"
	"inviteform/internal/shared/utils/response"
)

func newTestEngine(be *fakeBackend, mode FormMode) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	router := NewRouter(NewController(newTestService(be, nil, mode)))
	router.SetupPageRoutes(engine)
	router.SetupRoutes(engine.Group("/api/v1"))
	return engine
}

func TestShowPage(t *testing.T) {
	engine := newTestEngine(&fakeBackend{remaining: 3}, ModeTextarea)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?id=INV-1&lang=en", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `dir="ltr"`)
	assert.Contains(t, body, i18n.T(i18n.LangEN, "remaining", 3))
	assert.Contains(t, body, `id="guestForm"`)
	// toggle keeps the code and flips the language
	assert.Contains(t, body, "id=INV-1")
	assert.Contains(t, body, "lang=ar")
}

func TestShowPage_DefaultsToArabicAndDisablesWithoutID(t *testing.T) {
	engine := newTestEngine(&fakeBackend{remaining: 3}, ModeTextarea)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `dir="rtl"`)
	assert.Contains(t, body, i18n.T(i18n.LangAR, "invalid_link"))
	assert.NotContains(t, body, `id="guestForm"`)
	assert.NotContains(t, body, `id="submitBtn"`)
}

func TestSubmitPage_Form(t *testing.T) {
	be := &fakeBackend{remaining: 3, message: "done"}
	engine := newTestEngine(be, ModeTextarea)

	form := url.Values{"names": {"Ali\nSara"}, "action": {"submit"}}
	req := httptest.NewRequest(http.MethodPost, "/?id=INV-1&lang=en", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "done")
	assert.Contains(t, w.Body.String(), i18n.T(i18n.LangEN, "remaining", 1))
	assert.Equal(t, "INV-1", be.lastSubmit.ID)
	assert.Len(t, be.lastSubmit.Entries, 2)
}

func TestSubmitPage_RowButtons(t *testing.T) {
	be := &fakeBackend{remaining: 3}
	engine := newTestEngine(be, ModeRows)

	form := url.Values{"id": {"INV-1"}, "name": {"Ali"}, "phone": {"0944123456"}, "action": {"add"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, strings.Count(w.Body.String(), `name="name"`))
	assert.Contains(t, w.Body.String(), `value="remove-1"`)
	assert.Zero(t, be.submitCalls)
}

func TestParseAction(t *testing.T) {
	a, i := parseAction("remove-2")
	assert.Equal(t, ActionRemoveRow, a)
	assert.Equal(t, 2, i)

	a, _ = parseAction("add")
	assert.Equal(t, ActionAddRow, a)

	a, _ = parseAction("remove-x")
	assert.Equal(t, ActionSubmit, a)

	a, _ = parseAction("")
	assert.Equal(t, ActionSubmit, a)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.StandardApiResponse {
	t.Helper()
	var body response.StandardApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAPI_GetQuota(t *testing.T) {
	engine := newTestEngine(&fakeBackend{remaining: 0}, ModeTextarea)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/registrations/INV-1/quota?lang=en", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, i18n.T(i18n.LangEN, "no_more"), decode(t, w).Message)

	engine = newTestEngine(&fakeBackend{quotaErr: &backend.RejectedError{Message: "unknown code"}}, ModeTextarea)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/registrations/NOPE/quota", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "unknown code", decode(t, w).Message)

	engine = newTestEngine(&fakeBackend{quotaErr: backend.ErrConnection}, ModeTextarea)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/registrations/INV-1/quota", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, i18n.T(i18n.LangAR, "connection_error"), decode(t, w).Message)
}

func postGuests(engine *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestAPI_SubmitGuests(t *testing.T) {
	be := &fakeBackend{remaining: 2}
	engine := newTestEngine(be, ModeTextarea)

	w := postGuests(engine, "/api/v1/registrations/INV-1/guests", SubmitGuestsRequest{Lang: "en", Names: "Ali|Sara|Omar"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, i18n.T(i18n.LangEN, "exceeded", 2), decode(t, w).Message)

	w = postGuests(engine, "/api/v1/registrations/INV-1/guests", SubmitGuestsRequest{Lang: "en", Names: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, i18n.T(i18n.LangEN, "empty"), decode(t, w).Message)

	w = postGuests(engine, "/api/v1/registrations/INV-1/guests", SubmitGuestsRequest{Lang: "en", Names: "Ali\nSara"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data SubmitResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 2, created.Data.Count)
	assert.Equal(t, 0, created.Data.Remaining)
	assert.False(t, created.Data.Open)
}

func TestAPI_SubmitGuests_MissingIDAndBadPhone(t *testing.T) {
	be := &fakeBackend{remaining: 5}
	engine := newTestEngine(be, ModeRows)

	w := postGuests(engine, "/api/v1/registrations/%20/guests", SubmitGuestsRequest{Names: "Ali"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, i18n.T(i18n.LangAR, "invalid_link"), decode(t, w).Message)

	w = postGuests(engine, "/api/v1/registrations/INV-1/guests", map[string]interface{}{
		"lang":    "en",
		"entries": []map[string]string{{"name": "Ali", "phone": "abc"}, {"name": "", "phone": "0944123456"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []interface{}{
		i18n.T(i18n.LangEN, "invalid_phone", 1),
		i18n.T(i18n.LangEN, "missing_name", 2),
	}, decode(t, w).Errors)
	assert.Zero(t, be.submitCalls)
}

func TestAPI_SubmitGuests_BlankRowsSkipped(t *testing.T) {
	be := &fakeBackend{remaining: 5}
	engine := newTestEngine(be, ModeRows)

	w := postGuests(engine, "/api/v1/registrations/INV-1/guests", map[string]interface{}{
		"entries": []map[string]string{{"name": "Ali", "phone": "0944123456"}, {"name": "", "phone": ""}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []guests.Entry{{Name: "Ali", Phone: "0944123456"}}, be.lastSubmit.Entries)
}

var submitButton = regexp.MustCompile(`<button[^>]*type="submit"[^>]*value="([^"]+)"`)

func TestSubmitPage_EnterKeySubmits(t *testing.T) {
	engine := newTestEngine(&fakeBackend{remaining: 3}, ModeRows)

	form := url.Values{"id": {"INV-1"}, "name": {"Ali", "Sara"}, "phone": {"0944123456", ""}, "action": {"add"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// the browser's implicit submission uses the first submit button of the form
	buttons := submitButton.FindAllStringSubmatch(w.Body.String(), -1)
	require.NotEmpty(t, buttons)
	assert.Equal(t, "submit", buttons[0][1])
	assert.Contains(t, w.Body.String(), `value="remove-0"`)
}
