package registration

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"inviteform/internal/backend"
	"inviteform/internal/guests"
	"inviteform/internal/i18n"
	"inviteform/internal/shared/utils/response"
)

const pageTemplate = "form.html"

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: guests.NewValidator(),
	}
}

// ShowPage renders the registration page for ?id=&lang=
func (c *Controller) ShowPage(ctx *gin.Context) {
	lang := i18n.ParseLang(ctx.Query("lang"))
	page := c.service.LoadPage(ctx.Request.Context(), ctx.Query("id"), lang)
	c.render(ctx, page)
}

// SubmitPage handles the posted form, including row add/remove buttons
func (c *Controller) SubmitPage(ctx *gin.Context) {
	code := ctx.Query("id")
	if code == "" {
		code = ctx.PostForm("id")
	}
	lang := i18n.ParseLang(ctx.Query("lang"))
	if ctx.Query("lang") == "" {
		lang = i18n.ParseLang(ctx.PostForm("lang"))
	}

	action, index := parseAction(ctx.PostForm("action"))

	page := c.service.SubmitPage(ctx.Request.Context(), FormInput{
		Code:     code,
		Lang:     lang,
		Action:   action,
		RowIndex: index,
		Names:    ctx.PostForm("names"),
		Rows:     formRows(ctx.PostFormArray("name"), ctx.PostFormArray("phone")),
		ClientIP: ctx.ClientIP(),
	})
	c.render(ctx, page)
}

func (c *Controller) render(ctx *gin.Context, page *Page) {
	query := ctx.Request.URL.Query()
	if page.Code != "" {
		query.Set("id", page.Code)
	}
	page.ToggleURL = i18n.ToggleURL(ctx.Request.URL.Path, query, page.Lang)
	ctx.HTML(http.StatusOK, pageTemplate, page)
}

// parseAction splits "remove-3" into the action and the row index
func parseAction(v string) (string, int) {
	if rest, ok := strings.CutPrefix(v, ActionRemoveRow+"-"); ok {
		i, err := strconv.Atoi(rest)
		if err != nil {
			return ActionSubmit, -1
		}
		return ActionRemoveRow, i
	}
	if v == ActionAddRow {
		return ActionAddRow, -1
	}
	return ActionSubmit, -1
}

func formRows(names, phones []string) []guests.Entry {
	rows := make([]guests.Entry, 0, len(names))
	for i, n := range names {
		e := guests.Entry{Name: n}
		if i < len(phones) {
			e.Phone = phones[i]
		}
		rows = append(rows, e)
	}
	return rows
}

// GetQuota godoc
// @Summary Remaining invitations for a registration code
// @Tags registrations
// @Produce json
// @Param id path string true "registration code"
// @Param lang query string false "ar or en"
// @Success 200 {object} response.StandardApiResponse
// @Failure 422 {object} response.StandardApiResponse
// @Failure 502 {object} response.StandardApiResponse
// @Router /registrations/{id}/quota [get]
func (c *Controller) GetQuota(ctx *gin.Context) {
	lang := i18n.ParseLang(ctx.Query("lang"))

	q, err := c.service.Quota(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, statusFor(err), ErrorText(lang, err), nil)
		return
	}

	text := i18n.T(lang, "remaining", q.Remaining)
	if !q.Open {
		text = i18n.T(lang, "no_more")
	}
	response.RespondSuccess(ctx, http.StatusOK, text, QuotaResponse{QuotaResult: *q, Text: text})
}

// SubmitGuests godoc
// @Summary Register guests for a registration code
// @Tags registrations
// @Accept json
// @Produce json
// @Param id path string true "registration code"
// @Param body body SubmitGuestsRequest true "guests"
// @Success 201 {object} response.StandardApiResponse
// @Failure 400 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Failure 422 {object} response.StandardApiResponse
// @Router /registrations/{id}/guests [post]
func (c *Controller) SubmitGuests(ctx *gin.Context) {
	var req SubmitGuestsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	lang := i18n.ParseLang(req.Lang)
	if req.Lang == "" {
		lang = i18n.ParseLang(ctx.Query("lang"))
	}

	code := strings.TrimSpace(ctx.Param("id"))
	if code == "" {
		response.RespondError(ctx, http.StatusBadRequest, ErrorText(lang, backend.ErrInvalidLink), nil)
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondError(ctx, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	entries := req.Entries
	if len(entries) == 0 {
		entries = guests.FromNames(req.Names)
	}

	res, err := c.service.Register(ctx.Request.Context(), RegisterInput{
		Code:     code,
		Lang:     lang,
		Entries:  entries,
		ClientIP: ctx.ClientIP(),
	})
	if err != nil {
		var validation guests.ValidationErrors
		if errors.As(err, &validation) {
			response.RespondError(ctx, http.StatusBadRequest, "Validation failed", rowErrorTexts(lang, validation))
			return
		}
		response.RespondError(ctx, statusFor(err), ErrorText(lang, err), nil)
		return
	}

	text := res.Message
	if !res.Open {
		text = res.Message + " " + i18n.T(lang, "no_more")
	}
	response.RespondSuccess(ctx, http.StatusCreated, res.Message, SubmitResponse{RegisterResult: *res, Text: text})
}
