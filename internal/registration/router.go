package registration

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"

	"inviteform/internal/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates
func Templates() *template.Template {
	funcs := template.FuncMap{
		"t": func(lang i18n.Lang, key string, args ...interface{}) string {
			return i18n.T(lang, key, args...)
		},
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// Router handles the guest page and the registration API
type Router struct {
	controller *Controller
}

func NewRouter(controller *Controller) *Router {
	return &Router{controller: controller}
}

// SetupPageRoutes serves the HTML form at the site root
func (r *Router) SetupPageRoutes(engine *gin.Engine) {
	engine.SetHTMLTemplate(Templates())
	engine.GET("/", r.controller.ShowPage)
	engine.POST("/", r.controller.SubmitPage)
}

// SetupRoutes registers the JSON API
func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	registrations := rg.Group("/registrations")
	{
		registrations.GET("/:id/quota", r.controller.GetQuota)
		registrations.POST("/:id/guests", r.controller.SubmitGuests)
	}
}
