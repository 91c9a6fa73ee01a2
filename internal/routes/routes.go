package routes

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"inmo-backoffice/internal/email"
	"inmo-backoffice/internal/gcal"
	"inmo-backoffice/internal/storage"
)

// Deps carries everything the handlers need. Passed explicitly rather than
// stashed in the gin context so handler wiring stays visible.
type Deps struct {
	Storage  storage.Provider
	Calendar *gcal.Client
	Mailer   *email.Mailer

	// OAuth is nil when Google client credentials are not configured;
	// the Google login routes then answer 503.
	OAuth *oauth2.Config

	BaseURL  string
	TimeZone string
}

func securityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")

	// Disable caching; everything here is per-user data.
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Next()
}

func RegisterRoutes(r *gin.Engine, deps *Deps) {
	r.Use(securityHeaders)
	r.Use(ErrorHandler())

	Health(r.Group("/"))

	AuthRoutes(r.Group("/auth"), deps)

	api := r.Group("/api")
	api.Use(AuthMiddleware())

	ContactRoutes(api.Group("/clientes"), deps)
	PropertyRoutes(api.Group("/propiedades"), deps)
	VisitRoutes(api.Group("/visitas"), deps)
	UserRoutes(api.Group("/users"), deps)
	DashboardRoutes(api.Group("/dashboard"), deps)
}
