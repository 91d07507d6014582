package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/founder-copilot/internal/entitlement"
	"github.com/iliyamo/founder-copilot/internal/handler"
	"github.com/iliyamo/founder-copilot/internal/logger"
	"github.com/iliyamo/founder-copilot/internal/middleware"
)

// Guards carries the middleware shared by the protected groups.  RateLimit
// and Cache may be nil; they are skipped then.
type Guards struct {
	JWTSecret string
	Profiles  entitlement.ProfileLoader
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
	Log       *logger.Logger
}

func (g Guards) jwt() echo.MiddlewareFunc { return middleware.JWTAuth(g.JWTSecret) }

func (g Guards) access() echo.MiddlewareFunc { return middleware.RequireAccess(g.Profiles, g.Log) }

// llm returns the per-route middleware of model-backed endpoints.
func (g Guards) llm() []echo.MiddlewareFunc {
	if g.RateLimit == nil {
		return nil
	}
	return []echo.MiddlewareFunc{g.RateLimit}
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth registers the token endpoints under /v1/auth and the
// protected /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh) // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout) // bearer or refresh_token, see handler

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterFounder registers the founder workspace.  Reading and recording
// data only needs a session; everything that calls the model also needs an
// active entitlement and is rate limited.
func RegisterFounder(e *echo.Echo, f *handler.FounderHandler, chat *handler.ChatHandler, g Guards) {
	ws := e.Group("/v1", g.jwt())

	// ---- Profile ----
	ws.GET("/profile", f.GetProfile)
	ws.PUT("/profile", f.UpdateProfile)

	// ---- Ideas ----
	ws.POST("/ideas", f.CreateIdea)
	ws.GET("/ideas", f.ListIdeas)
	ws.GET("/ideas/:id", f.GetIdea)
	ws.GET("/ideas/:id/roadmap", f.GetRoadmap)
	ws.PATCH("/roadmap-steps/:id", f.SetStep)

	// ---- Journal ----
	ws.POST("/decisions", f.CreateDecision)
	ws.GET("/decisions", f.ListDecisions)
	ws.POST("/metrics", f.CreateMetric)
	ws.GET("/metrics", f.ListMetrics)
	ws.GET("/reviews", f.ListReviews)
	ws.GET("/chat/messages", chat.History)

	// ---- Co-founder (entitled) ----
	paid := e.Group("/v1", g.jwt(), g.access())
	limited := g.llm()
	paid.POST("/chat/relay", chat.Relay, limited...)
	paid.POST("/chat/messages", chat.Send, limited...)
	paid.POST("/ideas/:id/validate", f.ValidateIdea, limited...)
	paid.POST("/ideas/:id/roadmap", f.GenerateRoadmap, limited...)
	paid.POST("/reviews/weekly", f.GenerateReview, limited...)

	// a cache hit must not cost a token, so the cache runs first
	insights := []echo.MiddlewareFunc{}
	if g.Cache != nil {
		insights = append(insights, g.Cache)
	}
	paid.GET("/insights", f.GetInsights, append(insights, limited...)...)
}

// RegisterBilling registers the checkout handshake and the entitlement read
// model.  None of these require access: they are how access is obtained.
func RegisterBilling(e *echo.Echo, b *handler.BillingHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	g.POST("/billing/orders", b.CreateOrder)
	g.POST("/billing/verify", b.Verify)
	g.GET("/subscription", b.Subscription)
}
