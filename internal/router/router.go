package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/jagatstore/jagat-backend/internal/config"
	"github.com/jagatstore/jagat-backend/internal/handler"
	"github.com/jagatstore/jagat-backend/internal/middleware"
)

// API groups the handlers the router wires up.
type API struct {
	Auth       *handler.AuthHandler
	Payments   *handler.PaymentHandler
	Visitors   *handler.VisitorHandler
	Engagement *handler.EngagementHandler
}

// Register maps every endpoint onto the Echo instance.  limiter guards the
// credential endpoints only; everything under the authenticated group runs
// the JWT middleware first.
func Register(e *echo.Echo, api API, cfg config.Config, limiter echo.MiddlewareFunc) {
	e.GET("/api/health", handler.Health)

	// Public endpoints.
	e.POST("/api/register", api.Auth.Register, limiter)
	e.POST("/api/login", api.Auth.Login, limiter)
	e.GET("/api/visitor-count", api.Visitors.Count)
	e.POST("/api/newsletter", api.Engagement.Subscribe)
	e.POST("/api/contact", api.Engagement.Contact)

	// Endpoints that require a valid bearer token.
	auth := e.Group("/api", middleware.JWTAuth(cfg.JWTSecret))
	auth.POST("/logout", api.Auth.Logout)
	auth.GET("/profile", api.Auth.Profile)
	auth.POST("/payment", api.Payments.Create)
	auth.GET("/payments", api.Payments.List)
	auth.GET("/receipt/:id", api.Payments.Receipt)
	auth.GET("/export", api.Payments.Export)
	auth.GET("/visitors", api.Visitors.Stats)
}
