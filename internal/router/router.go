// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/licensedesk/revenue-api/internal/config"
	"github.com/licensedesk/revenue-api/internal/handler"
	"github.com/licensedesk/revenue-api/internal/middleware"
	"github.com/licensedesk/revenue-api/internal/model"

	"github.com/redis/go-redis/v9"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	Client   *handler.ClientHandler
	Software *handler.SoftwareHandler
	Contract *handler.ContractHandler
	Revenue  *handler.RevenueHandler
	Discount *handler.DiscountHandler
}

// Register mounts all application routes on the Echo instance. The health
// check and login stay outside the gate; everything under /api runs
// through Basic auth, the rate limiter and the role guard. Admin-only
// routes additionally require the admin role.
func Register(e *echo.Echo, h Handlers, creds middleware.CredentialStore, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	// Health check for load balancers and monitoring; never authenticated.
	e.GET("/healthz", handler.Health)

	// Login is explicitly anonymous: it exists so clients can check
	// credentials before using them on protected routes.
	e.POST("/api/auth/login", h.Auth.Login)

	// BasicAuth runs first so the rate limiter can key by login rather
	// than IP.
	api := e.Group("/api")
	api.Use(middleware.BasicAuth(creds))
	api.Use(middleware.RateLimit(rlCfg, rdb))
	api.Use(middleware.RequireRole(model.RoleStandard, model.RoleAdmin))

	api.GET("/auth/validate/:login", h.Auth.Validate)

	api.GET("/clients", h.Client.List)
	api.GET("/clients/:id", h.Client.Get)
	api.POST("/clients/individual", h.Client.CreateIndividual)
	api.POST("/clients/company", h.Client.CreateCompany)

	api.GET("/software", h.Software.List)
	api.GET("/software/:id", h.Software.Get)

	api.POST("/contracts", h.Contract.Create)
	api.GET("/contracts/:id", h.Contract.Get)
	api.GET("/contracts/client/:clientId", h.Contract.ListByClient)
	api.POST("/contracts/:id/payments", h.Contract.RecordPayment)
	api.POST("/contracts/cancel-expired", h.Contract.CancelExpired)

	api.GET("/revenue/current", h.Revenue.Current)
	api.GET("/revenue/predicted", h.Revenue.Predicted)
	api.POST("/revenue/calculate", h.Revenue.Calculate)

	api.GET("/discounts", h.Discount.List)

	// Mutating client records and creating discounts is restricted to
	// admins.
	admin := api.Group("", middleware.RequireRole(model.RoleAdmin))
	admin.PUT("/clients/:id/individual", h.Client.UpdateIndividual)
	admin.PUT("/clients/:id/company", h.Client.UpdateCompany)
	admin.DELETE("/clients/:id", h.Client.Delete)
	admin.POST("/discounts", h.Discount.Create)
}
