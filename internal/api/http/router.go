package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civictrack/internal/api/http/handlers"
	"github.com/spec-kit/civictrack/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Tickets *handlers.TicketsHandler
	Admin   *handlers.AdminHandler
	Guard   *auth.SessionAuth
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.Auth.Me)

	tickets := app.Group("/tickets")
	tickets.Get("/", cfg.Tickets.List)
	// create resolves the session itself so the anonymous flag can bypass it
	tickets.Post("/create", cfg.Tickets.Create)
	tickets.Put("/update/:id", cfg.Guard.Handle, cfg.Tickets.Update)
	tickets.Put("/set-status/:id", cfg.Guard.Handle, cfg.Tickets.SetStatus)
	tickets.Put("/set-location/:id", cfg.Guard.Handle, cfg.Tickets.SetLocation)
	tickets.Delete("/delete/:id", cfg.Guard.Handle, cfg.Tickets.Delete)
	tickets.Post("/:id/report", cfg.Tickets.Report)
	tickets.Get("/:id", cfg.Tickets.Get)

	admin := app.Group("/admin", cfg.Guard.Handle, auth.RequireAdmin())
	admin.Get("/reported-tickets", cfg.Admin.ReportedTickets)
	admin.Get("/clear-reports/:id", cfg.Admin.ClearReports)
	admin.Get("/ban-user/:email", cfg.Admin.BanUser)
	admin.Get("/unban-user/:email", cfg.Admin.UnbanUser)
	admin.Get("/banned-users", cfg.Admin.BannedUsers)
}
