package routes

import (
	"github.com/gofiber/fiber/v2"

	"facturation-backend/controllers"
	"facturation-backend/middlewares"
)

// Controllers bundles everything Register needs to wire the API.
type Controllers struct {
	Auth      *controllers.AuthController
	Documents *controllers.DocumentController
	Clients   *controllers.ClientController
	Profiles  *controllers.ProfileController
	AI        *controllers.AIController
}

// Register wires all HTTP routes.
func Register(app *fiber.App, ctrl Controllers) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/login", ctrl.Auth.Login)
	api.Post("/logout", ctrl.Auth.Logout)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Documents
	protected.Get("/documents", ctrl.Documents.List)
	protected.Post("/documents/new", ctrl.Documents.NewDraft)
	protected.Post("/documents/import", ctrl.Documents.Import)
	protected.Get("/documents/:id", ctrl.Documents.Get)
	protected.Post("/documents", ctrl.Documents.Upsert)
	protected.Delete("/documents", ctrl.Documents.Delete)
	protected.Get("/documents/:id/pdf", ctrl.Documents.DownloadPDF)

	// Clients
	protected.Get("/clients", ctrl.Clients.List)
	protected.Post("/clients", ctrl.Clients.Upsert)
	protected.Delete("/clients/:id", ctrl.Clients.Delete)

	// Issuer profiles
	protected.Get("/profiles", ctrl.Profiles.List)
	protected.Post("/profiles/new", ctrl.Profiles.Add)
	protected.Post("/profiles", ctrl.Profiles.Upsert)
	protected.Put("/profiles/:id/default", ctrl.Profiles.SetDefault)
	protected.Delete("/profiles/:id", ctrl.Profiles.Delete)

	// Writing assistant
	protected.Post("/ai/improve-description", ctrl.AI.ImproveDescription)
	protected.Post("/ai/closing-note", ctrl.AI.GenerateClosingNote)

	// Dashboard
	protected.Get("/stats", ctrl.Documents.Stats)
}
