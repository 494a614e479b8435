package app

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"quickedit/internal/admin"
	"quickedit/internal/engine"
	"quickedit/internal/instrument"
)

// NewServer builds the Fiber app with middleware and every route mounted.
func NewServer(a *App) *fiber.App {
	server := fiber.New(fiber.Config{
		ErrorHandler: engine.ErrorHandler,
	})
	server.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	server.Use(instrument.Middleware())
	server.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency} ${respHeader:" + instrument.TraceHeader + "}\n",
	}))

	server.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	adminHandler := admin.NewHandler(a.Store, a.Registry, a.Config.Metadata.Source == "file")
	admin.RegisterAdminRoutes(server, adminHandler)

	quickEdit := engine.NewQuickEditHandler(a.Editor, a.Flashes)
	engine.RegisterQuickEditRoutes(server, a.Config.QuickEdit.Path, quickEdit)

	return server
}
