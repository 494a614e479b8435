package engine

import "github.com/gofiber/fiber/v2"

// RegisterQuickEditRoutes mounts the edit endpoint at path and the flash
// drain endpoint below it.
func RegisterQuickEditRoutes(app *fiber.App, path string, h *QuickEditHandler) {
	if path == "" {
		path = "/api/quick-edit"
	}
	app.Post(path, h.Edit)
	app.Get(path+"/flash", h.Flash)
}
