package admin

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"quickedit/internal/engine"
	"quickedit/internal/instrument"
	"quickedit/internal/metadata"
	"quickedit/internal/store"
)

type Handler struct {
	store    *store.Store
	registry *metadata.Registry
	// readOnly is set when definitions come from a file; the file is the
	// source of truth then and writes would be lost on the next reload.
	readOnly bool
}

func NewHandler(s *store.Store, reg *metadata.Registry, readOnly bool) *Handler {
	return &Handler{store: s, registry: reg, readOnly: readOnly}
}

func RegisterAdminRoutes(app *fiber.App, h *Handler) {
	admin := app.Group("/api/_admin")

	admin.Get("/entities", h.ListEntities)
	admin.Get("/entities/:name", h.GetEntity)
	admin.Put("/entities/:name", h.PutEntity)
}

// ListEntities returns every registered entity with its setters.
func (h *Handler) ListEntities(c *fiber.Ctx) error {
	entities := h.registry.AllEntities()
	out := make([]metadata.EntitySummary, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Summary())
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *Handler) GetEntity(c *fiber.Ctx) error {
	name := c.Params("name")
	e := h.registry.GetEntity(name)
	if e == nil {
		return respondError(c, engine.UnknownEntityError(name))
	}
	return c.JSON(fiber.Map{"data": e, "summary": e.Summary()})
}

// PutEntity creates or replaces an entity definition in _entities and
// reloads the registry from the database.
func (h *Handler) PutEntity(c *fiber.Ctx) error {
	if h.readOnly {
		return respondError(c, engine.NewAppError("READ_ONLY", 409,
			"Entity definitions are loaded from a file and can not be changed here."))
	}

	var entity metadata.Entity
	if err := json.Unmarshal(c.Body(), &entity); err != nil {
		return respondError(c, engine.InvalidPayloadError("Invalid JSON body"))
	}
	entity.Name = c.Params("name") // ensure name matches URL

	if err := entity.Prepare(); err != nil {
		return respondError(c, engine.NewAppError("VALIDATION_FAILED", 422, err.Error()))
	}

	ctx := c.UserContext()
	if err := h.store.SaveEntity(ctx, &entity); err != nil {
		return fmt.Errorf("save entity %s: %w", entity.Name, err)
	}
	if err := metadata.Reload(ctx, h.store.DB, h.registry); err != nil {
		return fmt.Errorf("reload registry: %w", err)
	}
	instrument.Logf(ctx, "Entity %s saved (%d setters)", entity.Name, len(entity.Setters))

	return c.JSON(fiber.Map{"data": entity.Summary()})
}

func respondError(c *fiber.Ctx, appErr *engine.AppError) error {
	return c.Status(appErr.Status).JSON(engine.ErrorResponse{Error: appErr})
}
