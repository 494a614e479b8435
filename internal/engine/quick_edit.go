package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cast"

	"quickedit/internal/flash"
	"quickedit/internal/instrument"
)

// FlashKeyHeader identifies the caller whose notices should be kept for a
// later GET of the flash endpoint.
const FlashKeyHeader = "X-Flash-Key"

var (
	requiredFields = []string{"entity", "property", "id", "value"}
	editFields     = []string{"entity", "property", "id", "value", "type"}
)

type QuickEditHandler struct {
	editor  *Editor
	flashes flash.Store
}

// NewQuickEditHandler builds the handler. flashes may be nil, in which case
// notices are only returned inline.
func NewQuickEditHandler(editor *Editor, flashes flash.Store) *QuickEditHandler {
	return &QuickEditHandler{editor: editor, flashes: flashes}
}

// Edit handles POST /api/quick-edit
func (h *QuickEditHandler) Edit(c *fiber.Ctx) error {
	fields, payloadErr := readEditFields(c)
	if payloadErr != nil {
		return respondError(c, payloadErr)
	}

	req := EditRequest{
		Entity:   fields["entity"],
		Property: fields["property"],
		ID:       fields["id"],
		Value:    fields["value"],
		Type:     ParseValueType(fields["type"]),
	}

	ctx := c.UserContext()
	result, err := h.editor.Edit(ctx, req)
	if err != nil {
		var appErr *AppError
		if errors.As(err, &appErr) {
			instrument.Logf(ctx, "WARN: quick edit %s/%s.%s: %s", req.Entity, req.ID, req.Property, appErr.Message)
			return respondError(c, appErr)
		}
		return fmt.Errorf("quick edit %s/%s: %w", req.Entity, req.ID, err)
	}

	var bag flash.Bag
	bag.Add(result.Message, flash.TypeSuccess)

	if key := c.Get(FlashKeyHeader); key != "" && h.flashes != nil {
		if err := h.flashes.Push(ctx, key, bag.Messages()...); err != nil {
			instrument.Logf(ctx, "WARN: failed to persist flash messages: %v", err)
		}
	}

	return c.JSON(fiber.Map{
		"data":           fiber.Map{"status": "ok"},
		"message":        result.Message,
		"flash_messages": bag.Messages(),
	})
}

// Flash handles GET /api/quick-edit/flash
func (h *QuickEditHandler) Flash(c *fiber.Ctx) error {
	key := c.Get(FlashKeyHeader)
	if key == "" {
		return respondError(c, InvalidPayloadError(FlashKeyHeader+" header is required"))
	}
	if h.flashes == nil {
		return c.JSON(fiber.Map{"data": []flash.Message{}})
	}

	msgs, err := h.flashes.Pop(c.UserContext(), key)
	if err != nil {
		return fmt.Errorf("pop flash messages: %w", err)
	}
	return c.JSON(fiber.Map{"data": msgs})
}

// readEditFields collects the request fields from a JSON body, a form body
// or the query string, in that order of precedence. Scalars are stringified
// so an id of 10 and "10" behave the same.
func readEditFields(c *fiber.Ctx) (map[string]string, *AppError) {
	fields := make(map[string]string, len(requiredFields)+1)

	if c.Is("json") && len(c.Body()) > 0 {
		var body map[string]any
		dec := json.NewDecoder(bytes.NewReader(c.Body()))
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			return nil, InvalidPayloadError("Invalid JSON body")
		}
		for _, key := range editFields {
			raw := body[key]
			if raw == nil {
				continue
			}
			if n, ok := raw.(json.Number); ok {
				fields[key] = n.String()
				continue
			}
			s, err := cast.ToStringE(raw)
			if err != nil {
				return nil, InvalidPayloadError(fmt.Sprintf("Field %q must be a scalar value", key))
			}
			fields[key] = s
		}
	}

	post := c.Request().PostArgs()
	query := c.Context().QueryArgs()
	for _, key := range editFields {
		if _, ok := fields[key]; ok {
			continue
		}
		switch {
		case post.Has(key):
			fields[key] = string(post.Peek(key))
		case query.Has(key):
			fields[key] = string(query.Peek(key))
		}
	}

	for _, key := range requiredFields {
		if _, ok := fields[key]; !ok {
			return nil, InvalidPayloadError(fmt.Sprintf("Missing required field %q", key))
		}
	}
	return fields, nil
}

func respondError(c *fiber.Ctx, appErr *AppError) error {
	return c.Status(appErr.Status).JSON(ErrorResponse{Error: appErr})
}

// ErrorHandler renders AppErrors with their own status and everything else
// as INTERNAL_ERROR.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return respondError(c, appErr)
	}

	log.Printf("ERROR: %v", err)
	return c.Status(code).JSON(ErrorResponse{
		Error: &AppError{
			Code:    "INTERNAL_ERROR",
			Message: "Internal server error",
		},
	})
}
