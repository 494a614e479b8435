package instrument

import (
	"github.com/gofiber/fiber/v2"
)

// Middleware returns a Fiber middleware that propagates or generates a trace
// ID, stores it in the request's user context and echoes it in the response.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := c.Get(TraceHeader)
		if traceID == "" {
			traceID = newUUID()
		}

		c.SetUserContext(WithTraceID(c.UserContext(), traceID))
		c.Set(TraceHeader, traceID)

		return c.Next()
	}
}
