package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/Clinica-api/pkg/logger"
)

// RequestLogger adjunta al contexto de la petición un sublogger con el request id y
// registra una línea de acceso al terminar. Restaura el contexto original al salir:
// fiber reutiliza los *fiber.Ctx entre peticiones.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		parent := c.UserContext()
		defer c.SetUserContext(parent)

		reqID, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		sub := log.With().Str("request_id", reqID).Logger()
		c.SetUserContext(sub.WithContext(parent))

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		sub.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
		return err
	}
}
