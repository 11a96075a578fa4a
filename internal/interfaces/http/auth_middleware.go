package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Clinica-api/internal/application/authctx"
	"github.com/jhoicas/Clinica-api/internal/application/dto"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/internal/domain/entity"
	"github.com/jhoicas/Clinica-api/pkg/jwt"
	"github.com/jhoicas/Clinica-api/pkg/logger"
)

// TokenParser valida un token (implementación: pkg/jwt.Service).
type TokenParser interface {
	Parse(token string) (*jwt.Claims, error)
}

// AuthMiddleware valida el Bearer Token y establece la identidad en el ámbito de la
// petición. Todo rechazo responde el mismo 401; el motivo concreto solo va al log.
// El ámbito se libera y el contexto se restaura en todo camino de salida.
func AuthMiddleware(tokens TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parent := c.UserContext()
		defer c.SetUserContext(parent)
		log := logger.FromContext(parent)

		ctx := parent
		if !authctx.Active(parent) {
			scoped, release := authctx.Begin(parent)
			defer release()
			ctx = scoped
		}

		claims, err := tokens.Parse(bearerToken(c.Get(fiber.HeaderAuthorization)))
		if err != nil {
			log.Info().Str("reason", jwt.Reason(err)).Str("path", c.Path()).Msg("token rechazado")
			return unauthenticated(c)
		}

		identity := authctx.Identity{Email: entity.NormalizeEmail(claims.Subject)}
		if err := authctx.Establish(ctx, identity); err != nil {
			log.Error().Err(err).Str("reason", "context_reestablished").Msg("identidad establecida dos veces")
			return writeError(c, err)
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// bearerToken extrae el token de "Bearer <token>"; cualquier otro formato da "".
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Code:    "UNAUTHENTICATED",
		Message: domain.ErrUnauthenticated.Error(),
	})
}
