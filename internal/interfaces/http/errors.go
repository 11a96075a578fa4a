package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Clinica-api/internal/application/dto"
	"github.com/jhoicas/Clinica-api/internal/domain"
	"github.com/jhoicas/Clinica-api/pkg/logger"
)

// Mensajes fijos: hacia afuera no se distingue la causa.
const (
	msgUnauthenticated = "no autenticado"
	msgNotFound        = "recurso no encontrado"
	msgInternal        = "error interno"
)

// writeError traduce un error de dominio a la respuesta HTTP. Es el único punto donde
// los errores se convierten en códigos de estado.
func writeError(c *fiber.Ctx, err error) error {
	status, body := translate(err)
	if status >= fiber.StatusInternalServerError {
		ev := logger.FromContext(c.UserContext()).Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path())
		if errors.Is(err, domain.ErrInconsistentState) {
			ev = ev.Str("reason", "inconsistent_state")
		}
		ev.Msg("petición abortada")
	}
	return c.Status(status).JSON(body)
}

func translate(err error) (int, dto.ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHENTICATED", Message: msgUnauthenticated}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "INVALID_CREDENTIALS", Message: domain.ErrInvalidCredentials.Error()}
	case errors.Is(err, domain.ErrTooManyAttempts):
		return fiber.StatusTooManyRequests, dto.ErrorResponse{Code: "TOO_MANY_ATTEMPTS", Message: domain.ErrTooManyAttempts.Error()}
	case errors.Is(err, domain.ErrEmailTaken):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "EMAIL_TAKEN", Message: domain.ErrEmailTaken.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: msgNotFound}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: domain.ErrDuplicate.Error()}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: domain.ErrConflict.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: domain.ErrForbidden.Error()}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: msgInternal}
	}
}

// badBody respuesta para JSON mal formado.
func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// ErrorHandler para fiber.Config: errores no manejados por los handlers (404 de ruta,
// panics recuperados, body demasiado grande).
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "HTTP_ERROR"
		switch fe.Code {
		case fiber.StatusNotFound:
			code = "NOT_FOUND"
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case fiber.StatusRequestEntityTooLarge:
			code = "BODY_TOO_LARGE"
		}
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
	}
	return writeError(c, err)
}
