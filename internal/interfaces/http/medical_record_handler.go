package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Clinica-api/internal/application/dto"
	"github.com/jhoicas/Clinica-api/internal/application/usecase"
)

// MedicalRecordHandler maneja historias clínicas.
type MedicalRecordHandler struct {
	uc *usecase.MedicalRecordUseCase
}

// NewMedicalRecordHandler construye el handler de historias clínicas.
func NewMedicalRecordHandler(uc *usecase.MedicalRecordUseCase) *MedicalRecordHandler {
	return &MedicalRecordHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar historia clínica
// @Tags         medical-records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.MedicalRecordRequest  true  "Datos de la historia"
// @Success      201   {object}  dto.MedicalRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/medical-records [post]
func (h *MedicalRecordHandler) Create(c *fiber.Ctx) error {
	var in dto.MedicalRecordRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar historias clínicas
// @Tags         medical-records
// @Produce      json
// @Security     BearerAuth
// @Param        patient_id  query  string  false  "Filtrar por paciente"
// @Param        limit       query  int     false  "Límite"
// @Param        offset      query  int     false  "Offset"
// @Success      200  {object}  dto.MedicalRecordListResponse
// @Router       /api/medical-records [get]
func (h *MedicalRecordHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), c.Query("patient_id"), pageFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener historia clínica
// @Tags         medical-records
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID de la historia"
// @Success      200  {object}  dto.MedicalRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/medical-records/{id} [get]
func (h *MedicalRecordHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar historia clínica
// @Tags         medical-records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                    true  "ID de la historia"
// @Param        body  body  dto.MedicalRecordRequest  true  "Datos de la historia"
// @Success      200   {object}  dto.MedicalRecordResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/medical-records/{id} [put]
func (h *MedicalRecordHandler) Update(c *fiber.Ctx) error {
	var in dto.MedicalRecordRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar historia clínica
// @Tags         medical-records
// @Security     BearerAuth
// @Param        id  path  string  true  "ID de la historia"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/medical-records/{id} [delete]
func (h *MedicalRecordHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
