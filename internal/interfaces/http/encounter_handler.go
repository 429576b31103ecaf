package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hospital-api/internal/application/clinical"
	"github.com/jhoicas/hospital-api/internal/application/dto"
)

// EncounterHandler encuentros clínicos (pasien ditangani).
type EncounterHandler struct {
	uc *clinical.EncounterUseCase
}

// NewEncounterHandler construye el handler.
func NewEncounterHandler(uc *clinical.EncounterUseCase) *EncounterHandler {
	return &EncounterHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar encuentro
// @Description  Deriva y escribe el status del paciente en la misma transacción.
// @Tags         encounters
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateEncounterRequest  true  "Encuentro"
// @Success      201   {object}  dto.EncounterResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/encounters [post]
func (h *EncounterHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateEncounterRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener encuentro
// @Tags         encounters
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del encuentro"
// @Success      200  {object}  dto.EncounterResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/encounters/{id} [get]
func (h *EncounterHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar encuentro
// @Tags         encounters
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del encuentro"
// @Param        body  body  dto.UpdateEncounterRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.EncounterResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/encounters/{id} [put]
func (h *EncounterHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateEncounterRequest
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
// @Summary      Eliminar encuentro
// @Description  El status del paciente se recalcula desde el encuentro más reciente que quede.
// @Tags         encounters
// @Security     Bearer
// @Param        id   path  string  true  "ID del encuentro"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/encounters/{id} [delete]
func (h *EncounterHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListByPatient godoc
// @Summary      Historial de encuentros de un paciente
// @Tags         encounters
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del paciente"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {array}  dto.EncounterResponse
// @Router       /api/patients/{id}/encounters [get]
func (h *EncounterHandler) ListByPatient(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.ListByPatient(c.UserContext(), c.Params("id"), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
