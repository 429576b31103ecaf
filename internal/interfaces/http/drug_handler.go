package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hospital-api/internal/application/dto"
	"github.com/jhoicas/hospital-api/internal/application/usecase"
	"github.com/jhoicas/hospital-api/internal/domain"
)

// DrugHandler catálogo de medicamentos y su ledger.
type DrugHandler struct {
	uc *usecase.DrugUseCase
}

// NewDrugHandler construye el handler.
func NewDrugHandler(uc *usecase.DrugUseCase) *DrugHandler {
	return &DrugHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar medicamento
// @Tags         drugs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDrugRequest  true  "Datos del medicamento"
// @Success      201   {object}  dto.DrugResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/drugs [post]
func (h *DrugHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDrugRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener medicamento
// @Tags         drugs
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del medicamento"
// @Success      200  {object}  dto.DrugResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/drugs/{id} [get]
func (h *DrugHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar medicamento (sin stock)
// @Tags         drugs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del medicamento"
// @Param        body  body  dto.UpdateDrugRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.DrugResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/drugs/{id} [put]
func (h *DrugHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateDrugRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar medicamentos
// @Tags         drugs
// @Security     Bearer
// @Produce      json
// @Param        search  query  string  false  "Nombre"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.DrugListResponse
// @Router       /api/drugs [get]
func (h *DrugHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.uc.List(c.UserContext(), c.Query("search"), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar medicamento sin historial
// @Tags         drugs
// @Security     Bearer
// @Param        id   path  string  true  "ID del medicamento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/drugs/{id} [delete]
func (h *DrugHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Movements godoc
// @Summary      Movimientos de stock de un medicamento
// @Tags         drugs
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del medicamento"
// @Param        from    query  string  false  "Desde (RFC3339)"
// @Param        to      query  string  false  "Hasta (RFC3339)"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {array}   dto.StockMovementResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/drugs/{id}/movements [get]
func (h *DrugHandler) Movements(c *fiber.Ctx) error {
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		return writeError(c, err)
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return writeError(c, err)
	}
	limit, offset := pageParams(c)
	out, err := h.uc.Movements(c.UserContext(), c.Params("id"), from, to, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.Invalid(key, "formato RFC3339 esperado")
	}
	return &t, nil
}
