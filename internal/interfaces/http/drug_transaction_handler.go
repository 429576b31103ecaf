package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hospital-api/internal/application/dto"
	"github.com/jhoicas/hospital-api/internal/application/pharmacy"
	"github.com/jhoicas/hospital-api/internal/domain/entity"
	"github.com/jhoicas/hospital-api/internal/domain/repository"
)

// DrugTransactionHandler ciclo de vida de las transacciones de medicamentos.
type DrugTransactionHandler struct {
	uc *pharmacy.TransactionUseCase
}

// NewDrugTransactionHandler construye el handler.
func NewDrugTransactionHandler(uc *pharmacy.TransactionUseCase) *DrugTransactionHandler {
	return &DrugTransactionHandler{uc: uc}
}

// Create godoc
// @Summary      Crear transacción de medicamentos
// @Description  mode=PENDING registra la orden; mode=COMPLETED descuenta stock en la misma transacción.
// @Description  dokter solo puede crear órdenes PENDING.
// @Tags         drug-transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Clave para reintentos seguros"
// @Param        body  body  dto.CreateDrugTransactionRequest  true  "Cabecera y líneas"
// @Success      201   {object}  dto.DrugTransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/drug-transactions [post]
func (h *DrugTransactionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDrugTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if key := strings.TrimSpace(c.Get("Idempotency-Key")); key != "" {
		in.IdempotencyKey = key
	}
	if GetRole(c) == entity.RoleDokter && in.Mode == dto.DispenseModeCompleted {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "dokter solo puede crear órdenes PENDING"})
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener transacción
// @Tags         drug-transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.DrugTransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/drug-transactions/{id} [get]
func (h *DrugTransactionHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar transacciones
// @Tags         drug-transactions
// @Security     Bearer
// @Produce      json
// @Param        patient_id  query  string  false  "Filtrar por paciente"
// @Param        status      query  string  false  "PENDING | COMPLETED | CANCELLED"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.DrugTransactionListResponse
// @Router       /api/drug-transactions [get]
func (h *DrugTransactionHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	filter := repository.DrugTransactionFilter{
		PatientID: c.Query("patient_id"),
		Status:    strings.ToUpper(c.Query("status")),
	}
	out, err := h.uc.List(c.UserContext(), filter, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Complete godoc
// @Summary      Dispensar una orden PENDING
// @Tags         drug-transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.DrugTransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/drug-transactions/{id}/complete [post]
func (h *DrugTransactionHandler) Complete(c *fiber.Ctx) error {
	out, err := h.uc.Complete(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar transacción
// @Description  Si estaba COMPLETED devuelve las unidades al stock.
// @Tags         drug-transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.DrugTransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/drug-transactions/{id}/cancel [post]
func (h *DrugTransactionHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// EditItems godoc
// @Summary      Reemplazar las líneas de una transacción
// @Description  En COMPLETED libera lo retenido y reserva lo nuevo de forma atómica.
// @Tags         drug-transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la transacción"
// @Param        body  body  dto.EditDrugTransactionItemsRequest  true  "Nuevas líneas"
// @Success      200   {object}  dto.DrugTransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/drug-transactions/{id}/items [put]
func (h *DrugTransactionHandler) EditItems(c *fiber.Ctx) error {
	var in dto.EditDrugTransactionItemsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.EditItems(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
