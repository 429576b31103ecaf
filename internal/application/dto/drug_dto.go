package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateDrugRequest entrada para registrar un medicamento con su stock inicial.
type CreateDrugRequest struct {
	Name  string          `json:"name" validate:"required,min=1,max=200"`
	Stock int             `json:"stock" validate:"min=0"`
	Price decimal.Decimal `json:"price"`
	Unit  string          `json:"unit"`
}

// UpdateDrugRequest entrada para actualizar un medicamento (sin stock: lo maneja el ledger).
type UpdateDrugRequest struct {
	Name  *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Price *decimal.Decimal `json:"price"`
	Unit  *string          `json:"unit"`
}

// DrugResponse salida de un medicamento.
type DrugResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Stock     int             `json:"stock"`
	Price     decimal.Decimal `json:"price"`
	Unit      string          `json:"unit"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// DrugListResponse lista paginada de medicamentos.
type DrugListResponse struct {
	Items []DrugResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// StockMovementResponse fila del ledger de stock.
type StockMovementResponse struct {
	ID            string    `json:"id"`
	DrugID        string    `json:"drug_id"`
	TransactionID string    `json:"transaction_id"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	BalanceAfter  int       `json:"balance_after"`
	CreatedBy     string    `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
