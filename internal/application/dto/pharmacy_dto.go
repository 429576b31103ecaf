package dto

import "time"

// Modos de creación de una transacción de medicamentos.
const (
	DispenseModePending   = "PENDING"   // ordenar ahora, dispensar después
	DispenseModeCompleted = "COMPLETED" // dispensación directa
)

// DrugTransactionItemRequest línea de una transacción.
type DrugTransactionItemRequest struct {
	DrugID   string `json:"drug_id"`
	Quantity int    `json:"quantity"`
}

// CreateDrugTransactionRequest body para POST /api/drug-transactions.
// IdempotencyKey también se acepta en el header Idempotency-Key.
type CreateDrugTransactionRequest struct {
	PatientID      string                       `json:"patient_id"`
	Items          []DrugTransactionItemRequest `json:"items"`
	Notes          string                       `json:"notes"`
	Mode           string                       `json:"mode"`
	IdempotencyKey string                       `json:"idempotency_key,omitempty"`
}

// EditDrugTransactionItemsRequest body para PUT /api/drug-transactions/:id/items.
// Notes nil conserva las notas actuales.
type EditDrugTransactionItemsRequest struct {
	Items []DrugTransactionItemRequest `json:"items"`
	Notes *string                      `json:"notes"`
}

// DrugTransactionItemResponse línea en la salida.
type DrugTransactionItemResponse struct {
	ID       string `json:"id"`
	DrugID   string `json:"drug_id"`
	DrugName string `json:"drug_name"`
	Quantity int    `json:"quantity"`
}

// DrugTransactionResponse salida de una transacción con sus líneas.
type DrugTransactionResponse struct {
	ID          string                        `json:"id"`
	PatientID   string                        `json:"patient_id"`
	Status      string                        `json:"status"`
	Notes       string                        `json:"notes"`
	CreatedBy   string                        `json:"created_by,omitempty"`
	CreatedAt   time.Time                     `json:"created_at"`
	UpdatedAt   time.Time                     `json:"updated_at"`
	CompletedAt *time.Time                    `json:"completed_at,omitempty"`
	CancelledAt *time.Time                    `json:"cancelled_at,omitempty"`
	Items       []DrugTransactionItemResponse `json:"items"`
}

// DrugTransactionListResponse lista paginada.
type DrugTransactionListResponse struct {
	Items []DrugTransactionResponse `json:"items"`
	Page  PageResponse              `json:"page"`
}
