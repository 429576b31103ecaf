package entity

import "time"

// Estados de una transacción de medicamentos.
const (
	DrugTxStatusPending   = "PENDING"
	DrugTxStatusCompleted = "COMPLETED"
	DrugTxStatusCancelled = "CANCELLED"
)

// DrugTransaction cabecera de una dispensación (resep) con sus líneas ordenadas.
type DrugTransaction struct {
	ID             string
	PatientID      string
	Status         string
	Notes          string
	IdempotencyKey string // vacío = sin clave
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CompletedAt    *time.Time
	CancelledAt    *time.Time
	Items          []DrugTransactionItem
}

// DrugTransactionItem línea de la transacción: Quantity unidades de un único medicamento.
type DrugTransactionItem struct {
	ID            string
	TransactionID string
	DrugID        string
	DrugName      string // solo lectura (join con drugs)
	Quantity      int
	Position      int
}

// IsValidDrugTxStatus indica si s es un estado conocido.
func IsValidDrugTxStatus(s string) bool {
	switch s {
	case DrugTxStatusPending, DrugTxStatusCompleted, DrugTxStatusCancelled:
		return true
	}
	return false
}

// CanComplete solo PENDING puede pasar a COMPLETED.
func (t *DrugTransaction) CanComplete() bool {
	return t.Status == DrugTxStatusPending
}

// CanCancel PENDING y COMPLETED pueden cancelarse; CANCELLED es terminal.
func (t *DrugTransaction) CanCancel() bool {
	return t.Status == DrugTxStatusPending || t.Status == DrugTxStatusCompleted
}

// CanEditItems las líneas son mutables mientras la transacción no esté cancelada.
func (t *DrugTransaction) CanEditItems() bool {
	return t.Status != DrugTxStatusCancelled
}

// HoldsStock indica si las líneas tienen stock reservado en el ledger.
func (t *DrugTransaction) HoldsStock() bool {
	return t.Status == DrugTxStatusCompleted
}

// QuantitiesByDrug suma las cantidades por medicamento (un medicamento puede repetirse en varias líneas).
func QuantitiesByDrug(items []DrugTransactionItem) map[string]int {
	out := make(map[string]int, len(items))
	for _, it := range items {
		out[it.DrugID] += it.Quantity
	}
	return out
}
