package entity

import "time"

// Tipos de movimiento del ledger de stock.
const (
	MovementTypeReserve = "RESERVE" // descuenta stock al dispensar
	MovementTypeRelease = "RELEASE" // devuelve stock al cancelar o reducir una línea
)

// StockMovement es una fila del ledger de stock: cada reserva tiene su liberación
// correspondiente si la transacción se cancela o la línea se reduce.
type StockMovement struct {
	ID            string
	DrugID        string
	TransactionID string
	Type          string // RESERVE, RELEASE
	Quantity      int    // negativo en RESERVE, positivo en RELEASE
	BalanceAfter  int    // stock del medicamento tras aplicar el movimiento
	CreatedBy     string // UserID
	CreatedAt     time.Time
}
