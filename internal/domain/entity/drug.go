package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Drug representa un medicamento del catálogo de farmacia.
// Stock solo cambia a través del ledger (transiciones de DrugTransaction); nunca es negativo.
type Drug struct {
	ID        string
	Name      string // único
	Stock     int
	Price     decimal.Decimal
	Unit      string // tablet, botol, ampul...
	CreatedAt time.Time
	UpdatedAt time.Time
}
