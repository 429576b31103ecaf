package pharmacy

import (
	"context"

	"github.com/jhoicas/hospital-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que el cambio de la transacción de medicamentos y su efecto en el stock sean atómicos.
type TxRunner interface {
	RunPharmacy(ctx context.Context, fn func(
		drugRepo repository.DrugRepository,
		txRepo repository.DrugTransactionRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// Recorder recibe métricas del ledger después del commit. Puede ser nil.
type Recorder interface {
	StockReserved(units int)
	StockReleased(units int)
	InsufficientStock()
	TransactionTransition(status string)
}

type nopRecorder struct{}

func (nopRecorder) StockReserved(int)            {}
func (nopRecorder) StockReleased(int)            {}
func (nopRecorder) InsufficientStock()           {}
func (nopRecorder) TransactionTransition(string) {}
