package repository

import (
	"context"
	"time"

	"github.com/jhoicas/hospital-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para el ledger de stock.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByDrug(ctx context.Context, drugID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByTransaction(ctx context.Context, transactionID string) ([]*entity.StockMovement, error)
}
