package repository

import (
	"context"

	"github.com/jhoicas/hospital-api/internal/domain/entity"
)

// DrugRepository define el puerto de persistencia para el catálogo de medicamentos (DIP).
// GetByID y GetForUpdate devuelven (nil, nil) si el medicamento no existe.
type DrugRepository interface {
	Create(ctx context.Context, drug *entity.Drug) error
	GetByID(ctx context.Context, id string) (*entity.Drug, error)
	GetByName(ctx context.Context, name string) (*entity.Drug, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Drug, error)
	// Update modifica nombre, precio y unidad. Nunca el stock.
	Update(ctx context.Context, drug *entity.Drug) error
	// UpdateStock solo lo usa el ledger, siempre después de GetForUpdate.
	UpdateStock(ctx context.Context, id string, stock int) error
	List(ctx context.Context, search string, limit, offset int) ([]*entity.Drug, int, error)
	// HasHistory indica si alguna línea de transacción o movimiento referencia el medicamento.
	HasHistory(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}
