package pharmacy

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/hospital-api/internal/domain"
	"github.com/jhoicas/hospital-api/internal/domain/entity"
	"github.com/jhoicas/hospital-api/internal/domain/repository"
)

// LedgerRef identifica la transacción y el usuario que originan un movimiento.
type LedgerRef struct {
	TransactionID string
	UserID        string
	Now           time.Time
}

// Ledger es el motor de stock: reserva y libera unidades dentro de la transacción de BD del caller.
// Cada operación vuelve a leer el stock con bloqueo de fila (SELECT FOR UPDATE); nunca reutiliza
// lecturas previas, así dos dispensaciones concurrentes del mismo medicamento se serializan.
type Ledger struct{}

// NewLedger construye el motor de stock.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Reserve descuenta qty unidades. Falla con *domain.InsufficientStockError si el stock actual no alcanza.
func (l *Ledger) Reserve(
	ctx context.Context,
	drugRepo repository.DrugRepository,
	movRepo repository.StockMovementRepository,
	drugID string, qty int, ref LedgerRef,
) error {
	if qty <= 0 {
		return domain.Invalid("quantity", "debe ser mayor que 0")
	}
	drug, err := drugRepo.GetForUpdate(ctx, drugID)
	if err != nil {
		return err
	}
	if drug == nil {
		return domain.ErrNotFound
	}
	if drug.Stock < qty {
		return &domain.InsufficientStockError{
			DrugID:    drug.ID,
			DrugName:  drug.Name,
			Available: drug.Stock,
			Required:  qty,
		}
	}
	balance := drug.Stock - qty
	if err := drugRepo.UpdateStock(ctx, drug.ID, balance); err != nil {
		return err
	}
	return movRepo.Create(ctx, &entity.StockMovement{
		ID:            uuid.New().String(),
		DrugID:        drug.ID,
		TransactionID: ref.TransactionID,
		Type:          entity.MovementTypeReserve,
		Quantity:      -qty,
		BalanceAfter:  balance,
		CreatedBy:     ref.UserID,
		CreatedAt:     ref.Now,
	})
}

// Release devuelve qty unidades sin condiciones; qty nunca supera lo reservado por construcción del caller.
func (l *Ledger) Release(
	ctx context.Context,
	drugRepo repository.DrugRepository,
	movRepo repository.StockMovementRepository,
	drugID string, qty int, ref LedgerRef,
) error {
	if qty <= 0 {
		return domain.Invalid("quantity", "debe ser mayor que 0")
	}
	drug, err := drugRepo.GetForUpdate(ctx, drugID)
	if err != nil {
		return err
	}
	if drug == nil {
		return domain.ErrNotFound
	}
	balance := drug.Stock + qty
	if err := drugRepo.UpdateStock(ctx, drug.ID, balance); err != nil {
		return err
	}
	return movRepo.Create(ctx, &entity.StockMovement{
		ID:            uuid.New().String(),
		DrugID:        drug.ID,
		TransactionID: ref.TransactionID,
		Type:          entity.MovementTypeRelease,
		Quantity:      qty,
		BalanceAfter:  balance,
		CreatedBy:     ref.UserID,
		CreatedAt:     ref.Now,
	})
}

// ReserveAll reserva las cantidades agregadas por medicamento en orden ascendente de ID,
// para que peticiones concurrentes con varios medicamentos no se bloqueen mutuamente.
// Si una falla, el caller hace rollback de toda la transacción (todo o nada).
func (l *Ledger) ReserveAll(
	ctx context.Context,
	drugRepo repository.DrugRepository,
	movRepo repository.StockMovementRepository,
	quantities map[string]int, ref LedgerRef,
) error {
	for _, drugID := range sortedDrugIDs(quantities) {
		if err := l.Reserve(ctx, drugRepo, movRepo, drugID, quantities[drugID], ref); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseAll libera las cantidades agregadas por medicamento (mismo orden que ReserveAll).
func (l *Ledger) ReleaseAll(
	ctx context.Context,
	drugRepo repository.DrugRepository,
	movRepo repository.StockMovementRepository,
	quantities map[string]int, ref LedgerRef,
) error {
	for _, drugID := range sortedDrugIDs(quantities) {
		if err := l.Release(ctx, drugRepo, movRepo, drugID, quantities[drugID], ref); err != nil {
			return err
		}
	}
	return nil
}

func sortedDrugIDs(quantities map[string]int) []string {
	ids := make([]string, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func totalUnits(quantities map[string]int) int {
	n := 0
	for _, q := range quantities {
		n += q
	}
	return n
}
