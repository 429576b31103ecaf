package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/hospital-api/internal/domain"
	"github.com/jhoicas/hospital-api/internal/domain/entity"
	"github.com/jhoicas/hospital-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo ledger de stock (solo inserción).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create registra un movimiento. Debe ejecutarse en la misma tx que el UpdateStock correspondiente.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, drug_id, transaction_id, type, quantity, balance_after, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, m.ID, m.DrugID, nullIfEmpty(m.TransactionID), m.Type, m.Quantity,
		m.BalanceAfter, m.CreatedBy, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", translate(err, domain.ErrNotFound))
	}
	return nil
}

const movementColumns = `id, drug_id, COALESCE(transaction_id::text, ''), type, quantity, balance_after, created_by, created_at`

func collectMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.DrugID, &m.TransactionID, &m.Type, &m.Quantity, &m.BalanceAfter, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// ListByDrug movimientos de un medicamento en orden cronológico, opcionalmente acotados por fecha.
func (r *StockMovementRepo) ListByDrug(ctx context.Context, drugID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	if !isUUID(drugID) {
		return nil, nil
	}
	query := `
		SELECT ` + movementColumns + ` FROM stock_movements
		WHERE drug_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY seq
		LIMIT NULLIF($4, 0) OFFSET $5`
	rows, err := r.q.Query(ctx, query, drugID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	return collectMovements(rows)
}

// ListByTransaction movimientos originados por una transacción.
func (r *StockMovementRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.StockMovement, error) {
	if !isUUID(transactionID) {
		return nil, nil
	}
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE transaction_id = $1 ORDER BY seq`
	rows, err := r.q.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list stock movements by transaction: %w", err)
	}
	return collectMovements(rows)
}
