package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/hospital-api/internal/domain"
	"github.com/jhoicas/hospital-api/internal/domain/entity"
	"github.com/jhoicas/hospital-api/internal/domain/repository"
)

var _ repository.DrugTransactionRepository = (*DrugTransactionRepo)(nil)

// DrugTransactionRepo cabeceras y líneas de transacciones de medicamentos.
type DrugTransactionRepo struct {
	q Querier
}

// NewDrugTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDrugTransactionRepository(q Querier) *DrugTransactionRepo {
	return &DrugTransactionRepo{q: q}
}

const drugTxColumns = `id, patient_id, status, notes, COALESCE(idempotency_key, ''), created_by,
	created_at, updated_at, completed_at, cancelled_at`

func scanDrugTx(row pgx.Row) (*entity.DrugTransaction, error) {
	var t entity.DrugTransaction
	err := row.Scan(&t.ID, &t.PatientID, &t.Status, &t.Notes, &t.IdempotencyKey, &t.CreatedBy,
		&t.CreatedAt, &t.UpdatedAt, &t.CompletedAt, &t.CancelledAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserta cabecera y líneas. Debe ejecutarse dentro de la tx del caso de uso.
func (r *DrugTransactionRepo) Create(ctx context.Context, t *entity.DrugTransaction) error {
	query := `
		INSERT INTO drug_transactions (id, patient_id, status, notes, idempotency_key, created_by,
			created_at, updated_at, completed_at, cancelled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query, t.ID, t.PatientID, t.Status, t.Notes, nullIfEmpty(t.IdempotencyKey), t.CreatedBy,
		t.CreatedAt, t.UpdatedAt, t.CompletedAt, t.CancelledAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert drug transaction: %w", translate(err, domain.ErrNotFound))
	}
	return r.insertItems(ctx, t.ID, t.Items)
}

func (r *DrugTransactionRepo) insertItems(ctx context.Context, transactionID string, items []entity.DrugTransactionItem) error {
	query := `
		INSERT INTO drug_transaction_items (id, transaction_id, drug_id, quantity, position)
		VALUES ($1, $2, $3, $4, $5)`
	for _, it := range items {
		if _, err := r.q.Exec(ctx, query, it.ID, transactionID, it.DrugID, it.Quantity, it.Position); err != nil {
			return fmt.Errorf("insert drug transaction item: %w", translate(err, domain.ErrNotFound))
		}
	}
	return nil
}

func (r *DrugTransactionRepo) loadItems(ctx context.Context, t *entity.DrugTransaction) error {
	query := `
		SELECT i.id, i.transaction_id, i.drug_id, d.name, i.quantity, i.position
		FROM drug_transaction_items i
		JOIN drugs d ON d.id = i.drug_id
		WHERE i.transaction_id = $1
		ORDER BY i.position`
	rows, err := r.q.Query(ctx, query, t.ID)
	if err != nil {
		return fmt.Errorf("list drug transaction items: %w", err)
	}
	defer rows.Close()
	t.Items = t.Items[:0]
	for rows.Next() {
		var it entity.DrugTransactionItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.DrugID, &it.DrugName, &it.Quantity, &it.Position); err != nil {
			return fmt.Errorf("scan drug transaction item: %w", err)
		}
		t.Items = append(t.Items, it)
	}
	return rows.Err()
}

func (r *DrugTransactionRepo) getOne(ctx context.Context, query string, arg any) (*entity.DrugTransaction, error) {
	t, err := scanDrugTx(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get drug transaction: %w", err)
	}
	if err := r.loadItems(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetByID obtiene la transacción con sus líneas; (nil, nil) si no existe.
func (r *DrugTransactionRepo) GetByID(ctx context.Context, id string) (*entity.DrugTransaction, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+drugTxColumns+` FROM drug_transactions WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera: dos transiciones concurrentes sobre la misma transacción se serializan.
func (r *DrugTransactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.DrugTransaction, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+drugTxColumns+` FROM drug_transactions WHERE id = $1 FOR UPDATE`, id)
}

// GetByIdempotencyKey busca una transacción creada con la misma clave.
func (r *DrugTransactionRepo) GetByIdempotencyKey(ctx context.Context, key string) (*entity.DrugTransaction, error) {
	if key == "" {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+drugTxColumns+` FROM drug_transactions WHERE idempotency_key = $1`, key)
}

// UpdateHeader persiste status, notas y sellos de tiempo.
func (r *DrugTransactionRepo) UpdateHeader(ctx context.Context, t *entity.DrugTransaction) error {
	if !isUUID(t.ID) {
		return domain.ErrNotFound
	}
	query := `
		UPDATE drug_transactions
		SET status = $2, notes = $3, completed_at = $4, cancelled_at = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, t.ID, t.Status, t.Notes, t.CompletedAt, t.CancelledAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update drug transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceItems borra las líneas actuales e inserta las nuevas.
func (r *DrugTransactionRepo) ReplaceItems(ctx context.Context, transactionID string, items []entity.DrugTransactionItem) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM drug_transaction_items WHERE transaction_id = $1`, transactionID); err != nil {
		return fmt.Errorf("delete drug transaction items: %w", err)
	}
	return r.insertItems(ctx, transactionID, items)
}

// List lista transacciones filtradas, la más reciente primero.
func (r *DrugTransactionRepo) List(ctx context.Context, f repository.DrugTransactionFilter, limit, offset int) ([]*entity.DrugTransaction, int, error) {
	where := `WHERE ($1 = '' OR patient_id::text = $1) AND ($2 = '' OR status = $2)`
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM drug_transactions `+where, f.PatientID, f.Status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count drug transactions: %w", err)
	}
	query := `SELECT ` + drugTxColumns + ` FROM drug_transactions ` + where + `
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, f.PatientID, f.Status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list drug transactions: %w", err)
	}
	var list []*entity.DrugTransaction
	for rows.Next() {
		t, err := scanDrugTx(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan drug transaction: %w", err)
		}
		list = append(list, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	// Las líneas se cargan después de cerrar rows: una tx de pgx no admite dos consultas abiertas.
	for _, t := range list {
		if err := r.loadItems(ctx, t); err != nil {
			return nil, 0, err
		}
	}
	return list, total, nil
}
