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

var _ repository.DrugRepository = (*DrugRepo)(nil)

// DrugRepo implementación de DrugRepository sobre PostgreSQL (usable con pool o tx).
type DrugRepo struct {
	q Querier
}

// NewDrugRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDrugRepository(q Querier) *DrugRepo {
	return &DrugRepo{q: q}
}

const drugColumns = `id, name, stock, price, unit, created_at, updated_at`

func scanDrug(row pgx.Row) (*entity.Drug, error) {
	var d entity.Drug
	if err := row.Scan(&d.ID, &d.Name, &d.Stock, &d.Price, &d.Unit, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserta un medicamento con su stock inicial.
func (r *DrugRepo) Create(ctx context.Context, d *entity.Drug) error {
	query := `
		INSERT INTO drugs (id, name, stock, price, unit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, d.ID, d.Name, d.Stock, d.Price, d.Unit, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert drug: %w", translate(err, domain.ErrInvalidInput))
	}
	return nil
}

func (r *DrugRepo) getOne(ctx context.Context, query string, arg any) (*entity.Drug, error) {
	d, err := scanDrug(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get drug: %w", err)
	}
	return d, nil
}

// GetByID obtiene un medicamento por ID; (nil, nil) si no existe.
func (r *DrugRepo) GetByID(ctx context.Context, id string) (*entity.Drug, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+drugColumns+` FROM drugs WHERE id = $1`, id)
}

// GetByName búsqueda exacta sin distinguir mayúsculas.
func (r *DrugRepo) GetByName(ctx context.Context, name string) (*entity.Drug, error) {
	return r.getOne(ctx, `SELECT `+drugColumns+` FROM drugs WHERE lower(name) = lower($1)`, name)
}

// GetForUpdate obtiene el medicamento y bloquea la fila (SELECT FOR UPDATE).
func (r *DrugRepo) GetForUpdate(ctx context.Context, id string) (*entity.Drug, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+drugColumns+` FROM drugs WHERE id = $1 FOR UPDATE`, id)
}

// Update actualiza nombre, precio y unidad.
func (r *DrugRepo) Update(ctx context.Context, d *entity.Drug) error {
	if !isUUID(d.ID) {
		return domain.ErrNotFound
	}
	query := `UPDATE drugs SET name = $2, price = $3, unit = $4, updated_at = $5 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, d.ID, d.Name, d.Price, d.Unit, d.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update drug: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock escribe el saldo calculado por el ledger. El CHECK (stock >= 0) es la última defensa.
func (r *DrugRepo) UpdateStock(ctx context.Context, id string, stock int) error {
	if !isUUID(id) {
		return domain.ErrNotFound
	}
	tag, err := r.q.Exec(ctx, `UPDATE drugs SET stock = $2, updated_at = now() WHERE id = $1`, id, stock)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("update drug stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista medicamentos por nombre con paginación y total.
func (r *DrugRepo) List(ctx context.Context, search string, limit, offset int) ([]*entity.Drug, int, error) {
	var total int
	if err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM drugs WHERE $1 = '' OR name ILIKE '%' || $1 || '%'`, search,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count drugs: %w", err)
	}
	query := `
		SELECT ` + drugColumns + ` FROM drugs
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, search, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list drugs: %w", err)
	}
	defer rows.Close()
	var list []*entity.Drug
	for rows.Next() {
		d, err := scanDrug(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan drug: %w", err)
		}
		list = append(list, d)
	}
	return list, total, rows.Err()
}

// HasHistory indica si alguna línea o movimiento referencia el medicamento.
func (r *DrugRepo) HasHistory(ctx context.Context, id string) (bool, error) {
	if !isUUID(id) {
		return false, nil
	}
	query := `
		SELECT EXISTS (SELECT 1 FROM drug_transaction_items WHERE drug_id = $1)
		    OR EXISTS (SELECT 1 FROM stock_movements WHERE drug_id = $1)`
	var used bool
	if err := r.q.QueryRow(ctx, query, id).Scan(&used); err != nil {
		return false, fmt.Errorf("drug history: %w", err)
	}
	return used, nil
}

// Delete elimina el medicamento; con historial la FK RESTRICT lo impide (ErrConflict).
func (r *DrugRepo) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return domain.ErrNotFound
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM drugs WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete drug: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
