package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/hospital-api/internal/domain"
	"github.com/jhoicas/hospital-api/internal/domain/entity"
	"github.com/jhoicas/hospital-api/internal/domain/repository"
)

var (
	_ repository.DrugRepository            = (*DrugRepo)(nil)
	_ repository.DrugTransactionRepository = (*DrugTransactionRepo)(nil)
	_ repository.StockMovementRepository   = (*StockMovementRepo)(nil)
)

// DrugRepo catálogo de medicamentos en memoria.
type DrugRepo struct{ b binding }

func (r *DrugRepo) Create(_ context.Context, drug *entity.Drug) error {
	return r.b.write(func(st *state) error {
		for _, d := range st.drugs {
			if strings.EqualFold(d.Name, drug.Name) {
				return domain.ErrDuplicate
			}
		}
		if _, ok := st.drugs[drug.ID]; ok {
			return domain.ErrDuplicate
		}
		if drug.Stock < 0 {
			return domain.Invalid("stock", "no puede ser negativo")
		}
		st.drugs[drug.ID] = *drug
		return nil
	})
}

func (r *DrugRepo) GetByID(_ context.Context, id string) (*entity.Drug, error) {
	var out *entity.Drug
	err := r.b.read(func(st *state) error {
		if d, ok := st.drugs[id]; ok {
			out = &d
		}
		return nil
	})
	return out, err
}

func (r *DrugRepo) GetByName(_ context.Context, name string) (*entity.Drug, error) {
	var out *entity.Drug
	err := r.b.read(func(st *state) error {
		for _, d := range st.drugs {
			if strings.EqualFold(d.Name, name) {
				d := d
				out = &d
				return nil
			}
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: la transacción ya tiene el store en exclusiva.
func (r *DrugRepo) GetForUpdate(ctx context.Context, id string) (*entity.Drug, error) {
	return r.GetByID(ctx, id)
}

func (r *DrugRepo) Update(_ context.Context, drug *entity.Drug) error {
	return r.b.write(func(st *state) error {
		cur, ok := st.drugs[drug.ID]
		if !ok {
			return domain.ErrNotFound
		}
		for _, d := range st.drugs {
			if d.ID != drug.ID && strings.EqualFold(d.Name, drug.Name) {
				return domain.ErrDuplicate
			}
		}
		cur.Name = drug.Name
		cur.Price = drug.Price
		cur.Unit = drug.Unit
		cur.UpdatedAt = drug.UpdatedAt
		st.drugs[drug.ID] = cur
		return nil
	})
}

func (r *DrugRepo) UpdateStock(_ context.Context, id string, stock int) error {
	return r.b.write(func(st *state) error {
		cur, ok := st.drugs[id]
		if !ok {
			return domain.ErrNotFound
		}
		// Mismo contrato que el CHECK (stock >= 0) de la tabla drugs.
		if stock < 0 {
			return domain.ErrInsufficientStock
		}
		cur.Stock = stock
		cur.UpdatedAt = r.b.store.nowFn()
		st.drugs[id] = cur
		return nil
	})
}

func (r *DrugRepo) List(_ context.Context, search string, limit, offset int) ([]*entity.Drug, int, error) {
	var (
		out   []*entity.Drug
		total int
	)
	err := r.b.read(func(st *state) error {
		needle := strings.ToLower(search)
		all := make([]entity.Drug, 0, len(st.drugs))
		for _, d := range st.drugs {
			if needle == "" || strings.Contains(strings.ToLower(d.Name), needle) {
				all = append(all, d)
			}
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
		total = len(all)
		for _, d := range page(all, limit, offset) {
			d := d
			out = append(out, &d)
		}
		return nil
	})
	return out, total, err
}

func (r *DrugRepo) HasHistory(_ context.Context, id string) (bool, error) {
	found := false
	err := r.b.read(func(st *state) error {
		for _, m := range st.movements {
			if m.DrugID == id {
				found = true
				return nil
			}
		}
		for _, t := range st.txs {
			for _, it := range t.Items {
				if it.DrugID == id {
					found = true
					return nil
				}
			}
		}
		return nil
	})
	return found, err
}

func (r *DrugRepo) Delete(ctx context.Context, id string) error {
	used, err := r.HasHistory(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return domain.ErrConflict
	}
	return r.b.write(func(st *state) error {
		if _, ok := st.drugs[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.drugs, id)
		return nil
	})
}

// DrugTransactionRepo transacciones de medicamentos en memoria.
type DrugTransactionRepo struct{ b binding }

func (r *DrugTransactionRepo) Create(_ context.Context, t *entity.DrugTransaction) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.txs[t.ID]; ok {
			return domain.ErrDuplicate
		}
		if t.IdempotencyKey != "" {
			for _, other := range st.txs {
				if other.IdempotencyKey == t.IdempotencyKey {
					return domain.ErrDuplicate
				}
			}
		}
		if _, ok := st.patients[t.PatientID]; !ok {
			return domain.ErrNotFound
		}
		st.txs[t.ID] = cloneTransaction(*t)
		return nil
	})
}

func (r *DrugTransactionRepo) GetByID(_ context.Context, id string) (*entity.DrugTransaction, error) {
	var out *entity.DrugTransaction
	err := r.b.read(func(st *state) error {
		if t, ok := st.txs[id]; ok {
			out = decorateTransaction(st, t)
		}
		return nil
	})
	return out, err
}

func (r *DrugTransactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.DrugTransaction, error) {
	return r.GetByID(ctx, id)
}

func (r *DrugTransactionRepo) GetByIdempotencyKey(_ context.Context, key string) (*entity.DrugTransaction, error) {
	var out *entity.DrugTransaction
	err := r.b.read(func(st *state) error {
		for _, t := range st.txs {
			if key != "" && t.IdempotencyKey == key {
				out = decorateTransaction(st, t)
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *DrugTransactionRepo) UpdateHeader(_ context.Context, t *entity.DrugTransaction) error {
	return r.b.write(func(st *state) error {
		cur, ok := st.txs[t.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Status = t.Status
		cur.Notes = t.Notes
		cur.CompletedAt = t.CompletedAt
		cur.CancelledAt = t.CancelledAt
		cur.UpdatedAt = t.UpdatedAt
		st.txs[t.ID] = cur
		return nil
	})
}

func (r *DrugTransactionRepo) ReplaceItems(_ context.Context, transactionID string, items []entity.DrugTransactionItem) error {
	return r.b.write(func(st *state) error {
		cur, ok := st.txs[transactionID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Items = append([]entity.DrugTransactionItem(nil), items...)
		st.txs[transactionID] = cur
		return nil
	})
}

func (r *DrugTransactionRepo) List(_ context.Context, filter repository.DrugTransactionFilter, limit, offset int) ([]*entity.DrugTransaction, int, error) {
	var (
		out   []*entity.DrugTransaction
		total int
	)
	err := r.b.read(func(st *state) error {
		all := make([]entity.DrugTransaction, 0, len(st.txs))
		for _, t := range st.txs {
			if filter.PatientID != "" && t.PatientID != filter.PatientID {
				continue
			}
			if filter.Status != "" && t.Status != filter.Status {
				continue
			}
			all = append(all, t)
		}
		sortByTimeDesc(all, func(t entity.DrugTransaction) time.Time { return t.CreatedAt })
		total = len(all)
		for _, t := range page(all, limit, offset) {
			out = append(out, decorateTransaction(st, t))
		}
		return nil
	})
	return out, total, err
}

func decorateTransaction(st *state, t entity.DrugTransaction) *entity.DrugTransaction {
	t = cloneTransaction(t)
	sort.SliceStable(t.Items, func(i, j int) bool { return t.Items[i].Position < t.Items[j].Position })
	for i := range t.Items {
		if d, ok := st.drugs[t.Items[i].DrugID]; ok {
			t.Items[i].DrugName = d.Name
		}
	}
	return &t
}

// StockMovementRepo ledger de stock en memoria (append-only).
type StockMovementRepo struct{ b binding }

func (r *StockMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.drugs[m.DrugID]; !ok {
			return domain.ErrNotFound
		}
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *StockMovementRepo) ListByDrug(_ context.Context, drugID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.b.read(func(st *state) error {
		var all []entity.StockMovement
		for _, m := range st.movements {
			if m.DrugID != drugID {
				continue
			}
			if from != nil && m.CreatedAt.Before(*from) {
				continue
			}
			if to != nil && m.CreatedAt.After(*to) {
				continue
			}
			all = append(all, m)
		}
		for _, m := range page(all, limit, offset) {
			m := m
			out = append(out, &m)
		}
		return nil
	})
	return out, err
}

func (r *StockMovementRepo) ListByTransaction(_ context.Context, transactionID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.b.read(func(st *state) error {
		for _, m := range st.movements {
			if m.TransactionID == transactionID {
				m := m
				out = append(out, &m)
			}
		}
		return nil
	})
	return out, err
}
