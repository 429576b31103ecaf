package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/hospital-api/internal/application/clinical"
	"github.com/jhoicas/hospital-api/internal/application/pharmacy"
	"github.com/jhoicas/hospital-api/internal/domain/repository"
)

// Ensure TxRunner implements pharmacy.TxRunner and clinical.TxRunner.
var _ pharmacy.TxRunner = (*TxRunner)(nil)
var _ clinical.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunPharmacy inicia una transacción con repos de medicamentos, transacciones y ledger (para el ciclo de dispensación).
func (r *TxRunner) RunPharmacy(ctx context.Context, fn func(
	drugRepo repository.DrugRepository,
	txRepo repository.DrugTransactionRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewDrugRepository(tx), NewDrugTransactionRepository(tx), NewStockMovementRepository(tx))
	})
}

// RunClinical inicia una transacción con repos de pacientes y encuentros (escritura de encuentro + status).
func (r *TxRunner) RunClinical(ctx context.Context, fn func(
	patientRepo repository.PatientRepository,
	encounterRepo repository.HandledPatientRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewPatientRepository(tx), NewHandledPatientRepository(tx))
	})
}
