package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/hospital-api/internal/application/clinical"
	"github.com/jhoicas/hospital-api/internal/application/pharmacy"
	"github.com/jhoicas/hospital-api/internal/application/usecase"
	"github.com/jhoicas/hospital-api/internal/domain/repository"
	"github.com/jhoicas/hospital-api/internal/infrastructure/memory"
	"github.com/jhoicas/hospital-api/internal/infrastructure/metrics"
	"github.com/jhoicas/hospital-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/hospital-api/internal/interfaces/http"
	"github.com/jhoicas/hospital-api/pkg/config"
	"github.com/jhoicas/hospital-api/pkg/logger"
)

type txRunner interface {
	pharmacy.TxRunner
	clinical.TxRunner
}

// storage repos fuera de transacción más el runner transaccional del driver elegido.
type storage struct {
	tx         txRunner
	drugs      repository.DrugRepository
	txs        repository.DrugTransactionRepository
	movements  repository.StockMovementRepository
	patients   repository.PatientRepository
	encounters repository.HandledPatientRepository
	alerts     repository.AlertRepository
	pool       *pgxpool.Pool // nil con STORE_DRIVER=memory
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.App.StoreDriver {
	case config.StoreDriverMemory:
		store := memory.NewStore()
		return &storage{
			tx:         store,
			drugs:      store.Drugs(),
			txs:        store.Transactions(),
			movements:  store.Movements(),
			patients:   store.Patients(),
			encounters: store.Encounters(),
			alerts:     store.Alerts(),
		}, nil
	case config.StoreDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		return &storage{
			tx:         postgres.NewTxRunner(pool),
			drugs:      postgres.NewDrugRepository(pool),
			txs:        postgres.NewDrugTransactionRepository(pool),
			movements:  postgres.NewStockMovementRepository(pool),
			patients:   postgres.NewPatientRepository(pool),
			encounters: postgres.NewHandledPatientRepository(pool),
			alerts:     postgres.NewAlertRepository(pool),
			pool:       pool,
		}, nil
	}
	return nil, fmt.Errorf("STORE_DRIVER desconocido %q", cfg.App.StoreDriver)
}

func (s *storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func routerDeps(s *storage, cfg *config.Config, rec *metrics.Prometheus, log *logger.Logger) httpRouter.RouterDeps {
	return httpRouter.RouterDeps{
		PatientUC:     usecase.NewPatientUseCase(s.patients),
		DrugUC:        usecase.NewDrugUseCase(s.drugs, s.movements),
		TransactionUC: pharmacy.NewTransactionUseCase(s.tx, pharmacy.NewLedger(), s.txs, s.patients, rec),
		EncounterUC:   clinical.NewEncounterUseCase(s.tx, s.encounters, s.patients, s.alerts, rec, log),
		AlertUC:       clinical.NewAlertUseCase(s.alerts),
		JWTSecret:     cfg.JWT.Secret,
	}
}

func newLogger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
}
