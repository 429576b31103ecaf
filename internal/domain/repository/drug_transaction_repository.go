package repository

import (
	"context"

	"github.com/jhoicas/hospital-api/internal/domain/entity"
)

// DrugTransactionFilter filtros opcionales para listar transacciones.
type DrugTransactionFilter struct {
	PatientID string
	Status    string
}

// DrugTransactionRepository define el puerto de persistencia para transacciones de medicamentos y sus líneas.
type DrugTransactionRepository interface {
	// Create persiste la cabecera y sus líneas.
	Create(ctx context.Context, tx *entity.DrugTransaction) error
	GetByID(ctx context.Context, id string) (*entity.DrugTransaction, error)
	// GetForUpdate bloquea la cabecera para serializar transiciones concurrentes.
	GetForUpdate(ctx context.Context, id string) (*entity.DrugTransaction, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*entity.DrugTransaction, error)
	// UpdateHeader persiste status, notes, completed_at, cancelled_at y updated_at.
	UpdateHeader(ctx context.Context, tx *entity.DrugTransaction) error
	// ReplaceItems borra las líneas actuales e inserta las nuevas en orden.
	ReplaceItems(ctx context.Context, transactionID string, items []entity.DrugTransactionItem) error
	List(ctx context.Context, filter DrugTransactionFilter, limit, offset int) ([]*entity.DrugTransaction, int, error)
}
