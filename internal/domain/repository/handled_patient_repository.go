package repository

import (
	"context"

	"github.com/jhoicas/hospital-api/internal/domain/entity"
)

// HandledPatientRepository define el puerto de persistencia para encuentros (pasien ditangani).
type HandledPatientRepository interface {
	Create(ctx context.Context, enc *entity.HandledPatient) error
	GetByID(ctx context.Context, id string) (*entity.HandledPatient, error)
	Update(ctx context.Context, enc *entity.HandledPatient) error
	Delete(ctx context.Context, id string) error
	// LatestByPatient devuelve el encuentro más reciente del paciente (handled_date, created_at)
	// excluyendo excludeID; (nil, nil) si no hay ninguno.
	LatestByPatient(ctx context.Context, patientID, excludeID string) (*entity.HandledPatient, error)
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*entity.HandledPatient, error)
}
