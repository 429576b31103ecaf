package repository

import (
	"context"
	"time"

	"github.com/jhoicas/hospital-api/internal/domain/entity"
)

// PatientRepository define el puerto de persistencia para Patient (DIP).
type PatientRepository interface {
	// Create asigna MRNumber secuencial si viene vacío.
	Create(ctx context.Context, patient *entity.Patient) error
	GetByID(ctx context.Context, id string) (*entity.Patient, error)
	// Update modifica datos demográficos; no toca status ni last_visit.
	Update(ctx context.Context, patient *entity.Patient) error
	// UpdateStatus es la única escritura de status; la usa la máquina de estados de encuentros.
	// lastVisit nil conserva el valor actual.
	UpdateStatus(ctx context.Context, id, status string, lastVisit *time.Time) error
	List(ctx context.Context, search string, limit, offset int) ([]*entity.Patient, int, error)
}
