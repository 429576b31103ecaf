package clinical

import (
	"context"

	"github.com/jhoicas/hospital-api/internal/domain/entity"
	"github.com/jhoicas/hospital-api/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción de BD con repos de pacientes y encuentros atados a ella.
// La escritura del encuentro y el recálculo de Patient.status ocurren siempre en la misma tx.
type TxRunner interface {
	RunClinical(ctx context.Context, fn func(
		patientRepo repository.PatientRepository,
		encounterRepo repository.HandledPatientRepository,
	) error) error
}

// AlertSink recibe alertas para el personal. Se invoca después del commit; sus fallos no revierten nada.
type AlertSink interface {
	CreateIfAbsent(ctx context.Context, alert *entity.Alert, messagePrefix string) (bool, error)
}

// Recorder métricas de alertas. Puede ser nil.
type Recorder interface {
	AlertEmitted(category string, created bool)
	AlertFailed(category string)
	PatientStatusWritten(status string)
}

type nopRecorder struct{}

func (nopRecorder) AlertEmitted(string, bool)   {}
func (nopRecorder) AlertFailed(string)          {}
func (nopRecorder) PatientStatusWritten(string) {}
