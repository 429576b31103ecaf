package clinical

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/hospital-api/internal/application/dto"
	"github.com/jhoicas/hospital-api/internal/domain"
	derive "github.com/jhoicas/hospital-api/internal/domain/clinical"
	"github.com/jhoicas/hospital-api/internal/domain/entity"
	"github.com/jhoicas/hospital-api/internal/domain/repository"
	"github.com/jhoicas/hospital-api/pkg/logger"
)

// EncounterUseCase máquina de estados de encuentros: cada escritura del status de un encuentro
// recalcula Patient.status en la misma transacción. Las alertas se emiten después del commit.
// Encuentros distintos del mismo paciente editados en paralelo: gana el último que escribe.
type EncounterUseCase struct {
	txRunner      TxRunner
	encounterRepo repository.HandledPatientRepository
	patientRepo   repository.PatientRepository
	alerts        AlertSink
	recorder      Recorder
	log           *logger.Logger
	now           func() time.Time
}

// NewEncounterUseCase construye el caso de uso. alerts, recorder y log pueden ser nil.
func NewEncounterUseCase(
	txRunner TxRunner,
	encounterRepo repository.HandledPatientRepository,
	patientRepo repository.PatientRepository,
	alerts AlertSink,
	recorder Recorder,
	log *logger.Logger,
) *EncounterUseCase {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &EncounterUseCase{
		txRunner:      txRunner,
		encounterRepo: encounterRepo,
		patientRepo:   patientRepo,
		alerts:        alerts,
		recorder:      recorder,
		log:           log,
		now:           time.Now,
	}
}

// Create registra un encuentro (status vacío = ANTRIAN), recalcula el status del paciente y sella last_visit.
func (uc *EncounterUseCase) Create(ctx context.Context, userID string, in dto.CreateEncounterRequest) (*dto.EncounterResponse, error) {
	if in.PatientID == "" {
		return nil, domain.Invalid("patient_id", "es requerido")
	}
	status := in.Status
	if status == "" {
		status = entity.EncounterStatusAntrian
	}
	if !entity.IsValidEncounterStatus(status) {
		return nil, domain.Invalid("status", "estado de encuentro desconocido")
	}
	priority, err := normalizePriority(in.Priority)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	enc := &entity.HandledPatient{
		ID:            uuid.New().String(),
		PatientID:     in.PatientID,
		HandledBy:     userID,
		HandledDate:   now,
		Status:        status,
		Diagnosis:     in.Diagnosis,
		Notes:         in.Notes,
		Priority:      priority,
		NextVisitDate: in.NextVisitDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.HandledDate != nil {
		enc.HandledDate = *in.HandledDate
	}

	var (
		patient       *entity.Patient
		patientStatus string
	)
	err = uc.txRunner.RunClinical(ctx, func(patientRepo repository.PatientRepository, encounterRepo repository.HandledPatientRepository) error {
		var err error
		patient, err = patientRepo.GetByID(ctx, enc.PatientID)
		if err != nil {
			return err
		}
		if patient == nil {
			return domain.ErrNotFound
		}
		if err := encounterRepo.Create(ctx, enc); err != nil {
			return err
		}
		patientStatus, err = writePatientStatus(ctx, patientRepo, enc, &now)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.recorder.PatientStatusWritten(patientStatus)

	if len(in.LabTests) > 0 {
		uc.emitLabAlert(ctx, patient, enc, in.LabTests)
	}
	if enc.Status == entity.EncounterStatusEmergency {
		uc.emitEmergencyAlert(ctx, patient, enc)
	}
	return toEncounterResponse(enc, patientStatus), nil
}

// Update modifica un encuentro. Si no se envía status se conserva el del encuentro más reciente
// de ese paciente (distinto de este) o, si no hay otro, el actual; nunca vuelve a ANTRIAN.
func (uc *EncounterUseCase) Update(ctx context.Context, id string, in dto.UpdateEncounterRequest) (*dto.EncounterResponse, error) {
	if in.Status != nil && !entity.IsValidEncounterStatus(*in.Status) {
		return nil, domain.Invalid("status", "estado de encuentro desconocido")
	}
	var priority string
	if in.Priority != nil {
		p, err := normalizePriority(*in.Priority)
		if err != nil {
			return nil, err
		}
		priority = p
	}

	var (
		enc           *entity.HandledPatient
		patient       *entity.Patient
		previous      string
		patientStatus string
	)
	err := uc.txRunner.RunClinical(ctx, func(patientRepo repository.PatientRepository, encounterRepo repository.HandledPatientRepository) error {
		var err error
		enc, err = encounterRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if enc == nil {
			return domain.ErrNotFound
		}
		previous = enc.Status

		if in.Status != nil {
			enc.Status = *in.Status
		} else {
			other, err := encounterRepo.LatestByPatient(ctx, enc.PatientID, enc.ID)
			if err != nil {
				return err
			}
			if other != nil {
				enc.Status = other.Status
			}
		}
		if in.Diagnosis != nil {
			enc.Diagnosis = *in.Diagnosis
		}
		if in.Notes != nil {
			enc.Notes = *in.Notes
		}
		if in.Priority != nil {
			enc.Priority = priority
		}
		if in.NextVisitDate != nil {
			enc.NextVisitDate = in.NextVisitDate
		}
		now := uc.now()
		enc.UpdatedAt = now
		if err := encounterRepo.Update(ctx, enc); err != nil {
			return err
		}

		patient, err = patientRepo.GetByID(ctx, enc.PatientID)
		if err != nil {
			return err
		}
		if patient == nil {
			return domain.ErrNotFound
		}
		patientStatus, err = writePatientStatus(ctx, patientRepo, enc, &now)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.recorder.PatientStatusWritten(patientStatus)

	if len(in.LabTests) > 0 {
		uc.emitLabAlert(ctx, patient, enc, in.LabTests)
	}
	if enc.Status == entity.EncounterStatusEmergency && previous != entity.EncounterStatusEmergency {
		uc.emitEmergencyAlert(ctx, patient, enc)
	}
	return toEncounterResponse(enc, patientStatus), nil
}

// Delete elimina un encuentro y recalcula Patient.status desde el encuentro restante más reciente;
// sin encuentros restantes el paciente vuelve a AKTIF. last_visit no cambia.
func (uc *EncounterUseCase) Delete(ctx context.Context, id string) error {
	var patientStatus string
	err := uc.txRunner.RunClinical(ctx, func(patientRepo repository.PatientRepository, encounterRepo repository.HandledPatientRepository) error {
		enc, err := encounterRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if enc == nil {
			return domain.ErrNotFound
		}
		if err := encounterRepo.Delete(ctx, id); err != nil {
			return err
		}
		latest, err := encounterRepo.LatestByPatient(ctx, enc.PatientID, "")
		if err != nil {
			return err
		}
		patientStatus = entity.PatientStatusAktif
		if latest != nil {
			patientStatus = derive.StatusFor(latest.Status, latest.Notes)
		}
		return patientRepo.UpdateStatus(ctx, enc.PatientID, patientStatus, nil)
	})
	if err != nil {
		return err
	}
	uc.recorder.PatientStatusWritten(patientStatus)
	return nil
}

// GetByID obtiene un encuentro junto con el status actual del paciente.
func (uc *EncounterUseCase) GetByID(ctx context.Context, id string) (*dto.EncounterResponse, error) {
	enc, err := uc.encounterRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, domain.ErrNotFound
	}
	patient, err := uc.patientRepo.GetByID(ctx, enc.PatientID)
	if err != nil {
		return nil, err
	}
	var status string
	if patient != nil {
		status = patient.Status
	}
	return toEncounterResponse(enc, status), nil
}

// ListByPatient lista los encuentros de un paciente, el más reciente primero.
func (uc *EncounterUseCase) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]dto.EncounterResponse, error) {
	patient, err := uc.patientRepo.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.encounterRepo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EncounterResponse, 0, len(list))
	for _, enc := range list {
		out = append(out, *toEncounterResponse(enc, patient.Status))
	}
	return out, nil
}

func writePatientStatus(ctx context.Context, patientRepo repository.PatientRepository, enc *entity.HandledPatient, visit *time.Time) (string, error) {
	status := derive.StatusFor(enc.Status, enc.Notes)
	if err := patientRepo.UpdateStatus(ctx, enc.PatientID, status, visit); err != nil {
		return "", err
	}
	return status, nil
}

// LabAlertPrefix inicio del mensaje de una solicitud de laboratorio; sirve de clave de deduplicación.
func LabAlertPrefix(mrNumber string) string {
	return "Permintaan pemeriksaan lab untuk " + mrNumber
}

// EmergencyAlertPrefix inicio del mensaje de ingreso a EMERGENCY.
func EmergencyAlertPrefix(mrNumber string) string {
	return "Pasien gawat darurat " + mrNumber
}

func (uc *EncounterUseCase) emitLabAlert(ctx context.Context, patient *entity.Patient, enc *entity.HandledPatient, tests []string) {
	prefix := LabAlertPrefix(patient.MRNumber)
	uc.emit(ctx, &entity.Alert{
		Type:       "info",
		Message:    fmt.Sprintf("%s (%s): %s", prefix, patient.Name, strings.Join(tests, ", ")),
		PatientID:  patient.ID,
		Category:   entity.AlertCategoryLab,
		Priority:   enc.Priority,
		TargetRole: entity.RoleLaboratorium,
	}, prefix)
}

func (uc *EncounterUseCase) emitEmergencyAlert(ctx context.Context, patient *entity.Patient, enc *entity.HandledPatient) {
	prefix := EmergencyAlertPrefix(patient.MRNumber)
	msg := fmt.Sprintf("%s (%s)", prefix, patient.Name)
	if enc.Diagnosis != "" {
		msg += ": " + enc.Diagnosis
	}
	uc.emit(ctx, &entity.Alert{
		Type:       "critical",
		Message:    msg,
		PatientID:  patient.ID,
		Category:   entity.AlertCategoryEmergency,
		Priority:   entity.PriorityHigh,
		TargetRole: entity.RoleDokter,
	}, prefix)
}

// emit entrega la alerta al sink. Los fallos se registran y se descartan: la transacción ya hizo commit.
func (uc *EncounterUseCase) emit(ctx context.Context, alert *entity.Alert, prefix string) {
	if uc.alerts == nil {
		return
	}
	alert.ID = uuid.New().String()
	alert.CreatedAt = uc.now()
	created, err := uc.alerts.CreateIfAbsent(ctx, alert, prefix)
	if err != nil {
		uc.recorder.AlertFailed(alert.Category)
		uc.log.Warn().Err(err).
			Str("patient_id", alert.PatientID).
			Str("category", alert.Category).
			Str("target_role", alert.TargetRole).
			Msg("no se pudo registrar la alerta")
		return
	}
	uc.recorder.AlertEmitted(alert.Category, created)
	if !created {
		uc.log.Debug().
			Str("patient_id", alert.PatientID).
			Str("category", alert.Category).
			Msg("alerta duplicada omitida")
	}
}

func normalizePriority(p string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(p)) {
	case "":
		return entity.PriorityNormal, nil
	case entity.PriorityNormal:
		return entity.PriorityNormal, nil
	case entity.PriorityUrgent:
		return entity.PriorityUrgent, nil
	case entity.PriorityHigh:
		return entity.PriorityHigh, nil
	}
	return "", domain.Invalid("priority", "debe ser NORMAL, URGENT o HIGH")
}

func toEncounterResponse(enc *entity.HandledPatient, patientStatus string) *dto.EncounterResponse {
	return &dto.EncounterResponse{
		ID:            enc.ID,
		PatientID:     enc.PatientID,
		HandledBy:     enc.HandledBy,
		HandledDate:   enc.HandledDate,
		Status:        enc.Status,
		Diagnosis:     enc.Diagnosis,
		Notes:         enc.Notes,
		Priority:      enc.Priority,
		NextVisitDate: enc.NextVisitDate,
		PatientStatus: patientStatus,
		CreatedAt:     enc.CreatedAt,
		UpdatedAt:     enc.UpdatedAt,
	}
}
