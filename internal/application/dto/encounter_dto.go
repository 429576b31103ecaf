package dto

import "time"

// CreateEncounterRequest body para POST /api/encounters. Status vacío = ANTRIAN.
type CreateEncounterRequest struct {
	PatientID     string     `json:"patient_id"`
	Status        string     `json:"status"`
	Diagnosis     string     `json:"diagnosis"`
	Notes         string     `json:"notes"`
	Priority      string     `json:"priority"`
	HandledDate   *time.Time `json:"handled_date"`
	NextVisitDate *time.Time `json:"next_visit_date"`
	LabTests      []string   `json:"lab_tests"`
}

// UpdateEncounterRequest body para PUT /api/encounters/:id. Los campos nil se conservan;
// Status nil no reinicia a ANTRIAN (ver clinical.EncounterUseCase.Update).
type UpdateEncounterRequest struct {
	Status        *string    `json:"status"`
	Diagnosis     *string    `json:"diagnosis"`
	Notes         *string    `json:"notes"`
	Priority      *string    `json:"priority"`
	NextVisitDate *time.Time `json:"next_visit_date"`
	LabTests      []string   `json:"lab_tests"`
}

// EncounterResponse salida de un encuentro con el status derivado del paciente.
type EncounterResponse struct {
	ID            string     `json:"id"`
	PatientID     string     `json:"patient_id"`
	HandledBy     string     `json:"handled_by"`
	HandledDate   time.Time  `json:"handled_date"`
	Status        string     `json:"status"`
	Diagnosis     string     `json:"diagnosis"`
	Notes         string     `json:"notes"`
	Priority      string     `json:"priority"`
	NextVisitDate *time.Time `json:"next_visit_date,omitempty"`
	PatientStatus string     `json:"patient_status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// AlertResponse salida de una alerta.
type AlertResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	PatientID  string    `json:"patient_id"`
	Category   string    `json:"category"`
	Priority   string    `json:"priority"`
	TargetRole string    `json:"target_role"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}
