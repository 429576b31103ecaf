package dto

import "time"

// CreatePatientRequest entrada para registrar un paciente. El status inicial siempre es AKTIF.
type CreatePatientRequest struct {
	Name      string     `json:"name" validate:"required,min=1,max=200"`
	NIK       string     `json:"nik"`
	BirthDate *time.Time `json:"birth_date"`
	Gender    string     `json:"gender" validate:"omitempty,oneof=L P"`
	Address   string     `json:"address"`
	Phone     string     `json:"phone"`
	BloodType string     `json:"blood_type"`
}

// UpdatePatientRequest datos demográficos; el status no es editable.
type UpdatePatientRequest struct {
	Name      *string    `json:"name"`
	NIK       *string    `json:"nik"`
	BirthDate *time.Time `json:"birth_date"`
	Gender    *string    `json:"gender"`
	Address   *string    `json:"address"`
	Phone     *string    `json:"phone"`
	BloodType *string    `json:"blood_type"`
}

// PatientResponse salida de un paciente.
type PatientResponse struct {
	ID        string     `json:"id"`
	MRNumber  string     `json:"mr_number"`
	Name      string     `json:"name"`
	NIK       string     `json:"nik,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Gender    string     `json:"gender,omitempty"`
	Address   string     `json:"address,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	BloodType string     `json:"blood_type,omitempty"`
	Status    string     `json:"status"`
	LastVisit *time.Time `json:"last_visit,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// PatientListResponse lista paginada de pacientes.
type PatientListResponse struct {
	Items []PatientResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
