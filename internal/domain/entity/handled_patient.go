package entity

import "time"

// Estados de un encuentro (episodio de atención).
const (
	EncounterStatusAntrian         = "ANTRIAN"
	EncounterStatusSedangDitangani = "SEDANG_DITANGANI"
	EncounterStatusKonsultasi      = "KONSULTASI"
	EncounterStatusStabil          = "STABIL"
	EncounterStatusObservasi       = "OBSERVASI"
	EncounterStatusEmergency       = "EMERGENCY"
	EncounterStatusRujukKeluar     = "RUJUK_KELUAR"
	EncounterStatusSelesai         = "SELESAI"
	EncounterStatusMeninggal       = "MENINGGAL"
)

// Prioridades de atención.
const (
	PriorityNormal = "NORMAL"
	PriorityUrgent = "URGENT"
	PriorityHigh   = "HIGH"
)

// HandledPatient un episodio en el que un miembro del personal atiende a un paciente.
// Un paciente acumula varios a lo largo del tiempo; su estado global se deriva del último escrito.
type HandledPatient struct {
	ID            string
	PatientID     string
	HandledBy     string // UserID del personal
	HandledDate   time.Time
	Status        string
	Diagnosis     string
	Notes         string
	Priority      string
	NextVisitDate *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

var encounterStatuses = map[string]bool{
	EncounterStatusAntrian:         true,
	EncounterStatusSedangDitangani: true,
	EncounterStatusKonsultasi:      true,
	EncounterStatusStabil:          true,
	EncounterStatusObservasi:       true,
	EncounterStatusEmergency:       true,
	EncounterStatusRujukKeluar:     true,
	EncounterStatusSelesai:         true,
	EncounterStatusMeninggal:       true,
}

// IsValidEncounterStatus indica si s es un estado de encuentro conocido.
func IsValidEncounterStatus(s string) bool {
	return encounterStatuses[s]
}
