package entity

import "time"

// Estados globales del paciente. Los escribe únicamente la máquina de estados de encuentros.
const (
	PatientStatusAktif       = "AKTIF"
	PatientStatusRawatJalan  = "RAWAT_JALAN"
	PatientStatusRawatInap   = "RAWAT_INAP"
	PatientStatusRujukKeluar = "RUJUK_KELUAR"
	PatientStatusPulang      = "PULANG"
	PatientStatusPulangPaksa = "PULANG_PAKSA"
	PatientStatusMeninggal   = "MENINGGAL"
)

// Patient representa un paciente registrado (rekam medis).
type Patient struct {
	ID        string
	MRNumber  string // número de rekam medis, único y secuencial (RM-000001)
	Name      string
	NIK       string // documento nacional
	BirthDate *time.Time
	Gender    string // L, P
	Address   string
	Phone     string
	BloodType string
	Status    string
	LastVisit *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
