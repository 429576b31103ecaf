package clinical

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/hospital-api/internal/domain/entity"
)

// forcedDischargeMarker marca en las notas de un SELESAI que el paciente salió contra indicación médica.
const forcedDischargeMarker = "pulang paksa"

// StatusFor deriva el estado global del paciente a partir del estado del encuentro (servicio de dominio puro).
//
//	ANTRIAN, SEDANG_DITANGANI -> AKTIF
//	KONSULTASI, STABIL        -> RAWAT_JALAN
//	OBSERVASI, EMERGENCY      -> RAWAT_INAP
//	RUJUK_KELUAR              -> RUJUK_KELUAR
//	SELESAI                   -> PULANG_PAKSA si las notas dicen "pulang paksa", si no PULANG
//	MENINGGAL                 -> MENINGGAL
//	cualquier otro / vacío    -> AKTIF
func StatusFor(encounterStatus, notes string) string {
	switch encounterStatus {
	case entity.EncounterStatusAntrian, entity.EncounterStatusSedangDitangani:
		return entity.PatientStatusAktif
	case entity.EncounterStatusKonsultasi, entity.EncounterStatusStabil:
		return entity.PatientStatusRawatJalan
	case entity.EncounterStatusObservasi, entity.EncounterStatusEmergency:
		return entity.PatientStatusRawatInap
	case entity.EncounterStatusRujukKeluar:
		return entity.PatientStatusRujukKeluar
	case entity.EncounterStatusSelesai:
		if mentionsForcedDischarge(notes) {
			return entity.PatientStatusPulangPaksa
		}
		return entity.PatientStatusPulang
	case entity.EncounterStatusMeninggal:
		return entity.PatientStatusMeninggal
	}
	return entity.PatientStatusAktif
}

// mentionsForcedDischarge compara sin distinguir mayúsculas y colapsando espacios ("Pulang   PAKSA").
func mentionsForcedDischarge(notes string) bool {
	if notes == "" {
		return false
	}
	// Un Caser guarda estado; no se puede compartir entre goroutines.
	normalized := cases.Fold().String(norm.NFKC.String(notes))
	normalized = strings.Join(strings.Fields(normalized), " ")
	return strings.Contains(normalized, forcedDischargeMarker)
}
