package clinical_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/hospital-api/internal/domain/clinical"
	"github.com/jhoicas/hospital-api/internal/domain/entity"
)

func TestStatusFor_Tabla(t *testing.T) {
	cases := []struct {
		name      string
		encounter string
		notes     string
		want      string
	}{
		{"antrian", entity.EncounterStatusAntrian, "", entity.PatientStatusAktif},
		{"sedang ditangani", entity.EncounterStatusSedangDitangani, "", entity.PatientStatusAktif},
		{"konsultasi", entity.EncounterStatusKonsultasi, "", entity.PatientStatusRawatJalan},
		{"stabil", entity.EncounterStatusStabil, "kontrol minggu depan", entity.PatientStatusRawatJalan},
		{"observasi", entity.EncounterStatusObservasi, "apa saja", entity.PatientStatusRawatInap},
		{"emergency", entity.EncounterStatusEmergency, "", entity.PatientStatusRawatInap},
		{"rujuk keluar", entity.EncounterStatusRujukKeluar, "", entity.PatientStatusRujukKeluar},
		{"selesai pulang paksa", entity.EncounterStatusSelesai, "pasien pulang paksa", entity.PatientStatusPulangPaksa},
		{"selesai mayúsculas", entity.EncounterStatusSelesai, "Keluarga minta PULANG PAKSA", entity.PatientStatusPulangPaksa},
		{"selesai espacios", entity.EncounterStatusSelesai, "pulang\t  paksa", entity.PatientStatusPulangPaksa},
		{"selesai vacío", entity.EncounterStatusSelesai, "", entity.PatientStatusPulang},
		{"selesai otras notas", entity.EncounterStatusSelesai, "pulang sehat", entity.PatientStatusPulang},
		{"meninggal", entity.EncounterStatusMeninggal, "", entity.PatientStatusMeninggal},
		{"vacío", "", "", entity.PatientStatusAktif},
		{"desconocido", "RAWAT", "", entity.PatientStatusAktif},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, clinical.StatusFor(tc.encounter, tc.notes))
		})
	}
}

func TestStatusFor_ObservasiIgnoraNotas(t *testing.T) {
	assert.Equal(t, entity.PatientStatusRawatInap, clinical.StatusFor(entity.EncounterStatusObservasi, "pulang paksa"))
}

func TestStatusFor_Concurrente(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, entity.PatientStatusPulangPaksa, clinical.StatusFor(entity.EncounterStatusSelesai, "Pasien PULANG  PAKSA"))
				assert.Equal(t, entity.PatientStatusPulang, clinical.StatusFor(entity.EncounterStatusSelesai, "kontrol minggu depan"))
			}
		}()
	}
	wg.Wait()
}
