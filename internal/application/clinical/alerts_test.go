package clinical_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hospital-api/internal/application/clinical"
	"github.com/jhoicas/hospital-api/internal/application/dto"
	"github.com/jhoicas/hospital-api/internal/domain"
	"github.com/jhoicas/hospital-api/internal/domain/entity"
)

func TestAlerts_BandejaPorRol(t *testing.T) {
	ctx := context.Background()
	store, uc := newEncounterFixture(t, nil)
	alerts := clinical.NewAlertUseCase(store.Alerts())

	_, err := uc.Create(ctx, "dokter-1", dto.CreateEncounterRequest{
		PatientID: patientID, Status: entity.EncounterStatusEmergency, LabTests: []string{"Darah lengkap"},
	})
	require.NoError(t, err)

	lab, err := alerts.ListUnread(ctx, "laboratorium", 20, 0)
	require.NoError(t, err)
	require.Len(t, lab, 1)
	assert.Equal(t, entity.AlertCategoryLab, lab[0].Category)

	dokter, err := alerts.ListUnread(ctx, "dokter", 20, 0)
	require.NoError(t, err)
	require.Len(t, dokter, 1)
	assert.Equal(t, entity.AlertCategoryEmergency, dokter[0].Category)

	all, err := alerts.ListUnread(ctx, "admin", 20, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, alerts.MarkRead(ctx, lab[0].ID))
	lab, err = alerts.ListUnread(ctx, "laboratorium", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, lab)

	assert.ErrorIs(t, alerts.MarkRead(ctx, "no-existe"), domain.ErrNotFound)
	assert.ErrorIs(t, alerts.MarkRead(ctx, ""), domain.ErrInvalidInput)
}
