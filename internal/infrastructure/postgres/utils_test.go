package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hospital-api/internal/domain"
	"github.com/jhoicas/hospital-api/internal/domain/entity"
)

func TestTranslate_CodigosPostgres(t *testing.T) {
	fk := errors.New("fk")
	cases := []struct {
		code string
		want error
	}{
		{"23505", domain.ErrDuplicate},
		{"23503", fk},
		{"23514", domain.ErrInvalidInput},
		{"22P02", domain.ErrNotFound},
	}
	for _, c := range cases {
		err := fmt.Errorf("query: %w", &pgconn.PgError{Code: c.code})
		assert.ErrorIs(t, translate(err, fk), c.want, c.code)
	}

	other := &pgconn.PgError{Code: "40001"}
	assert.Same(t, other, translate(other, fk))
	assert.NoError(t, translate(nil, fk))
}

func TestIsUUID(t *testing.T) {
	assert.True(t, isUUID("5f0c6c1e-8a4b-4f7e-9d1a-2b3c4d5e6f70"))
	assert.False(t, isUUID("abc"))
	assert.False(t, isUUID(""))
	assert.False(t, isUUID("5f0c6c1e-8a4b-4f7e-9d1a"))
}

// Un id que no es UUID nunca llega al driver: Querier nil demuestra que no hay consulta.
func TestRepos_IDMalFormadoEsNoEncontrado(t *testing.T) {
	ctx := context.Background()
	const bad = "abc"

	drugs := NewDrugRepository(nil)
	d, err := drugs.GetByID(ctx, bad)
	require.NoError(t, err)
	assert.Nil(t, d)
	d, err = drugs.GetForUpdate(ctx, bad)
	require.NoError(t, err)
	assert.Nil(t, d)
	assert.ErrorIs(t, drugs.Update(ctx, &entity.Drug{ID: bad}), domain.ErrNotFound)
	assert.ErrorIs(t, drugs.UpdateStock(ctx, bad, 1), domain.ErrNotFound)
	assert.ErrorIs(t, drugs.Delete(ctx, bad), domain.ErrNotFound)
	used, err := drugs.HasHistory(ctx, bad)
	require.NoError(t, err)
	assert.False(t, used)

	txs := NewDrugTransactionRepository(nil)
	tx, err := txs.GetByID(ctx, bad)
	require.NoError(t, err)
	assert.Nil(t, tx)
	tx, err = txs.GetForUpdate(ctx, bad)
	require.NoError(t, err)
	assert.Nil(t, tx)
	assert.ErrorIs(t, txs.UpdateHeader(ctx, &entity.DrugTransaction{ID: bad}), domain.ErrNotFound)

	patients := NewPatientRepository(nil)
	p, err := patients.GetByID(ctx, bad)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.ErrorIs(t, patients.Update(ctx, &entity.Patient{ID: bad}), domain.ErrNotFound)
	assert.ErrorIs(t, patients.UpdateStatus(ctx, bad, entity.PatientStatusAktif, nil), domain.ErrNotFound)

	encounters := NewHandledPatientRepository(nil)
	e, err := encounters.GetByID(ctx, bad)
	require.NoError(t, err)
	assert.Nil(t, e)
	e, err = encounters.LatestByPatient(ctx, bad, "")
	require.NoError(t, err)
	assert.Nil(t, e)
	list, err := encounters.ListByPatient(ctx, bad, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.ErrorIs(t, encounters.Update(ctx, &entity.HandledPatient{ID: bad}), domain.ErrNotFound)
	assert.ErrorIs(t, encounters.Delete(ctx, bad), domain.ErrNotFound)

	assert.ErrorIs(t, NewAlertRepository(nil).MarkRead(ctx, bad), domain.ErrNotFound)

	movements := NewStockMovementRepository(nil)
	movs, err := movements.ListByDrug(ctx, bad, nil, nil, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, movs)
	movs, err = movements.ListByTransaction(ctx, bad)
	require.NoError(t, err)
	assert.Empty(t, movs)
}
