package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hospital-api/internal/application/dto"
	"github.com/jhoicas/hospital-api/internal/application/pharmacy"
	"github.com/jhoicas/hospital-api/internal/application/usecase"
	"github.com/jhoicas/hospital-api/internal/domain"
	"github.com/jhoicas/hospital-api/internal/infrastructure/memory"
)

func TestDrugUseCase_CRUD(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := usecase.NewDrugUseCase(store.Drugs(), store.Movements())

	created, err := uc.Create(ctx, dto.CreateDrugRequest{Name: " Paracetamol 500mg ", Stock: 100, Price: decimal.RequireFromString("1250.50"), Unit: "tablet"})
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol 500mg", created.Name)
	assert.Equal(t, 100, created.Stock)

	_, err = uc.Create(ctx, dto.CreateDrugRequest{Name: "paracetamol 500mg", Stock: 1})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, dto.CreateDrugRequest{Name: "Amoxicillin", Stock: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	name := "Paracetamol 500 mg"
	price := decimal.NewFromInt(1300)
	updated, err := uc.Update(ctx, created.ID, dto.UpdateDrugRequest{Name: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.True(t, price.Equal(updated.Price))
	assert.Equal(t, 100, updated.Stock)

	list, err := uc.List(ctx, "500", 20, 0)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Page.Total)

	require.NoError(t, uc.Delete(ctx, created.ID))
	_, err = uc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDrugUseCase_DeleteConHistorial(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	drugs := usecase.NewDrugUseCase(store.Drugs(), store.Movements())
	patients := usecase.NewPatientUseCase(store.Patients())
	txs := pharmacy.NewTransactionUseCase(store, pharmacy.NewLedger(), store.Transactions(), store.Patients(), nil)

	drug, err := drugs.Create(ctx, dto.CreateDrugRequest{Name: "Ibuprofen", Stock: 10})
	require.NoError(t, err)
	p, err := patients.Create(ctx, dto.CreatePatientRequest{Name: "Ani"})
	require.NoError(t, err)
	_, err = txs.Create(ctx, "apoteker-1", dto.CreateDrugTransactionRequest{
		PatientID: p.ID,
		Items:     []dto.DrugTransactionItemRequest{{DrugID: drug.ID, Quantity: 2}},
		Mode:      dto.DispenseModeCompleted,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, drugs.Delete(ctx, drug.ID), domain.ErrConflict)

	movs, err := drugs.Movements(ctx, drug.ID, nil, nil, 50, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, -2, movs[0].Quantity)
	assert.Equal(t, 8, movs[0].BalanceAfter)

	_, err = drugs.Movements(ctx, "nada", nil, nil, 50, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
