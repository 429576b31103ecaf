package pharmacy_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hospital-api/internal/application/dto"
	"github.com/jhoicas/hospital-api/internal/application/pharmacy"
	"github.com/jhoicas/hospital-api/internal/domain"
	"github.com/jhoicas/hospital-api/internal/domain/entity"
	"github.com/jhoicas/hospital-api/internal/domain/repository"
	"github.com/jhoicas/hospital-api/internal/infrastructure/memory"
)

const (
	patientID = "pasien-1"
	drugX     = "drug-x"
	drugY     = "drug-y"
)

type fixture struct {
	store    *memory.Store
	uc       *pharmacy.TransactionUseCase
	recorder *countingRecorder
}

func newFixture(t *testing.T, stocks map[string]int) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Patients().Create(ctx, &entity.Patient{
		ID: patientID, Name: "Budi", Status: entity.PatientStatusAktif,
	}))
	for id, stock := range stocks {
		require.NoError(t, store.Drugs().Create(ctx, &entity.Drug{
			ID: id, Name: "Obat " + id, Stock: stock, Price: decimal.NewFromInt(1500), Unit: "tablet",
		}))
	}
	rec := &countingRecorder{}
	uc := pharmacy.NewTransactionUseCase(store, pharmacy.NewLedger(), store.Transactions(), store.Patients(), rec)
	return &fixture{store: store, uc: uc, recorder: rec}
}

func (f *fixture) stock(t *testing.T, drugID string) int {
	t.Helper()
	d, err := f.store.Drugs().GetByID(context.Background(), drugID)
	require.NoError(t, err)
	require.NotNil(t, d)
	return d.Stock
}

func items(pairs ...any) []dto.DrugTransactionItemRequest {
	out := make([]dto.DrugTransactionItemRequest, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, dto.DrugTransactionItemRequest{DrugID: pairs[i].(string), Quantity: pairs[i+1].(int)})
	}
	return out
}

func TestTransaction_EscenarioCompleto(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{drugX: 10})

	tx1, err := f.uc.Create(ctx, "apoteker-1", dto.CreateDrugTransactionRequest{
		PatientID: patientID, Items: items(drugX, 4), Mode: dto.DispenseModeCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DrugTxStatusCompleted, tx1.Status)
	assert.NotNil(t, tx1.CompletedAt)
	assert.Equal(t, 6, f.stock(t, drugX))

	cancelled, err := f.uc.Cancel(ctx, "apoteker-1", tx1.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DrugTxStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, 10, f.stock(t, drugX))

	tx2, err := f.uc.Create(ctx, "dokter-1", dto.CreateDrugTransactionRequest{
		PatientID: patientID, Items: items(drugX, 4),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DrugTxStatusPending, tx2.Status)
	assert.Equal(t, 10, f.stock(t, drugX))

	_, err = f.uc.Complete(ctx, "apoteker-1", tx2.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, f.stock(t, drugX))

	edited, err := f.uc.EditItems(ctx, "apoteker-1", tx2.ID, dto.EditDrugTransactionItemsRequest{Items: items(drugX, 7)})
	require.NoError(t, err)
	require.Len(t, edited.Items, 1)
	assert.Equal(t, 7, edited.Items[0].Quantity)
	assert.Equal(t, 3, f.stock(t, drugX))

	_, err = f.uc.EditItems(ctx, "apoteker-1", tx2.ID, dto.EditDrugTransactionItemsRequest{Items: items(drugX, 12)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, drugX, insufficient.DrugID)
	assert.Equal(t, "Obat "+drugX, insufficient.DrugName)
	assert.Equal(t, 3, insufficient.Available)
	assert.Equal(t, 5, insufficient.Required)
	assert.Equal(t, 3, f.stock(t, drugX))

	got, err := f.uc.GetByID(ctx, tx2.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Items[0].Quantity, "las líneas no cambian tras un fallo")
}

func TestTransaction_CreateCompletedTodoONada(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{drugX: 5, drugY: 1})

	_, err := f.uc.Create(ctx, "apoteker-1", dto.CreateDrugTransactionRequest{
		PatientID: patientID, Items: items(drugX, 3, drugY, 2), Mode: dto.DispenseModeCompleted,
	})
	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, drugY, insufficient.DrugID)
	assert.Equal(t, 1, insufficient.Available)
	assert.Equal(t, 2, insufficient.Required)

	assert.Equal(t, 5, f.stock(t, drugX))
	assert.Equal(t, 1, f.stock(t, drugY))

	list, err := f.uc.List(ctx, repository.DrugTransactionFilter{PatientID: patientID}, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.Equal(t, 1, f.recorder.insufficient)
}

func TestTransaction_MedicamentoRepetidoSeAgrega(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{drugX: 5})

	_, err := f.uc.Create(ctx, "apoteker-1", dto.CreateDrugTransactionRequest{
		PatientID: patientID, Items: items(drugX, 3, drugX, 3), Mode: dto.DispenseModeCompleted,
	})
	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 6, insufficient.Required)
	assert.Equal(t, 5, f.stock(t, drugX))
}

func TestTransaction_CompleteRevalidaStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{drugX: 5})

	pending, err := f.uc.Create(ctx, "dokter-1", dto.CreateDrugTransactionRequest{
		PatientID: patientID, Items: items(drugX, 4),
	})
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, "apoteker-1", dto.CreateDrugTransactionRequest{
		PatientID: patientID, Items: items(drugX, 3), Mode: dto.DispenseModeCompleted,
	})
	require.NoError(t, err)

	_, err = f.uc.Complete(ctx, "apoteker-1", pending.ID)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 2, f.stock(t, drugX))

	got, err := f.uc.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DrugTxStatusPending, got.Status)
	assert.Nil(t, got.CompletedAt)
}

func TestTransaction_TransicionesInvalidas(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{drugX: 10})

	done, err := f.uc.Create(ctx, "apoteker-1", dto.CreateDrugTransactionRequest{
		PatientID: patientID, Items: items(drugX, 2), Mode: dto.DispenseModeCompleted,
	})
	require.NoError(t, err)

	_, err = f.uc.Complete(ctx, "apoteker-1", done.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, 8, f.stock(t, drugX))

	_, err = f.uc.Cancel(ctx, "apoteker-1", done.ID)
	require.NoError(t, err)

	_, err = f.uc.Cancel(ctx, "apoteker-1", done.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	assert.Equal(t, 10, f.stock(t, drugX))

	_, err = f.uc.EditItems(ctx, "apoteker-1", done.ID, dto.EditDrugTransactionItemsRequest{Items: items(drugX, 1)})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.uc.Complete(ctx, "apoteker-1", done.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, 10, f.stock(t, drugX))

	_, err = f.uc.Complete(ctx, "apoteker-1", "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransaction_CancelPendingNoTocaStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{drugX: 10})

	pending, err := f.uc.Create(ctx, "dokter-1", dto.CreateDrugTransactionRequest{
		PatientID: patientID, Items: items(drugX, 4),
	})
	require.NoError(t, err)
	_, err = f.uc.Cancel(ctx, "apoteker-1", pending.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, f.stock(t, drugX))

	movs, err := f.store.Movements().ListByTransaction(ctx, pending.ID)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestTransaction_EditDevuelveStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{drugX: 10, drugY: 10})

	tx, err := f.uc.Create(ctx, "apoteker-1", dto.CreateDrugTransactionRequest{
		PatientID: patientID, Items: items(drugX, 5), Mode: dto.DispenseModeCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, f.stock(t, drugX))

	_, err = f.uc.EditItems(ctx, "apoteker-1", tx.ID, dto.EditDrugTransactionItemsRequest{Items: items(drugX, 3)})
	require.NoError(t, err)
	assert.Equal(t, 7, f.stock(t, drugX))

	notes := "ganti obat"
	edited, err := f.uc.EditItems(ctx, "apoteker-1", tx.ID, dto.EditDrugTransactionItemsRequest{
		Items: items(drugY, 4), Notes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, f.stock(t, drugX))
	assert.Equal(t, 6, f.stock(t, drugY))
	assert.Equal(t, notes, edited.Notes)
	require.Len(t, edited.Items, 1)
	assert.Equal(t, drugY, edited.Items[0].DrugID)
}

func TestTransaction_EditPendingSoloReemplazaLineas(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{drugX: 2})

	pending, err := f.uc.Create(ctx, "dokter-1", dto.CreateDrugTransactionRequest{
		PatientID: patientID, Items: items(drugX, 1), Notes: "awal",
	})
	require.NoError(t, err)

	// Una PENDING no reserva: puede pedir más de lo disponible hasta que se complete.
	edited, err := f.uc.EditItems(ctx, "dokter-1", pending.ID, dto.EditDrugTransactionItemsRequest{Items: items(drugX, 5)})
	require.NoError(t, err)
	assert.Equal(t, 5, edited.Items[0].Quantity)
	assert.Equal(t, "awal", edited.Notes)
	assert.Equal(t, 2, f.stock(t, drugX))
}

func TestTransaction_LedgerCerrado(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{drugX: 20, drugY: 20})

	a, err := f.uc.Create(ctx, "apoteker-1", dto.CreateDrugTransactionRequest{
		PatientID: patientID, Items: items(drugX, 4, drugY, 2), Mode: dto.DispenseModeCompleted,
	})
	require.NoError(t, err)
	b, err := f.uc.Create(ctx, "dokter-1", dto.CreateDrugTransactionRequest{
		PatientID: patientID, Items: items(drugY, 6),
	})
	require.NoError(t, err)
	_, err = f.uc.Complete(ctx, "apoteker-1", b.ID)
	require.NoError(t, err)
	_, err = f.uc.EditItems(ctx, "apoteker-1", a.ID, dto.EditDrugTransactionItemsRequest{Items: items(drugX, 1, drugY, 3)})
	require.NoError(t, err)
	_, err = f.uc.Cancel(ctx, "apoteker-1", b.ID)
	require.NoError(t, err)

	for id, initial := range map[string]int{drugX: 20, drugY: 20} {
		movs, err := f.store.Movements().ListByDrug(ctx, id, nil, nil, 0, 0)
		require.NoError(t, err)
		sum := 0
		for _, m := range movs {
			sum += m.Quantity
			assert.Equal(t, initial+sum, m.BalanceAfter)
		}
		assert.Equal(t, initial+sum, f.stock(t, id), id)
	}
	assert.Equal(t, 19, f.stock(t, drugX))
	assert.Equal(t, 17, f.stock(t, drugY))
}

func TestTransaction_CompleteConcurrente(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{drugX: 10})

	var ids []string
	for i := 0; i < 2; i++ {
		tx, err := f.uc.Create(ctx, "dokter-1", dto.CreateDrugTransactionRequest{
			PatientID: patientID, Items: items(drugX, 6),
		})
		require.NoError(t, err)
		ids = append(ids, tx.ID)
	}

	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			<-start
			_, errs[i] = f.uc.Complete(ctx, "apoteker-1", id)
		}(i, id)
	}
	close(start)
	wg.Wait()

	ok, insufficient := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, 4, f.stock(t, drugX))
}

func TestTransaction_Idempotencia(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{drugX: 10})
	req := dto.CreateDrugTransactionRequest{
		PatientID: patientID, Items: items(drugX, 4), Mode: dto.DispenseModeCompleted, IdempotencyKey: "resep-123",
	}

	first, err := f.uc.Create(ctx, "apoteker-1", req)
	require.NoError(t, err)
	second, err := f.uc.Create(ctx, "apoteker-1", req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 6, f.stock(t, drugX))

	require.NoError(t, f.store.Patients().Create(ctx, &entity.Patient{ID: "pasien-2", Name: "Siti", Status: entity.PatientStatusAktif}))
	other := req
	other.PatientID = "pasien-2"
	_, err = f.uc.Create(ctx, "apoteker-1", other)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 6, f.stock(t, drugX))
}

func TestTransaction_IdempotenciaConcurrente(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{drugX: 10})
	req := dto.CreateDrugTransactionRequest{
		PatientID: patientID, Items: items(drugX, 4), Mode: dto.DispenseModeCompleted, IdempotencyKey: "k",
	}

	const n = 8
	ids := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			out, err := f.uc.Create(ctx, "apoteker-1", req)
			errs[i] = err
			if out != nil {
				ids[i] = out.ID
			}
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Equal(t, 6, f.stock(t, drugX))
	assert.Equal(t, 4, f.recorder.reserved)

	movs, err := f.store.Movements().ListByTransaction(ctx, ids[0])
	require.NoError(t, err)
	assert.Len(t, movs, 1)
}

func TestTransaction_Validaciones(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{drugX: 10})

	cases := []struct {
		name string
		req  dto.CreateDrugTransactionRequest
		want error
	}{
		{"sin líneas", dto.CreateDrugTransactionRequest{PatientID: patientID}, domain.ErrInvalidInput},
		{"cantidad cero", dto.CreateDrugTransactionRequest{PatientID: patientID, Items: items(drugX, 0)}, domain.ErrInvalidInput},
		{"cantidad negativa", dto.CreateDrugTransactionRequest{PatientID: patientID, Items: items(drugX, -2)}, domain.ErrInvalidInput},
		{"sin paciente", dto.CreateDrugTransactionRequest{Items: items(drugX, 1)}, domain.ErrInvalidInput},
		{"modo inválido", dto.CreateDrugTransactionRequest{PatientID: patientID, Items: items(drugX, 1), Mode: "DRAFT"}, domain.ErrInvalidInput},
		{"paciente inexistente", dto.CreateDrugTransactionRequest{PatientID: "nadie", Items: items(drugX, 1)}, domain.ErrNotFound},
		{"medicamento inexistente", dto.CreateDrugTransactionRequest{PatientID: patientID, Items: items("nada", 1)}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Create(ctx, "apoteker-1", tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, 10, f.stock(t, drugX))

	var ve *domain.ValidationError
	_, err := f.uc.Create(ctx, "apoteker-1", dto.CreateDrugTransactionRequest{PatientID: patientID, Items: items(drugX, 0)})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "items.quantity", ve.Field)
}

func TestTransaction_ListFiltraPorEstado(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]int{drugX: 10})

	_, err := f.uc.Create(ctx, "dokter-1", dto.CreateDrugTransactionRequest{PatientID: patientID, Items: items(drugX, 1)})
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, "apoteker-1", dto.CreateDrugTransactionRequest{
		PatientID: patientID, Items: items(drugX, 1), Mode: dto.DispenseModeCompleted,
	})
	require.NoError(t, err)

	list, err := f.uc.List(ctx, repository.DrugTransactionFilter{Status: entity.DrugTxStatusPending}, 20, 0)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, entity.DrugTxStatusPending, list.Items[0].Status)
	assert.Equal(t, 1, list.Page.Total)

	_, err = f.uc.List(ctx, repository.DrugTransactionFilter{Status: "LUNAS"}, 20, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, 1, f.recorder.reserved)
	assert.Equal(t, map[string]int{entity.DrugTxStatusPending: 1, entity.DrugTxStatusCompleted: 1}, f.recorder.transitions)
}

type countingRecorder struct {
	mu           sync.Mutex
	reserved     int
	released     int
	insufficient int
	transitions  map[string]int
}

func (r *countingRecorder) StockReserved(units int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reserved += units
}

func (r *countingRecorder) StockReleased(units int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released += units
}

func (r *countingRecorder) InsufficientStock() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insufficient++
}

func (r *countingRecorder) TransactionTransition(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.transitions == nil {
		r.transitions = map[string]int{}
	}
	r.transitions[status]++
}
