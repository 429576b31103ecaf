package pharmacy

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/hospital-api/internal/application/dto"
	"github.com/jhoicas/hospital-api/internal/domain"
	"github.com/jhoicas/hospital-api/internal/domain/entity"
	"github.com/jhoicas/hospital-api/internal/domain/repository"
)

// TransactionUseCase orquesta el ciclo de vida de las transacciones de medicamentos
// (PENDING -> COMPLETED -> CANCELLED, PENDING -> CANCELLED) y sus llamadas al ledger,
// siempre dentro de una única transacción de BD por operación.
type TransactionUseCase struct {
	txRunner    TxRunner
	ledger      *Ledger
	txRepo      repository.DrugTransactionRepository
	patientRepo repository.PatientRepository
	recorder    Recorder
	now         func() time.Time
}

// NewTransactionUseCase construye el caso de uso. recorder puede ser nil.
func NewTransactionUseCase(
	txRunner TxRunner,
	ledger *Ledger,
	txRepo repository.DrugTransactionRepository,
	patientRepo repository.PatientRepository,
	recorder Recorder,
) *TransactionUseCase {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &TransactionUseCase{
		txRunner:    txRunner,
		ledger:      ledger,
		txRepo:      txRepo,
		patientRepo: patientRepo,
		recorder:    recorder,
		now:         time.Now,
	}
}

// Create registra una transacción. Mode PENDING no toca el stock; COMPLETED reserva todas las líneas
// junto con la inserción y falla entera si alguna no alcanza (no hay dispensación parcial).
// Con IdempotencyKey, un reintento devuelve la transacción ya creada sin volver a descontar.
func (uc *TransactionUseCase) Create(ctx context.Context, userID string, in dto.CreateDrugTransactionRequest) (*dto.DrugTransactionResponse, error) {
	mode := in.Mode
	if mode == "" {
		mode = dto.DispenseModePending
	}
	if mode != dto.DispenseModePending && mode != dto.DispenseModeCompleted {
		return nil, domain.Invalid("mode", "debe ser PENDING o COMPLETED")
	}
	if in.PatientID == "" {
		return nil, domain.Invalid("patient_id", "es requerido")
	}
	items, err := validateItems(in.Items)
	if err != nil {
		return nil, err
	}

	if in.IdempotencyKey != "" {
		existing, err := uc.replay(ctx, in)
		if err != nil || existing != nil {
			return existing, err
		}
	}

	patient, err := uc.patientRepo.GetByID(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, domain.ErrNotFound
	}

	now := uc.now()
	t := &entity.DrugTransaction{
		ID:             uuid.New().String(),
		PatientID:      in.PatientID,
		Status:         mode,
		Notes:          in.Notes,
		IdempotencyKey: in.IdempotencyKey,
		CreatedBy:      userID,
		CreatedAt:      now,
		UpdatedAt:      now,
		Items:          items,
	}
	if mode == dto.DispenseModeCompleted {
		t.CompletedAt = &now
	}
	for i := range t.Items {
		t.Items[i].TransactionID = t.ID
	}
	quantities := entity.QuantitiesByDrug(items)

	var out *entity.DrugTransaction
	err = uc.txRunner.RunPharmacy(ctx, func(
		drugRepo repository.DrugRepository,
		txRepo repository.DrugTransactionRepository,
		movRepo repository.StockMovementRepository,
	) error {
		if err := ensureDrugsExist(ctx, drugRepo, quantities); err != nil {
			return err
		}
		// La cabecera va primero: los movimientos del ledger la referencian (FK).
		if err := txRepo.Create(ctx, t); err != nil {
			return err
		}
		if mode == dto.DispenseModeCompleted {
			ref := LedgerRef{TransactionID: t.ID, UserID: userID, Now: now}
			if err := uc.ledger.ReserveAll(ctx, drugRepo, movRepo, quantities, ref); err != nil {
				return err
			}
		}
		var err error
		out, err = txRepo.GetByID(ctx, t.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) && in.IdempotencyKey != "" {
			// Otra petición con la misma clave ganó la carrera; devolver su resultado.
			existing, rerr := uc.replay(ctx, in)
			if rerr != nil {
				return nil, rerr
			}
			if existing != nil {
				return existing, nil
			}
		}
		uc.observeFailure(err)
		return nil, err
	}
	if mode == dto.DispenseModeCompleted {
		uc.recorder.StockReserved(totalUnits(quantities))
	}
	uc.recorder.TransactionTransition(mode)
	return toTransactionResponse(out), nil
}

// replay devuelve la transacción previa con la misma clave de idempotencia, o nil si no existe.
// Una clave reutilizada para otro paciente es un conflicto.
func (uc *TransactionUseCase) replay(ctx context.Context, in dto.CreateDrugTransactionRequest) (*dto.DrugTransactionResponse, error) {
	existing, err := uc.txRepo.GetByIdempotencyKey(ctx, in.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	if existing.PatientID != in.PatientID {
		return nil, domain.ErrConflict
	}
	return toTransactionResponse(existing), nil
}

// Complete pasa una transacción PENDING a COMPLETED, revalidando cada línea contra el stock actual
// dentro de la transición. Si alguna línea no alcanza no se modifica ningún stock.
func (uc *TransactionUseCase) Complete(ctx context.Context, userID, id string) (*dto.DrugTransactionResponse, error) {
	var (
		out   *entity.DrugTransaction
		units int
	)
	err := uc.txRunner.RunPharmacy(ctx, func(
		drugRepo repository.DrugRepository,
		txRepo repository.DrugTransactionRepository,
		movRepo repository.StockMovementRepository,
	) error {
		t, err := txRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if !t.CanComplete() {
			return domain.ErrInvalidState
		}
		now := uc.now()
		quantities := entity.QuantitiesByDrug(t.Items)
		ref := LedgerRef{TransactionID: t.ID, UserID: userID, Now: now}
		if err := uc.ledger.ReserveAll(ctx, drugRepo, movRepo, quantities, ref); err != nil {
			return err
		}
		units = totalUnits(quantities)
		t.Status = entity.DrugTxStatusCompleted
		t.CompletedAt = &now
		t.UpdatedAt = now
		if err := txRepo.UpdateHeader(ctx, t); err != nil {
			return err
		}
		out, err = txRepo.GetByID(ctx, t.ID)
		return err
	})
	if err != nil {
		uc.observeFailure(err)
		return nil, err
	}
	uc.recorder.StockReserved(units)
	uc.recorder.TransactionTransition(entity.DrugTxStatusCompleted)
	return toTransactionResponse(out), nil
}

// Cancel cancela desde PENDING (solo escritura de estado) o COMPLETED (libera todas las líneas antes).
// Cancelar una transacción ya cancelada devuelve ErrAlreadyCancelled y no modifica nada.
func (uc *TransactionUseCase) Cancel(ctx context.Context, userID, id string) (*dto.DrugTransactionResponse, error) {
	var (
		out   *entity.DrugTransaction
		units int
	)
	err := uc.txRunner.RunPharmacy(ctx, func(
		drugRepo repository.DrugRepository,
		txRepo repository.DrugTransactionRepository,
		movRepo repository.StockMovementRepository,
	) error {
		t, err := txRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if t.Status == entity.DrugTxStatusCancelled {
			return domain.ErrAlreadyCancelled
		}
		if !t.CanCancel() {
			return domain.ErrInvalidState
		}
		now := uc.now()
		if t.HoldsStock() {
			quantities := entity.QuantitiesByDrug(t.Items)
			ref := LedgerRef{TransactionID: t.ID, UserID: userID, Now: now}
			if err := uc.ledger.ReleaseAll(ctx, drugRepo, movRepo, quantities, ref); err != nil {
				return err
			}
			units = totalUnits(quantities)
		}
		t.Status = entity.DrugTxStatusCancelled
		t.CancelledAt = &now
		t.UpdatedAt = now
		if err := txRepo.UpdateHeader(ctx, t); err != nil {
			return err
		}
		out, err = txRepo.GetByID(ctx, t.ID)
		return err
	})
	if err != nil {
		uc.observeFailure(err)
		return nil, err
	}
	if units > 0 {
		uc.recorder.StockReleased(units)
	}
	uc.recorder.TransactionTransition(entity.DrugTxStatusCancelled)
	return toTransactionResponse(out), nil
}

// EditItems reemplaza las líneas (y opcionalmente las notas) de una transacción no cancelada.
// Si la transacción tiene stock reservado se aplica en dos fases dentro de la misma tx de BD:
// deshacer (liberar todas las líneas actuales) y rehacer (reservar todas las nuevas). Un fallo
// en la fase de rehacer revierte también la de deshacer vía rollback.
func (uc *TransactionUseCase) EditItems(ctx context.Context, userID, id string, in dto.EditDrugTransactionItemsRequest) (*dto.DrugTransactionResponse, error) {
	items, err := validateItems(in.Items)
	if err != nil {
		return nil, err
	}
	var (
		out                *entity.DrugTransaction
		released, reserved int
	)
	err = uc.txRunner.RunPharmacy(ctx, func(
		drugRepo repository.DrugRepository,
		txRepo repository.DrugTransactionRepository,
		movRepo repository.StockMovementRepository,
	) error {
		t, err := txRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if !t.CanEditItems() {
			return domain.ErrInvalidState
		}
		newQuantities := entity.QuantitiesByDrug(items)
		if err := ensureDrugsExist(ctx, drugRepo, newQuantities); err != nil {
			return err
		}
		now := uc.now()
		ref := LedgerRef{TransactionID: t.ID, UserID: userID, Now: now}

		held := map[string]int{}
		if t.HoldsStock() {
			held = entity.QuantitiesByDrug(t.Items)
			if err := uc.ledger.ReleaseAll(ctx, drugRepo, movRepo, held, ref); err != nil {
				return err
			}
		}
		for i := range items {
			items[i].TransactionID = t.ID
		}
		if err := txRepo.ReplaceItems(ctx, t.ID, items); err != nil {
			return err
		}
		if t.HoldsStock() {
			if err := uc.ledger.ReserveAll(ctx, drugRepo, movRepo, newQuantities, ref); err != nil {
				return relativeToHeld(err, held)
			}
			released, reserved = totalUnits(held), totalUnits(newQuantities)
		}
		if in.Notes != nil {
			t.Notes = *in.Notes
		}
		t.UpdatedAt = now
		if err := txRepo.UpdateHeader(ctx, t); err != nil {
			return err
		}
		out, err = txRepo.GetByID(ctx, t.ID)
		return err
	})
	if err != nil {
		uc.observeFailure(err)
		return nil, err
	}
	if released > 0 {
		uc.recorder.StockReleased(released)
	}
	if reserved > 0 {
		uc.recorder.StockReserved(reserved)
	}
	return toTransactionResponse(out), nil
}

// GetByID obtiene una transacción con sus líneas.
func (uc *TransactionUseCase) GetByID(ctx context.Context, id string) (*dto.DrugTransactionResponse, error) {
	t, err := uc.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return toTransactionResponse(t), nil
}

// List lista transacciones filtradas por paciente y/o estado.
func (uc *TransactionUseCase) List(ctx context.Context, filter repository.DrugTransactionFilter, limit, offset int) (*dto.DrugTransactionListResponse, error) {
	if filter.Status != "" && !entity.IsValidDrugTxStatus(filter.Status) {
		return nil, domain.Invalid("status", "estado desconocido")
	}
	list, total, err := uc.txRepo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DrugTransactionResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toTransactionResponse(t))
	}
	return &dto.DrugTransactionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

func (uc *TransactionUseCase) observeFailure(err error) {
	if errors.Is(err, domain.ErrInsufficientStock) {
		uc.recorder.InsufficientStock()
	}
}

// relativeToHeld expresa un fallo de stock de la fase de rehacer respecto al estado previo a la edición:
// disponible = stock antes de editar, requerido = unidades adicionales a las que la transacción ya tenía.
func relativeToHeld(err error, held map[string]int) error {
	var insufficient *domain.InsufficientStockError
	if !errors.As(err, &insufficient) {
		return err
	}
	h := held[insufficient.DrugID]
	return &domain.InsufficientStockError{
		DrugID:    insufficient.DrugID,
		DrugName:  insufficient.DrugName,
		Available: insufficient.Available - h,
		Required:  insufficient.Required - h,
	}
}

func validateItems(in []dto.DrugTransactionItemRequest) ([]entity.DrugTransactionItem, error) {
	if len(in) == 0 {
		return nil, domain.Invalid("items", "se requiere al menos una línea")
	}
	items := make([]entity.DrugTransactionItem, 0, len(in))
	for i, it := range in {
		if it.DrugID == "" {
			return nil, domain.Invalid("items.drug_id", "es requerido")
		}
		if it.Quantity <= 0 {
			return nil, domain.Invalid("items.quantity", "debe ser mayor que 0")
		}
		items = append(items, entity.DrugTransactionItem{
			ID:       uuid.New().String(),
			DrugID:   it.DrugID,
			Quantity: it.Quantity,
			Position: i,
		})
	}
	return items, nil
}

func ensureDrugsExist(ctx context.Context, drugRepo repository.DrugRepository, quantities map[string]int) error {
	for _, id := range sortedDrugIDs(quantities) {
		d, err := drugRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

func toTransactionResponse(t *entity.DrugTransaction) *dto.DrugTransactionResponse {
	if t == nil {
		return nil
	}
	resp := &dto.DrugTransactionResponse{
		ID:          t.ID,
		PatientID:   t.PatientID,
		Status:      t.Status,
		Notes:       t.Notes,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CompletedAt: t.CompletedAt,
		CancelledAt: t.CancelledAt,
		Items:       make([]dto.DrugTransactionItemResponse, 0, len(t.Items)),
	}
	for _, it := range t.Items {
		resp.Items = append(resp.Items, dto.DrugTransactionItemResponse{
			ID:       it.ID,
			DrugID:   it.DrugID,
			DrugName: it.DrugName,
			Quantity: it.Quantity,
		})
	}
	return resp
}
