package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/hospital-api/internal/application/dto"
	"github.com/jhoicas/hospital-api/internal/domain"
	"github.com/jhoicas/hospital-api/internal/domain/entity"
	"github.com/jhoicas/hospital-api/internal/domain/repository"
)

// DrugUseCase casos de uso CRUD del catálogo de medicamentos. El stock solo se fija al crear;
// después cambia únicamente por el ledger de transacciones.
type DrugUseCase struct {
	repo    repository.DrugRepository
	movRepo repository.StockMovementRepository
}

// NewDrugUseCase construye el caso de uso.
func NewDrugUseCase(repo repository.DrugRepository, movRepo repository.StockMovementRepository) *DrugUseCase {
	return &DrugUseCase{repo: repo, movRepo: movRepo}
}

// Create registra un medicamento con su stock inicial.
func (uc *DrugUseCase) Create(ctx context.Context, in dto.CreateDrugRequest) (*dto.DrugResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "es requerido")
	}
	if in.Stock < 0 {
		return nil, domain.Invalid("stock", "no puede ser negativo")
	}
	if in.Price.IsNegative() {
		return nil, domain.Invalid("price", "no puede ser negativo")
	}
	existing, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	drug := &entity.Drug{
		ID:        uuid.New().String(),
		Name:      name,
		Stock:     in.Stock,
		Price:     in.Price,
		Unit:      in.Unit,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, drug); err != nil {
		return nil, err
	}
	return toDrugResponse(drug), nil
}

// GetByID obtiene un medicamento.
func (uc *DrugUseCase) GetByID(ctx context.Context, id string) (*dto.DrugResponse, error) {
	drug, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if drug == nil {
		return nil, domain.ErrNotFound
	}
	return toDrugResponse(drug), nil
}

// Update modifica nombre, precio o unidad. El stock no es editable.
func (uc *DrugUseCase) Update(ctx context.Context, id string, in dto.UpdateDrugRequest) (*dto.DrugResponse, error) {
	drug, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if drug == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name", "es requerido")
		}
		drug.Name = name
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.Invalid("price", "no puede ser negativo")
		}
		drug.Price = *in.Price
	}
	if in.Unit != nil {
		drug.Unit = *in.Unit
	}
	drug.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, drug); err != nil {
		return nil, err
	}
	return toDrugResponse(drug), nil
}

// List lista medicamentos (búsqueda por nombre) con paginación.
func (uc *DrugUseCase) List(ctx context.Context, search string, limit, offset int) (*dto.DrugListResponse, error) {
	list, total, err := uc.repo.List(ctx, strings.TrimSpace(search), limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DrugResponse, 0, len(list))
	for _, d := range list {
		items = append(items, *toDrugResponse(d))
	}
	return &dto.DrugListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

// Delete elimina un medicamento sin historial. Con líneas o movimientos asociados devuelve ErrConflict.
func (uc *DrugUseCase) Delete(ctx context.Context, id string) error {
	drug, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if drug == nil {
		return domain.ErrNotFound
	}
	used, err := uc.repo.HasHistory(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return domain.ErrConflict
	}
	return uc.repo.Delete(ctx, id)
}

// Movements devuelve el ledger de un medicamento, opcionalmente acotado por fechas.
func (uc *DrugUseCase) Movements(ctx context.Context, drugID string, from, to *time.Time, limit, offset int) ([]dto.StockMovementResponse, error) {
	drug, err := uc.repo.GetByID(ctx, drugID)
	if err != nil {
		return nil, err
	}
	if drug == nil {
		return nil, domain.ErrNotFound
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, domain.Invalid("to", "debe ser posterior a from")
	}
	list, err := uc.movRepo.ListByDrug(ctx, drugID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.StockMovementResponse{
			ID:            m.ID,
			DrugID:        m.DrugID,
			TransactionID: m.TransactionID,
			Type:          m.Type,
			Quantity:      m.Quantity,
			BalanceAfter:  m.BalanceAfter,
			CreatedBy:     m.CreatedBy,
			CreatedAt:     m.CreatedAt,
		})
	}
	return out, nil
}

func toDrugResponse(d *entity.Drug) *dto.DrugResponse {
	return &dto.DrugResponse{
		ID:        d.ID,
		Name:      d.Name,
		Stock:     d.Stock,
		Price:     d.Price,
		Unit:      d.Unit,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
