package clinical

import (
	"context"

	"github.com/jhoicas/hospital-api/internal/application/dto"
	"github.com/jhoicas/hospital-api/internal/domain"
	"github.com/jhoicas/hospital-api/internal/domain/entity"
	"github.com/jhoicas/hospital-api/internal/domain/repository"
)

// AlertUseCase bandeja de alertas por rol.
type AlertUseCase struct {
	repo repository.AlertRepository
}

// NewAlertUseCase construye el caso de uso.
func NewAlertUseCase(repo repository.AlertRepository) *AlertUseCase {
	return &AlertUseCase{repo: repo}
}

// ListUnread alertas no leídas del rol; admin ve todas.
func (uc *AlertUseCase) ListUnread(ctx context.Context, role string, limit, offset int) ([]dto.AlertResponse, error) {
	if role == entity.RoleAdmin {
		role = ""
	}
	list, err := uc.repo.ListUnreadByRole(ctx, role, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AlertResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.AlertResponse{
			ID:         a.ID,
			Type:       a.Type,
			Message:    a.Message,
			PatientID:  a.PatientID,
			Category:   a.Category,
			Priority:   a.Priority,
			TargetRole: a.TargetRole,
			IsRead:     a.IsRead,
			CreatedAt:  a.CreatedAt,
		})
	}
	return out, nil
}

// MarkRead marca la alerta como leída; la siguiente emisión con el mismo prefijo vuelve a crear una.
func (uc *AlertUseCase) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return domain.Invalid("id", "requerido")
	}
	return uc.repo.MarkRead(ctx, id)
}
