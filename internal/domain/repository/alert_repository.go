package repository

import (
	"context"

	"github.com/jhoicas/hospital-api/internal/domain/entity"
)

// AlertRepository define el puerto de persistencia para alertas internas.
type AlertRepository interface {
	// CreateIfAbsent inserta la alerta salvo que ya exista una no leída con el mismo paciente,
	// categoría, rol destino y mensaje que empiece por messagePrefix. Devuelve si se creó.
	CreateIfAbsent(ctx context.Context, alert *entity.Alert, messagePrefix string) (bool, error)
	ListUnreadByRole(ctx context.Context, targetRole string, limit, offset int) ([]*entity.Alert, error)
	MarkRead(ctx context.Context, id string) error
}
