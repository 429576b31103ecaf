package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/hospital-api/internal/domain"
	"github.com/jhoicas/hospital-api/internal/domain/entity"
	"github.com/jhoicas/hospital-api/internal/domain/repository"
)

var _ repository.AlertRepository = (*AlertRepo)(nil)

// AlertRepo alertas internas para el personal.
type AlertRepo struct {
	q Querier
}

// NewAlertRepository construye el adaptador.
func NewAlertRepository(q Querier) *AlertRepo {
	return &AlertRepo{q: q}
}

// CreateIfAbsent inserta con un único INSERT ... SELECT WHERE NOT EXISTS, sin leer antes.
// Dos clics simultáneos pueden colarse ambos; es una alerta duplicada, no un error de datos.
func (r *AlertRepo) CreateIfAbsent(ctx context.Context, a *entity.Alert, messagePrefix string) (bool, error) {
	query := `
		INSERT INTO alerts (id, type, message, patient_id, category, priority, target_role, is_read, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, false, $8
		WHERE NOT EXISTS (
			SELECT 1 FROM alerts
			WHERE NOT is_read
			  AND patient_id IS NOT DISTINCT FROM $4
			  AND category = $5
			  AND target_role = $7
			  AND starts_with(message, $9)
		)`
	tag, err := r.q.Exec(ctx, query, a.ID, a.Type, a.Message, nullIfEmpty(a.PatientID), a.Category, a.Priority,
		a.TargetRole, a.CreatedAt, messagePrefix)
	if err != nil {
		return false, fmt.Errorf("insert alert: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListUnreadByRole alertas no leídas de un rol (vacío = todos), la más reciente primero.
func (r *AlertRepo) ListUnreadByRole(ctx context.Context, targetRole string, limit, offset int) ([]*entity.Alert, error) {
	query := `
		SELECT id, type, message, COALESCE(patient_id::text, ''), category, priority, target_role, is_read, created_at
		FROM alerts
		WHERE NOT is_read AND ($1 = '' OR target_role = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, targetRole, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Alert
	for rows.Next() {
		var a entity.Alert
		if err := rows.Scan(&a.ID, &a.Type, &a.Message, &a.PatientID, &a.Category, &a.Priority, &a.TargetRole, &a.IsRead, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

// MarkRead marca una alerta como leída.
func (r *AlertRepo) MarkRead(ctx context.Context, id string) error {
	if !isUUID(id) {
		return domain.ErrNotFound
	}
	tag, err := r.q.Exec(ctx, `UPDATE alerts SET is_read = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark alert read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
