package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/hospital-api/internal/domain"
	"github.com/jhoicas/hospital-api/internal/domain/entity"
	"github.com/jhoicas/hospital-api/internal/domain/repository"
)

var _ repository.HandledPatientRepository = (*HandledPatientRepo)(nil)

// HandledPatientRepo encuentros (pasien ditangani) sobre PostgreSQL.
type HandledPatientRepo struct {
	q Querier
}

// NewHandledPatientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewHandledPatientRepository(q Querier) *HandledPatientRepo {
	return &HandledPatientRepo{q: q}
}

const encounterColumns = `id, patient_id, handled_by, handled_date, status, diagnosis, notes, priority,
	next_visit_date, created_at, updated_at`

func scanEncounter(row pgx.Row) (*entity.HandledPatient, error) {
	var e entity.HandledPatient
	err := row.Scan(&e.ID, &e.PatientID, &e.HandledBy, &e.HandledDate, &e.Status, &e.Diagnosis, &e.Notes,
		&e.Priority, &e.NextVisitDate, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *HandledPatientRepo) Create(ctx context.Context, e *entity.HandledPatient) error {
	query := `
		INSERT INTO handled_patients (id, patient_id, handled_by, handled_date, status, diagnosis, notes, priority,
			next_visit_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query, e.ID, e.PatientID, e.HandledBy, e.HandledDate, e.Status, e.Diagnosis, e.Notes,
		e.Priority, e.NextVisitDate, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert encounter: %w", translate(err, domain.ErrNotFound))
	}
	return nil
}

func (r *HandledPatientRepo) GetByID(ctx context.Context, id string) (*entity.HandledPatient, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+encounterColumns+` FROM handled_patients WHERE id = $1`, id)
}

func (r *HandledPatientRepo) getOne(ctx context.Context, query string, args ...any) (*entity.HandledPatient, error) {
	e, err := scanEncounter(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get encounter: %w", err)
	}
	return e, nil
}

func (r *HandledPatientRepo) Update(ctx context.Context, e *entity.HandledPatient) error {
	if !isUUID(e.ID) {
		return domain.ErrNotFound
	}
	query := `
		UPDATE handled_patients
		SET status = $2, diagnosis = $3, notes = $4, priority = $5, next_visit_date = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, e.ID, e.Status, e.Diagnosis, e.Notes, e.Priority, e.NextVisitDate, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update encounter: %w", translate(err, domain.ErrInvalidInput))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *HandledPatientRepo) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return domain.ErrNotFound
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM handled_patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete encounter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// LatestByPatient el encuentro más reciente por handled_date y luego created_at, excluyendo excludeID.
func (r *HandledPatientRepo) LatestByPatient(ctx context.Context, patientID, excludeID string) (*entity.HandledPatient, error) {
	if !isUUID(patientID) {
		return nil, nil
	}
	query := `
		SELECT ` + encounterColumns + ` FROM handled_patients
		WHERE patient_id = $1 AND ($2 = '' OR id::text <> $2)
		ORDER BY handled_date DESC, created_at DESC
		LIMIT 1`
	return r.getOne(ctx, query, patientID, excludeID)
}

func (r *HandledPatientRepo) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*entity.HandledPatient, error) {
	if !isUUID(patientID) {
		return nil, nil
	}
	query := `
		SELECT ` + encounterColumns + ` FROM handled_patients
		WHERE patient_id = $1
		ORDER BY handled_date DESC, created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list encounters: %w", err)
	}
	defer rows.Close()
	var list []*entity.HandledPatient
	for rows.Next() {
		e, err := scanEncounter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan encounter: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
