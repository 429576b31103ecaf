package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/hospital-api/internal/domain"
	"github.com/jhoicas/hospital-api/internal/domain/entity"
	"github.com/jhoicas/hospital-api/internal/domain/repository"
)

var _ repository.PatientRepository = (*PatientRepo)(nil)

// PatientRepo implementación de PatientRepository sobre PostgreSQL.
type PatientRepo struct {
	q Querier
}

// NewPatientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPatientRepository(q Querier) *PatientRepo {
	return &PatientRepo{q: q}
}

const patientColumns = `id, mr_number, name, nik, birth_date, gender, address, phone, blood_type,
	status, last_visit, created_at, updated_at`

func scanPatient(row pgx.Row) (*entity.Patient, error) {
	var p entity.Patient
	err := row.Scan(&p.ID, &p.MRNumber, &p.Name, &p.NIK, &p.BirthDate, &p.Gender, &p.Address, &p.Phone,
		&p.BloodType, &p.Status, &p.LastVisit, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserta el paciente. Sin MRNumber se toma el siguiente valor de patient_mr_seq (RM-000001).
func (r *PatientRepo) Create(ctx context.Context, p *entity.Patient) error {
	if p.MRNumber == "" {
		var seq int64
		if err := r.q.QueryRow(ctx, `SELECT nextval('patient_mr_seq')`).Scan(&seq); err != nil {
			return fmt.Errorf("next mr number: %w", err)
		}
		p.MRNumber = fmt.Sprintf("RM-%06d", seq)
	}
	query := `
		INSERT INTO patients (id, mr_number, name, nik, birth_date, gender, address, phone, blood_type,
			status, last_visit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query, p.ID, p.MRNumber, p.Name, p.NIK, p.BirthDate, p.Gender, p.Address, p.Phone,
		p.BloodType, p.Status, p.LastVisit, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert patient: %w", translate(err, domain.ErrInvalidInput))
	}
	return nil
}

// GetByID obtiene un paciente; (nil, nil) si no existe.
func (r *PatientRepo) GetByID(ctx context.Context, id string) (*entity.Patient, error) {
	if !isUUID(id) {
		return nil, nil
	}
	p, err := scanPatient(r.q.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

// Update modifica datos demográficos.
func (r *PatientRepo) Update(ctx context.Context, p *entity.Patient) error {
	if !isUUID(p.ID) {
		return domain.ErrNotFound
	}
	query := `
		UPDATE patients
		SET name = $2, nik = $3, birth_date = $4, gender = $5, address = $6, phone = $7, blood_type = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, p.ID, p.Name, p.NIK, p.BirthDate, p.Gender, p.Address, p.Phone, p.BloodType, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatus escribe el status derivado y, si lastVisit no es nil, la última visita.
func (r *PatientRepo) UpdateStatus(ctx context.Context, id, status string, lastVisit *time.Time) error {
	if !isUUID(id) {
		return domain.ErrNotFound
	}
	query := `
		UPDATE patients
		SET status = $2, last_visit = COALESCE($3, last_visit), updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, status, lastVisit)
	if err != nil {
		return fmt.Errorf("update patient status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List busca por nombre, NIK o número de rekam medis.
func (r *PatientRepo) List(ctx context.Context, search string, limit, offset int) ([]*entity.Patient, int, error) {
	where := `WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR mr_number ILIKE '%' || $1 || '%' OR nik = $1`
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM patients `+where, search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patients: %w", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+patientColumns+` FROM patients `+where+`
		ORDER BY mr_number LIMIT $2 OFFSET $3`, search, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()
	var list []*entity.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan patient: %w", err)
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}
