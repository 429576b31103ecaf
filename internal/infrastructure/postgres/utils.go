package postgres

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/hospital-api/internal/domain"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if code := pgCode(err); code != "" {
		return code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation 23503: referencia inexistente o fila todavía referenciada (ON DELETE RESTRICT).
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == "23503"
}

// isCheckViolation 23514: por ejemplo CHECK (stock >= 0).
func isCheckViolation(err error) bool {
	return pgCode(err) == "23514"
}

// isInvalidText 22P02: texto que no se puede convertir al tipo de la columna (ej. un id que no es UUID).
func isInvalidText(err error) bool {
	return pgCode(err) == "22P02"
}

// isUUID las columnas id son UUID; un id mal formado no puede existir y no debe llegar al driver.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// nullIfEmpty para columnas UUID/VARCHAR opcionales.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// translate convierte violaciones de constraints en errores de dominio; el resto se devuelve tal cual.
func translate(err error, fkErr error) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isForeignKeyViolation(err):
		return fkErr
	case isCheckViolation(err):
		return domain.ErrInvalidInput
	case isInvalidText(err):
		return domain.ErrNotFound
	}
	return err
}
