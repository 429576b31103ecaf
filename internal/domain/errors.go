package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInvalidState      = errors.New("operación no permitida en el estado actual")
	ErrAlreadyCancelled  = errors.New("la transacción ya está cancelada")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// InsufficientStockError detalla qué medicamento no alcanza para que el caller corrija la entrada
// sin volver a consultar el catálogo. errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	DrugID    string
	DrugName  string
	Available int
	Required  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: disponible %d, requerido %d", e.DrugName, e.Available, e.Required)
}

// Is permite comparar contra el sentinel ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ValidationError indica un campo inválido. Envuelve ErrInvalidInput.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
