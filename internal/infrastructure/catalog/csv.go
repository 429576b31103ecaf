// Package catalog lee el catálogo de medicamentos exportado por farmacia (CSV) para la carga inicial.
//
// Formato: nombre;stock;precio;unidad con cabecera opcional. Los exports del sistema anterior
// vienen en ISO-8859-1; con Latin1 se transcodifican a UTF-8 antes de parsear.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/hospital-api/internal/application/dto"
)

// Options controla el parseo.
type Options struct {
	Latin1    bool
	Separator rune // ';' por defecto
}

// ParseDrugs devuelve una petición de alta por fila. Los nombres repetidos (sin distinguir mayúsculas)
// se descartan después de la primera aparición.
func ParseDrugs(r io.Reader, opts Options) ([]dto.CreateDrugRequest, error) {
	if opts.Latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	sep := opts.Separator
	if sep == 0 {
		sep = ';'
	}
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		out  []dto.CreateDrugRequest
		seen = make(map[string]bool)
		line int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if line == 1 && isHeader(rec) {
			continue
		}
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}
		req, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		key := strings.ToLower(req.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, req)
	}
	return out, nil
}

func isHeader(rec []string) bool {
	return len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "nombre")
}

func parseRow(rec []string) (dto.CreateDrugRequest, error) {
	if len(rec) < 2 {
		return dto.CreateDrugRequest{}, fmt.Errorf("se esperan al menos nombre y stock")
	}
	req := dto.CreateDrugRequest{Name: strings.TrimSpace(rec[0])}
	if req.Name == "" {
		return req, fmt.Errorf("nombre vacío")
	}
	stock, err := strconv.Atoi(strings.TrimSpace(rec[1]))
	if err != nil || stock < 0 {
		return req, fmt.Errorf("stock inválido %q", rec[1])
	}
	req.Stock = stock
	if len(rec) > 2 && strings.TrimSpace(rec[2]) != "" {
		// los exports usan coma decimal
		raw := strings.ReplaceAll(strings.TrimSpace(rec[2]), ",", ".")
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return req, fmt.Errorf("precio inválido %q", rec[2])
		}
		req.Price = price
	}
	if len(rec) > 3 {
		req.Unit = strings.TrimSpace(rec[3])
	}
	return req, nil
}
