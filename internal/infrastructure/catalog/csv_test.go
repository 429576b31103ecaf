package catalog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestParseDrugs_UTF8ConCabecera(t *testing.T) {
	in := "nombre;stock;precio;unidad\n" +
		"Paracetamol 500mg;120;1500,50;tablet\n" +
		"Amoxicillin 500mg; 40 ;;kapsul\n" +
		"\n" +
		"PARACETAMOL 500MG;5;1;tablet\n"

	out, err := ParseDrugs(strings.NewReader(in), Options{})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "Paracetamol 500mg", out[0].Name)
	assert.Equal(t, 120, out[0].Stock)
	assert.Equal(t, "1500.5", out[0].Price.String())
	assert.Equal(t, "tablet", out[0].Unit)

	assert.Equal(t, 40, out[1].Stock)
	assert.True(t, out[1].Price.IsZero())
}

func TestParseDrugs_Latin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String("Solución salina;10;2500;botol\n")
	require.NoError(t, err)

	out, err := ParseDrugs(bytes.NewReader([]byte(encoded)), Options{Latin1: true})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Solución salina", out[0].Name)
}

func TestParseDrugs_Errores(t *testing.T) {
	cases := map[string]string{
		"stock negativo": "Ibuprofen;-1\n",
		"stock no num":   "Ibuprofen;diez\n",
		"sin stock":      "Ibuprofen\n",
		"precio":         "Ibuprofen;1;abc\n",
		"nombre vacío":   " ;1\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDrugs(strings.NewReader(in), Options{})
			assert.Error(t, err)
		})
	}
}
