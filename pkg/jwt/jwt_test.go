package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse(t *testing.T) {
	token, err := Generate("secreto", "user-1", "apoteker", "hospital-api", 5)
	require.NoError(t, err)

	userID, role, err := Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "apoteker", role)
}

func TestParse_Rechazos(t *testing.T) {
	token, err := Generate("secreto", "user-1", "dokter", "hospital-api", 5)
	require.NoError(t, err)

	_, _, err = Parse("otro", token)
	assert.Error(t, err)

	expired, err := Generate("secreto", "user-1", "dokter", "hospital-api", -1)
	require.NoError(t, err)
	_, _, err = Parse("secreto", expired)
	assert.Error(t, err)

	incomplete, err := Generate("secreto", "user-1", "", "hospital-api", 5)
	require.NoError(t, err)
	_, _, err = Parse("secreto", incomplete)
	assert.Error(t, err)

	_, err = Generate("", "user-1", "dokter", "hospital-api", 5)
	assert.Error(t, err)
}
