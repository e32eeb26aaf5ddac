package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPassword_HashesPlainText(t *testing.T) {
	hash, ok, err := Password("s3cret!", MinHashCost)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, IsPasswordHash(hash))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret!")))

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, MinHashCost, cost)
}

func TestPassword_ExistingHashUntouched(t *testing.T) {
	existing, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), MinHashCost+1)
	require.NoError(t, err)

	got, ok, err := Password(string(existing), MinHashCost)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, string(existing), got)
}

func TestPassword_Absent(t *testing.T) {
	for _, raw := range []any{nil, "", 12345.0} {
		_, ok, err := Password(raw, MinHashCost)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestPassword_TooLong(t *testing.T) {
	_, ok, err := Password(strings.Repeat("x", 73), MinHashCost)
	require.Error(t, err)
	assert.False(t, ok)
}

func TestIsPasswordHash(t *testing.T) {
	assert.False(t, IsPasswordHash("password"))
	assert.False(t, IsPasswordHash("$2a$10$short"))
	assert.Equal(t, 10, DefaultHashCost)
}
