package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("A@x.com"))
	assert.Equal(t, "b@x.com", NormalizeEmail("  B@X.COM "))
}

func TestLocalPart(t *testing.T) {
	assert.Equal(t, "A", LocalPart("A@x.com"))
	assert.Equal(t, "first.last", LocalPart("first.last@example.org"))
	assert.Equal(t, "nobody", LocalPart("nobody"))
}

func TestAuthMethods_ValueScan(t *testing.T) {
	methods := AuthMethods{AuthMethodGoogle}

	v, err := methods.Value()
	require.NoError(t, err)
	assert.Equal(t, `["google"]`, v)

	var scanned AuthMethods
	require.NoError(t, scanned.Scan([]byte(`["manual"]`)))
	assert.True(t, scanned.Has(AuthMethodManual))
	assert.False(t, scanned.Has(AuthMethodGoogle))

	require.NoError(t, scanned.Scan(nil))
	assert.Nil(t, scanned)

	assert.Error(t, scanned.Scan(42))
}
