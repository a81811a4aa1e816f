package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "minimalistnotes/internal/errors"
)

type credentials struct {
	Email    string `json:"email" validate:"required,emailshape"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestStruct(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		in        credentials
		wantField string
		wantMsg   string
	}{
		{name: "valid", in: credentials{Email: "A@x.com", Password: "secret1"}},
		{name: "missing email", in: credentials{Password: "secret1"}, wantField: "email", wantMsg: "email is required"},
		{name: "no tld", in: credentials{Email: "a@x", Password: "secret1"}, wantField: "email", wantMsg: "please enter a valid email address"},
		{name: "no at", in: credentials{Email: "ax.com", Password: "secret1"}, wantField: "email", wantMsg: "please enter a valid email address"},
		{name: "short password", in: credentials{Email: "a@x.com", Password: "12345"}, wantField: "password", wantMsg: "password must be at least 6 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(v, &tt.in)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *apperrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
			assert.Equal(t, tt.wantMsg, vErr.Message)
		})
	}
}
