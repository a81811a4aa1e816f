package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "minimalistnotes/internal/errors"
)

func TestJWTService_IssueVerifyRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 0)

	token, err := svc.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user-123", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(SessionTokenExpiry), claims.ExpiresAt.Time, time.Minute)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Minute)
}

func TestJWTService_Verify(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	sign := func(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr error
	}{
		{
			name: "expired",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte("test-secret"), &Claims{
					UserID: "u1",
					RegisteredClaims: jwt.RegisteredClaims{
						IssuedAt:  jwt.NewNumericDate(time.Now().Add(-31 * 24 * time.Hour)),
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(-24 * time.Hour)),
					},
				})
			},
			wantErr: apperrors.ErrExpiredToken,
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				other := NewJWTService("other-secret", time.Hour)
				s, err := other.Issue("u1")
				require.NoError(t, err)
				return s
			},
			wantErr: apperrors.ErrInvalidToken,
		},
		{
			name:    "malformed",
			token:   func(t *testing.T) string { return "not.a.token" },
			wantErr: apperrors.ErrInvalidToken,
		},
		{
			name: "none algorithm",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, &Claims{
					UserID: "u1",
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
				})
			},
			wantErr: apperrors.ErrInvalidToken,
		},
		{
			name: "no expiry",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte("test-secret"), &Claims{UserID: "u1"})
			},
			wantErr: apperrors.ErrInvalidToken,
		},
		{
			name: "no user id",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte("test-secret"), &Claims{
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
				})
			},
			wantErr: apperrors.ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.Verify(tt.token(t))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTService_TamperedPayload(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	token, err := svc.Issue("user-a")
	require.NoError(t, err)

	forged, err := NewJWTService("attacker", time.Hour).Issue("user-b")
	require.NoError(t, err)

	// Splice the forged payload onto the genuine signature.
	parts := splitToken(t, token)
	forgedParts := splitToken(t, forged)
	_, err = svc.Verify(parts[0] + "." + forgedParts[1] + "." + parts[2])
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func splitToken(t *testing.T, token string) []string {
	t.Helper()
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	return parts
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(4)

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	ok, err := h.Compare(hash, "secret1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Compare("not-a-bcrypt-hash", "secret1")
	assert.Error(t, err)

	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(0).cost)
}
