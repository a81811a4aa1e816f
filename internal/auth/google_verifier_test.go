package auth

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "minimalistnotes/internal/errors"
)

const testClientID = "client-123.apps.googleusercontent.com"

func newTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func signIDToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func googleClaims(overrides jwt.MapClaims) jwt.MapClaims {
	claims := jwt.MapClaims{
		"iss":            "https://accounts.google.com",
		"aud":            testClientID,
		"sub":            "10987654321",
		"email":          "B@x.com",
		"email_verified": true,
		"name":           "Bea Example",
		"picture":        "https://example.com/b.png",
		"iat":            time.Now().Add(-time.Minute).Unix(),
		"exp":            time.Now().Add(time.Hour).Unix(),
	}
	for k, v := range overrides {
		if v == nil {
			delete(claims, k)
			continue
		}
		claims[k] = v
	}
	return claims
}

func TestGoogleVerifier_Verify(t *testing.T) {
	key := newTestKey(t)
	otherKey := newTestKey(t)
	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	verifier := NewGoogleVerifierWithKeySet(keySet, testClientID, time.Now)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name:  "valid",
			token: signIDToken(t, key, googleClaims(nil)),
		},
		{
			name:  "short issuer accepted",
			token: signIDToken(t, key, googleClaims(jwt.MapClaims{"iss": "accounts.google.com"})),
		},
		{
			name:    "foreign issuer",
			token:   signIDToken(t, key, googleClaims(jwt.MapClaims{"iss": "https://evil.example"})),
			wantErr: apperrors.ErrTokenVerification,
		},
		{
			name:    "wrong audience",
			token:   signIDToken(t, key, googleClaims(jwt.MapClaims{"aud": "someone-else"})),
			wantErr: apperrors.ErrTokenVerification,
		},
		{
			name:    "unknown signing key",
			token:   signIDToken(t, otherKey, googleClaims(nil)),
			wantErr: apperrors.ErrTokenVerification,
		},
		{
			name:    "expired",
			token:   signIDToken(t, key, googleClaims(jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})),
			wantErr: apperrors.ErrTokenVerification,
		},
		{
			name:    "garbage",
			token:   "abc.def.ghi",
			wantErr: apperrors.ErrTokenVerification,
		},
		{
			name:    "no email claim",
			token:   signIDToken(t, key, googleClaims(jwt.MapClaims{"email": nil})),
			wantErr: apperrors.ErrMissingEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := verifier.Verify(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "10987654321", claims.Subject)
			assert.Equal(t, "B@x.com", claims.Email)
			assert.True(t, claims.EmailVerified)
			assert.Equal(t, "Bea Example", claims.Name)
			assert.Equal(t, "https://example.com/b.png", claims.Picture)
		})
	}
}
