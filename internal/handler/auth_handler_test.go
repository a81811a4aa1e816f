package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"minimalistnotes/internal/auth"
	"minimalistnotes/internal/errors"
	"minimalistnotes/internal/model"
	"minimalistnotes/internal/service"
	"minimalistnotes/internal/validation"
)

// MockAuthService is a mock implementation of AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignIn(ctx context.Context, email, password string) (*service.SignInResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SignInResult), args.Error(1)
}

func (m *MockAuthService) SignInWithGoogle(ctx context.Context, idToken string) (*service.SignInResult, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SignInResult), args.Error(1)
}

func (m *MockAuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type testValidator struct{ v *validator.Validate }

func (tv *testValidator) Validate(i interface{}) error { return validation.Struct(tv.v, i) }

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{v: validation.New()}
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

// requireHTTPError asserts err is an echo error carrying the standard body.
func requireHTTPError(t *testing.T, err error, status int) errors.ErrorResponse {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T", err)
	assert.Equal(t, status, he.Code)
	body, ok := he.Message.(errors.ErrorResponse)
	require.True(t, ok, "expected ErrorResponse, got %T", he.Message)
	assert.False(t, body.Success)
	return body
}

func TestAuthHandler_SignIn(t *testing.T) {
	e := newTestEcho()

	t.Run("new user", func(t *testing.T) {
		svc := new(MockAuthService)
		h := NewAuthHandler(svc)
		user := &model.User{ID: "u1", Email: "a@x.com", DisplayEmail: "A@x.com", Name: "A",
			AuthMethods: model.AuthMethods{model.AuthMethodManual}}
		svc.On("SignIn", mock.Anything, "A@x.com", "secret1").
			Return(&service.SignInResult{User: user, IsNewUser: true, Token: "tok"}, nil)

		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/auth/signin", `{"email":"A@x.com","password":"secret1"}`), rec)

		require.NoError(t, h.SignIn(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, true, body["success"])
		assert.Equal(t, true, body["isNewUser"])
		assert.Equal(t, "tok", body["token"])
		userBody := body["user"].(map[string]interface{})
		assert.Equal(t, "u1", userBody["id"])
		assert.Equal(t, "A@x.com", userBody["displayEmail"])
		assert.NotContains(t, userBody, "passwordHash")
		svc.AssertExpectations(t)
	})

	t.Run("google account", func(t *testing.T) {
		svc := new(MockAuthService)
		h := NewAuthHandler(svc)
		svc.On("SignIn", mock.Anything, "b@x.com", "anything6").
			Return(nil, &errors.WrongMethodError{Method: model.AuthMethodGoogle})

		c := e.NewContext(jsonRequest(http.MethodPost, "/auth/signin", `{"email":"b@x.com","password":"anything6"}`), httptest.NewRecorder())

		body := requireHTTPError(t, h.SignIn(c), http.StatusConflict)
		assert.True(t, body.IsGoogleAccount)
		assert.False(t, body.IsManualAccount)
		assert.Equal(t, errors.CodeWrongMethod, body.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := new(MockAuthService)
		h := NewAuthHandler(svc)
		svc.On("SignIn", mock.Anything, "a@x.com", "wrong1").Return(nil, errors.ErrInvalidCredentials)

		c := e.NewContext(jsonRequest(http.MethodPost, "/auth/signin", `{"email":"a@x.com","password":"wrong1"}`), httptest.NewRecorder())

		body := requireHTTPError(t, h.SignIn(c), http.StatusUnauthorized)
		assert.Equal(t, "invalid email or password", body.Message)
	})

	t.Run("malformed body", func(t *testing.T) {
		h := NewAuthHandler(new(MockAuthService))
		c := e.NewContext(jsonRequest(http.MethodPost, "/auth/signin", `{"email":`), httptest.NewRecorder())

		body := requireHTTPError(t, h.SignIn(c), http.StatusBadRequest)
		assert.Equal(t, errors.CodeValidation, body.Code)
	})
}

func TestAuthHandler_GoogleSignIn(t *testing.T) {
	e := newTestEcho()

	t.Run("success carries token", func(t *testing.T) {
		svc := new(MockAuthService)
		h := NewAuthHandler(svc)
		user := &model.User{ID: "g1", Email: "b@x.com", AuthMethods: model.AuthMethods{model.AuthMethodGoogle}}
		svc.On("SignInWithGoogle", mock.Anything, "id-token").
			Return(&service.SignInResult{User: user, IsNewUser: false, Token: "session"}, nil)

		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/auth/google", `{"idToken":"id-token"}`), rec)

		require.NoError(t, h.GoogleSignIn(c))
		var body SignInResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.False(t, body.IsNewUser)
		assert.Equal(t, "session", body.Token)
		assert.Equal(t, "g1", body.User.ID)
	})

	t.Run("manual account", func(t *testing.T) {
		svc := new(MockAuthService)
		h := NewAuthHandler(svc)
		svc.On("SignInWithGoogle", mock.Anything, "id-token").
			Return(nil, &errors.WrongMethodError{Method: model.AuthMethodManual})

		c := e.NewContext(jsonRequest(http.MethodPost, "/auth/google", `{"idToken":"id-token"}`), httptest.NewRecorder())

		body := requireHTTPError(t, h.GoogleSignIn(c), http.StatusConflict)
		assert.True(t, body.IsManualAccount)
	})

	t.Run("bad token", func(t *testing.T) {
		svc := new(MockAuthService)
		h := NewAuthHandler(svc)
		svc.On("SignInWithGoogle", mock.Anything, "forged").Return(nil, errors.ErrTokenVerification)

		c := e.NewContext(jsonRequest(http.MethodPost, "/auth/google", `{"idToken":"forged"}`), httptest.NewRecorder())

		body := requireHTTPError(t, h.GoogleSignIn(c), http.StatusBadRequest)
		assert.Equal(t, errors.CodeTokenVerification, body.Code)
	})
}

func TestAuthHandler_Verify(t *testing.T) {
	e := newTestEcho()

	t.Run("resolves user", func(t *testing.T) {
		svc := new(MockAuthService)
		h := NewAuthHandler(svc)
		svc.On("CurrentUser", mock.Anything, "u1").Return(&model.User{ID: "u1", Email: "a@x.com"}, nil)

		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/verify", nil), rec)
		c.Set(ClaimsContextKey, &auth.Claims{UserID: "u1"})

		require.NoError(t, h.Verify(c))
		var body UserResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "u1", body.User.ID)
	})

	t.Run("deleted account", func(t *testing.T) {
		svc := new(MockAuthService)
		h := NewAuthHandler(svc)
		svc.On("CurrentUser", mock.Anything, "gone").Return(nil, errors.ErrUserNotFound)

		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/verify", nil), httptest.NewRecorder())
		c.Set(ClaimsContextKey, &auth.Claims{UserID: "gone"})

		body := requireHTTPError(t, h.Verify(c), http.StatusUnauthorized)
		assert.Equal(t, errors.CodeUserNotFound, body.Code)
	})

	t.Run("no claims", func(t *testing.T) {
		h := NewAuthHandler(new(MockAuthService))
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/auth/verify", nil), httptest.NewRecorder())

		body := requireHTTPError(t, h.Verify(c), http.StatusUnauthorized)
		assert.Equal(t, errors.CodeMissingToken, body.Code)
	})
}
