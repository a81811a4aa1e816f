package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"minimalistnotes/internal/auth"
	apperrors "minimalistnotes/internal/errors"
	"minimalistnotes/internal/model"
	"minimalistnotes/internal/repository"
	"minimalistnotes/internal/validation"
)

// SignInResult is the outcome of a successful sign-in by either method.
type SignInResult struct {
	User      *model.User
	IsNewUser bool
	Token     string
}

// AuthService handles authentication operations.
// An email is bound to the method of its first successful sign-in for good;
// the other method is refused with *errors.WrongMethodError.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	SignInWithGoogle(ctx context.Context, idToken string) (*SignInResult, error)
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
}

type credentials struct {
	Email    string `json:"email" validate:"required,emailshape"`
	Password string `json:"password" validate:"required"`
}

// newPassword is only checked when an email registers; existing accounts
// always reach the password comparison.
type newPassword struct {
	Password string `json:"password" validate:"min=6"`
}

type authService struct {
	users     repository.UserRepository
	userCache UserService
	hasher    *auth.PasswordHasher
	tokens    *auth.JWTService
	google    auth.IdentityVerifier
	validate  *validator.Validate
	now       func() time.Time
}

// NewAuthService creates a new authentication service.
// google may be nil, in which case federated sign-in always fails verification.
func NewAuthService(
	users repository.UserRepository,
	userCache UserService,
	hasher *auth.PasswordHasher,
	tokens *auth.JWTService,
	google auth.IdentityVerifier,
) AuthService {
	return &authService{
		users:     users,
		userCache: userCache,
		hasher:    hasher,
		tokens:    tokens,
		google:    google,
		validate:  validation.New(),
		now:       time.Now,
	}
}

// SignIn signs in with email and password, registering the email on first use.
func (s *authService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	if err := validation.Struct(s.validate, &credentials{Email: email, Password: password}); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, model.NormalizeEmail(email))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.registerManual(ctx, email, password)
	case err != nil:
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return s.signInManual(ctx, user, password)
}

func (s *authService) registerManual(ctx context.Context, email, password string) (*SignInResult, error) {
	if err := validation.Struct(s.validate, &newPassword{Password: password}); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &model.User{
		Email:        model.NormalizeEmail(email),
		DisplayEmail: strings.TrimSpace(email),
		Name:         model.LocalPart(email),
		PasswordHash: &hash,
		AuthMethods:  model.AuthMethods{model.AuthMethodManual},
		CreatedAt:    now,
		LastLogin:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrDuplicateKey) {
			return nil, fmt.Errorf("create user: %w", err)
		}
		// Lost a registration race: answer as if we had arrived second.
		winner, err := s.users.FindByEmail(ctx, user.Email)
		if err != nil {
			return nil, fmt.Errorf("reload user after duplicate: %w", err)
		}
		return s.signInManual(ctx, winner, password)
	}

	return s.issue(user, true)
}

func (s *authService) signInManual(ctx context.Context, user *model.User, password string) (*SignInResult, error) {
	if !user.AuthMethods.Has(model.AuthMethodManual) {
		return nil, &apperrors.WrongMethodError{Method: model.AuthMethodGoogle}
	}
	if user.PasswordHash == nil {
		return nil, fmt.Errorf("user %s has no password hash", user.ID)
	}

	ok, err := s.hasher.Compare(*user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrInvalidCredentials
	}

	user.LastLogin = s.now()
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(user, false)
}

// SignInWithGoogle signs in with a Google ID token, registering the email on first use.
func (s *authService) SignInWithGoogle(ctx context.Context, idToken string) (*SignInResult, error) {
	if idToken == "" {
		return nil, apperrors.NewValidationError("idToken", "idToken is required")
	}
	if s.google == nil {
		return nil, fmt.Errorf("%w: google sign-in is not configured", apperrors.ErrTokenVerification)
	}

	claims, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, model.NormalizeEmail(claims.Email))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.registerFederated(ctx, claims)
	case err != nil:
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return s.signInFederated(ctx, user, claims)
}

func (s *authService) registerFederated(ctx context.Context, claims *auth.FederatedClaims) (*SignInResult, error) {
	name := claims.Name
	if name == "" {
		name = model.LocalPart(claims.Email)
	}

	now := s.now()
	user := &model.User{
		Email:        model.NormalizeEmail(claims.Email),
		DisplayEmail: strings.TrimSpace(claims.Email),
		Name:         name,
		AuthMethods:  model.AuthMethods{model.AuthMethodGoogle},
		FederatedID:  claims.Subject,
		Picture:      claims.Picture,
		CreatedAt:    now,
		LastLogin:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrDuplicateKey) {
			return nil, fmt.Errorf("create user: %w", err)
		}
		winner, err := s.users.FindByEmail(ctx, user.Email)
		if err != nil {
			return nil, fmt.Errorf("reload user after duplicate: %w", err)
		}
		return s.signInFederated(ctx, winner, claims)
	}

	return s.issue(user, true)
}

func (s *authService) signInFederated(ctx context.Context, user *model.User, claims *auth.FederatedClaims) (*SignInResult, error) {
	if !user.AuthMethods.Has(model.AuthMethodGoogle) {
		return nil, &apperrors.WrongMethodError{Method: model.AuthMethodManual}
	}

	user.Picture = claims.Picture
	user.DisplayEmail = strings.TrimSpace(claims.Email)
	user.LastLogin = s.now()
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(user, false)
}

// CurrentUser re-resolves a verified token subject against the credential store.
func (s *authService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	return s.userCache.GetUser(ctx, userID)
}

func (s *authService) save(ctx context.Context, user *model.User) error {
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	s.userCache.Invalidate(ctx, user.ID)
	return nil
}

func (s *authService) issue(user *model.User, isNew bool) (*SignInResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &SignInResult{User: user, IsNewUser: isNew, Token: token}, nil
}
