package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/sync/errgroup"

	apperrors "minimalistnotes/internal/errors"
	"minimalistnotes/internal/model"
)

// Loader fetches user-scoped data after a session is established. It returns
// an apply func that publishes the data; apply is skipped when the session
// has moved on since the load began.
type Loader func(ctx context.Context, user *model.User, bearer string) (apply func(), err error)

// Controller drives sign-in, restoration and sign-out, and owns the Session.
type Controller struct {
	api     *APIClient
	store   CredentialStore
	session *Session
	loaders []Loader
	applyMu sync.Mutex

	reverifyFederated bool
	now               func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithReverifyFederated controls whether a stored Google ID token is sent to
// the server for signature verification on restore. When false, an unexpired
// token restores the cached user without a round trip.
func WithReverifyFederated(v bool) Option {
	return func(c *Controller) { c.reverifyFederated = v }
}

// WithLoaders registers loaders run after each successful sign-in or restore.
func WithLoaders(loaders ...Loader) Option {
	return func(c *Controller) { c.loaders = append(c.loaders, loaders...) }
}

// WithClock overrides the clock used for local expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController creates a controller with server-side re-verification of
// federated credentials enabled.
func NewController(api *APIClient, store CredentialStore, opts ...Option) *Controller {
	c := &Controller{
		api:               api,
		store:             store,
		session:           NewSession(),
		reverifyFederated: true,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the controller's session.
func (c *Controller) Session() *Session {
	return c.session
}

// Restore re-establishes the session from the stored credential. The outcome
// is in the returned snapshot; Snapshot.Err explains an Unauthenticated result.
func (c *Controller) Restore(ctx context.Context) (Snapshot, error) {
	snap, err := c.session.transition(Verifying, nil, nil)
	if err != nil {
		return snap, err
	}
	gen := snap.Generation

	cred, err := c.store.Load()
	if errors.Is(err, ErrNoCredential) {
		return c.settle(gen, Unauthenticated, nil, nil)
	}
	if err != nil {
		if c.session.IsCurrent(gen) {
			_ = c.store.Clear()
		}
		return c.settle(gen, Unauthenticated, nil, err)
	}

	var user *model.User
	switch cred.Type {
	case model.AuthMethodManual:
		user, err = c.restoreManual(ctx, cred)
	case model.AuthMethodGoogle:
		user, err = c.restoreFederated(ctx, cred, gen)
	default:
		err = fmt.Errorf("%w: unknown credential type %q", apperrors.ErrInvalidToken, cred.Type)
	}

	if err != nil {
		if discardable(err) && c.session.IsCurrent(gen) {
			_ = c.store.Clear()
		}
		return c.settle(gen, Unauthenticated, nil, err)
	}

	snap, err = c.session.transitionFrom(gen, Restored, user, nil)
	if err != nil {
		return snap, nil
	}
	return snap, c.load(ctx, snap, cred.Bearer())
}

// settle finishes a restore. A restore overtaken by sign-in or sign-out leaves
// the session alone and reports the current snapshot.
func (c *Controller) settle(gen uint64, to State, user *model.User, cause error) (Snapshot, error) {
	snap, _ := c.session.transitionFrom(gen, to, user, cause)
	return snap, nil
}

func (c *Controller) restoreManual(ctx context.Context, cred *Credential) (*model.User, error) {
	return c.api.Verify(ctx, cred.Token)
}

// googleIDClaims are the parts of a Google ID token read without verification.
type googleIDClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

func (c *Controller) restoreFederated(ctx context.Context, cred *Credential, gen uint64) (*model.User, error) {
	var claims googleIDClaims
	if _, _, err := jwt.NewParser().ParseUnverified(cred.Token, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	if claims.ExpiresAt == nil || !c.now().Before(claims.ExpiresAt.Time) {
		return nil, apperrors.ErrExpiredToken
	}

	if !c.reverifyFederated && cred.User != nil && cred.SessionToken != "" {
		return cred.User, nil
	}

	res, err := c.api.SignInWithGoogle(ctx, cred.Token)
	if err != nil {
		return nil, err
	}
	cred.SessionToken = res.Token
	cred.User = res.User
	// A sign-in that landed meanwhile owns the stored credential.
	if c.session.IsCurrent(gen) {
		if err := c.store.Save(cred); err != nil {
			return nil, err
		}
	}
	return res.User, nil
}

// discardable reports whether a restore failure means the stored credential is
// dead. Transport failures keep it for the next run.
func discardable(err error) bool {
	var wrong *apperrors.WrongMethodError
	switch {
	case errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrExpiredToken),
		errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrMissingToken),
		errors.Is(err, apperrors.ErrTokenVerification),
		errors.Is(err, apperrors.ErrMissingEmail),
		errors.As(err, &wrong):
		return true
	}
	return false
}

// SignIn signs in with email and password and stores the session token.
func (c *Controller) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	res, err := c.api.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	cred := &Credential{Type: model.AuthMethodManual, Token: res.Token, User: res.User}
	return res, c.establish(ctx, cred, res.User)
}

// SignInWithGoogle obtains an ID token through the fallback chain, exchanges it
// with the server and stores both tokens.
func (c *Controller) SignInWithGoogle(ctx context.Context, attempts ...Attempt) (*AuthResult, error) {
	idToken, err := ObtainIDToken(ctx, attempts...)
	if err != nil {
		return nil, err
	}
	res, err := c.api.SignInWithGoogle(ctx, idToken)
	if err != nil {
		return nil, err
	}
	cred := &Credential{Type: model.AuthMethodGoogle, Token: idToken, SessionToken: res.Token, User: res.User}
	return res, c.establish(ctx, cred, res.User)
}

func (c *Controller) establish(ctx context.Context, cred *Credential, user *model.User) error {
	if err := c.store.Save(cred); err != nil {
		return err
	}
	snap, err := c.session.transition(Restored, user, nil)
	if err != nil {
		return err
	}
	return c.load(ctx, snap, cred.Bearer())
}

// SignOut forgets the stored credential. Session tokens are stateless, so
// nothing is sent to the server.
func (c *Controller) SignOut() error {
	if err := c.store.Clear(); err != nil {
		return err
	}
	_, err := c.session.transition(Unauthenticated, nil, nil)
	return err
}

// load runs every loader for the session in snap concurrently.
func (c *Controller) load(ctx context.Context, snap Snapshot, bearer string) error {
	if len(c.loaders) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, loader := range c.loaders {
		loader := loader
		g.Go(func() error {
			apply, err := loader(gctx, snap.User, bearer)
			if err != nil {
				return err
			}
			c.applyMu.Lock()
			defer c.applyMu.Unlock()
			if apply != nil && c.session.IsCurrent(snap.Generation) {
				apply()
			}
			return nil
		})
	}
	return g.Wait()
}

// API returns the underlying API client.
func (c *Controller) API() *APIClient {
	return c.api
}
