// Package services holds the stateful client components: the Session
// Manager that owns who is logged in, and the Paginated Asset Query behind
// every listing.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/dokanload/internal/client/client"
	"github.com/dmitrijs2005/dokanload/internal/client/config"
	"github.com/dmitrijs2005/dokanload/internal/client/credentials"
	"github.com/dmitrijs2005/dokanload/internal/client/models"
	"github.com/dmitrijs2005/dokanload/internal/logging"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNotLoggedIn = errors.New("not logged in")
	ErrSuperseded  = errors.New("superseded by a newer call")
)

type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is the read-only view of the current session handed to consumers
// that must not change it.
type Session interface {
	User() (models.User, bool)
	State() State
	IsAuthenticated() bool
	RequireUser() (models.User, error)
}

// PartialRegistrationError reports that the account was created but the
// follow-up login failed. The account is not rolled back.
type PartialRegistrationError struct {
	Email string
	Err   error
}

func (e *PartialRegistrationError) Error() string {
	return fmt.Sprintf("account %s created, but login failed: %v", e.Email, e.Err)
}

func (e *PartialRegistrationError) Unwrap() error { return e.Err }

// SessionManager is the only writer of the credential store. The user is
// set if and only if a decodable, unexpired token is stored.
//
// Every change of identity (login, logout, invalidation) bumps a generation
// counter. A call that captured an older generation discards its result and
// returns ErrSuperseded.
type SessionManager struct {
	api    client.Client
	creds  credentials.Store
	log    logging.Logger
	source string
	now    func() time.Time

	refresh singleflight.Group

	mu      sync.Mutex
	gen     uint64
	pending int
	token   string
	user    *models.User
}

var _ Session = (*SessionManager)(nil)
var _ client.Invalidator = (*SessionManager)(nil)

// NewSessionManager builds an anonymous session. source is
// config.ProfileSourceProfile or config.ProfileSourceToken.
func NewSessionManager(api client.Client, creds credentials.Store, log logging.Logger, source string) *SessionManager {
	if source == "" {
		source = config.ProfileSourceProfile
	}
	return &SessionManager{
		api:    api,
		creds:  creds,
		log:    log.With("component", "session"),
		source: source,
		now:    time.Now,
	}
}

func (m *SessionManager) User() (models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return models.User{}, false
	}
	return *m.user, true
}

func (m *SessionManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.pending > 0:
		return StateAuthenticating
	case m.user != nil:
		return StateAuthenticated
	default:
		return StateAnonymous
	}
}

func (m *SessionManager) IsAuthenticated() bool {
	_, ok := m.User()
	return ok
}

// RequireUser gates protected operations.
func (m *SessionManager) RequireUser() (models.User, error) {
	u, ok := m.User()
	if !ok {
		return models.User{}, ErrNotLoggedIn
	}
	return u, nil
}

// deriveUser builds the identity for token. The profile fetch carries token
// explicitly so a 401 there is the caller's failure and does not reach the
// gateway's invalidation path.
func (m *SessionManager) deriveUser(ctx context.Context, token string) (models.User, error) {
	claims, err := DecodeToken(token, m.now())
	if err != nil {
		return models.User{}, err
	}
	u := claims.User()
	if m.source == config.ProfileSourceToken {
		return u, nil
	}

	p, err := m.api.GetProfile(client.WithBearer(ctx, token))
	if err != nil {
		return models.User{}, fmt.Errorf("fetch profile: %w", err)
	}
	return u.Apply(*p), nil
}

func (m *SessionManager) begin(bump bool) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if bump {
		m.gen++
	}
	m.pending++
	return m.gen
}

func (m *SessionManager) end() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending--
}

// Login authenticates, persists the token and sets the user. On any
// failure the previous session, if there was one, is left as it was.
func (m *SessionManager) Login(ctx context.Context, email, password string) (models.User, error) {
	gen := m.begin(true)
	defer m.end()

	token, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.log.Info(ctx, "login failed", "email", email, "error", err)
		return models.User{}, fmt.Errorf("login error: %w", err)
	}

	u, err := m.deriveUser(ctx, token)
	if err != nil {
		m.log.Info(ctx, "login failed", "email", email, "error", err)
		return models.User{}, fmt.Errorf("login error: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		m.log.Debug(ctx, "login result discarded", "email", email)
		return models.User{}, ErrSuperseded
	}
	if err := m.creds.Save(ctx, token); err != nil {
		return models.User{}, fmt.Errorf("login error: %w", err)
	}
	m.token = token
	m.user = &u

	m.log.Info(ctx, "logged in", "user", u.ID, "email", u.Email)
	return u, nil
}

// Register creates the account and then logs in with the same credentials.
// A failed registration leaves the session unchanged; a failed login after
// a successful registration is a *PartialRegistrationError.
func (m *SessionManager) Register(ctx context.Context, req client.RegisterRequest) (models.User, error) {
	m.begin(false)
	defer m.end()

	if err := m.api.Register(ctx, req); err != nil {
		m.log.Info(ctx, "registration failed", "email", req.Email, "error", err)
		return models.User{}, fmt.Errorf("register error: %w", err)
	}
	m.log.Info(ctx, "account created", "email", req.Email)

	u, err := m.Login(ctx, req.Email, req.Password)
	if err != nil {
		return models.User{}, &PartialRegistrationError{Email: req.Email, Err: err}
	}
	return u, nil
}

// Logout ends the session. Without a session it is a no-op.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	had := m.user != nil || m.token != ""
	if err := m.clearLocked(ctx); err != nil {
		return fmt.Errorf("logout error: %w", err)
	}
	if had {
		m.log.Info(ctx, "logged out")
	}
	return nil
}

// HandleUnauthorized is called by the gateway when a call carrying the
// stored token came back 401. A report about a token other than the current
// one is stale and ignored.
func (m *SessionManager) HandleUnauthorized(ctx context.Context, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && m.token != token {
		m.log.Debug(ctx, "ignoring 401 for a replaced token")
		return
	}
	if err := m.clearLocked(ctx); err != nil {
		m.log.Error(ctx, "failed to clear credentials after 401", "error", err)
		return
	}
	m.log.Warn(ctx, "session invalidated by server")
}

// Init restores the session from a token left by a previous run. A token
// that cannot be turned into a user is removed.
func (m *SessionManager) Init(ctx context.Context) error {
	token, err := m.creds.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	_, err = m.RefreshUser(ctx)
	if err != nil && !errors.Is(err, ErrSuperseded) {
		return fmt.Errorf("restore session: %w", err)
	}
	return nil
}

// RefreshUser re-derives the user from the stored token. An absent or
// unusable token ends the session. Concurrent calls share one refresh, which
// runs detached from any single caller: a caller whose ctx is done gets
// ctx.Err() and the refresh still completes for the others.
func (m *SessionManager) RefreshUser(ctx context.Context) (models.User, error) {
	ch := m.refresh.DoChan("refresh", func() (any, error) {
		return m.refreshUser(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return models.User{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return models.User{}, res.Err
		}
		return res.Val.(models.User), nil
	}
}

func (m *SessionManager) refreshUser(ctx context.Context) (models.User, error) {
	m.mu.Lock()
	gen := m.gen
	m.mu.Unlock()

	token, err := m.creds.Token(ctx)
	if err != nil {
		return models.User{}, err
	}
	if token == "" {
		m.clearIfCurrent(ctx, gen, "no stored token")
		return models.User{}, ErrNotLoggedIn
	}

	u, err := m.deriveUser(ctx, token)
	if err != nil {
		// A cancelled or timed-out call says nothing about the token.
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			m.clearIfCurrent(ctx, gen, err.Error())
		}
		return models.User{}, fmt.Errorf("refresh user: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return models.User{}, ErrSuperseded
	}
	m.token = token
	m.user = &u
	return u, nil
}

// UpdateProfile sends the new profile and applies the server's answer to
// the current user.
func (m *SessionManager) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (models.User, error) {
	m.mu.Lock()
	gen, authenticated := m.gen, m.user != nil
	m.mu.Unlock()
	if !authenticated {
		return models.User{}, ErrNotLoggedIn
	}

	p, err := m.api.UpdateProfile(ctx, upd)
	if err != nil {
		return models.User{}, fmt.Errorf("update profile: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen || m.user == nil {
		return models.User{}, ErrSuperseded
	}
	u := m.user.Apply(*p)
	m.user = &u
	m.log.Info(ctx, "profile updated", "user", u.ID)
	return u, nil
}

func (m *SessionManager) clearIfCurrent(ctx context.Context, gen uint64, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return
	}
	if err := m.clearLocked(ctx); err != nil {
		m.log.Error(ctx, "failed to clear credentials", "error", err)
		return
	}
	m.log.Warn(ctx, "stored credentials cleared", "reason", reason)
}

// clearLocked drops the in-memory session before touching the store, so a
// failed delete never leaves a user without a token.
func (m *SessionManager) clearLocked(ctx context.Context) error {
	m.gen++
	m.token = ""
	m.user = nil
	return m.creds.Clear(ctx)
}
