// Package session holds the signed-in state of the CLI. A Manager is either
// unauthenticated or authenticated as one user; the authenticated state is
// persisted so a later process can restore it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/letterdesk/internal/client/api"
	"github.com/dmitrijs2005/letterdesk/internal/client/models"
	"github.com/dmitrijs2005/letterdesk/internal/common"
	"github.com/dmitrijs2005/letterdesk/internal/logging"
)

// Keys of the persisted session record.
const (
	KeyEmail        = "email"
	KeyRole         = "role"
	KeyUserID       = "user_id"
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// RestorePolicy decides whether a persisted session is re-checked with the
// server before it is used.
type RestorePolicy string

const (
	RestoreTrust  RestorePolicy = "trust"
	RestoreVerify RestorePolicy = "verify"
)

func ParsePolicy(s string) (RestorePolicy, error) {
	switch p := RestorePolicy(s); p {
	case RestoreTrust, RestoreVerify:
		return p, nil
	case "":
		return RestoreVerify, nil
	}
	return "", fmt.Errorf("%w: unknown restore policy %q", common.ErrValidation, s)
}

// Store persists the session record.
type Store interface {
	Save(ctx context.Context, values map[string]string) error
	Load(ctx context.Context) (map[string]string, error)
	Clear(ctx context.Context) error
}

// AuthAPI is the server side of authentication.
type AuthAPI interface {
	Signup(ctx context.Context, email, password string, role models.Role, affiliateCode string) (api.Session, error)
	Login(ctx context.Context, email, password string) (api.Session, error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (api.Session, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	WhoAmI(ctx context.Context, accessToken string) (models.User, error)
}

// Manager serializes all state changes with a mutex, so calls that reach
// the server are processed one at a time.
type Manager struct {
	mu     sync.Mutex
	store  Store
	auth   AuthAPI
	policy RestorePolicy
	logger logging.Logger

	user         *models.User
	accessToken  string
	refreshToken string
}

func NewManager(store Store, auth AuthAPI, policy RestorePolicy, l logging.Logger) *Manager {
	if l == nil {
		l = logging.Nop{}
	}
	if policy == "" {
		policy = RestoreVerify
	}
	return &Manager{store: store, auth: auth, policy: policy, logger: l.With("module", "session")}
}

// Signup creates an account and signs in as it.
func (m *Manager) Signup(ctx context.Context, email, password string, role models.Role, affiliateCode string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.auth.Signup(ctx, email, password, role, affiliateCode)
	if err != nil {
		return models.User{}, err
	}
	m.establish(ctx, s)
	return s.User, nil
}

func (m *Manager) Login(ctx context.Context, email, password string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return models.User{}, err
	}
	m.establish(ctx, s)
	return s.User, nil
}

// Logout revokes the refresh token on a best-effort basis and forgets the
// session. Logging out while unauthenticated is a no-op.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.refreshToken != "" {
		if err := m.auth.Logout(ctx, m.refreshToken); err != nil {
			m.logger.Warn(ctx, "server logout failed", "error", err)
		}
	}
	return m.reset(ctx)
}

func (m *Manager) RequestPasswordReset(ctx context.Context, email string) error {
	return m.auth.RequestPasswordReset(ctx, email)
}

func (m *Manager) ResetPassword(ctx context.Context, token, newPassword string) error {
	return m.auth.ResetPassword(ctx, token, newPassword)
}

// Restore loads the persisted session. A missing or partial record leaves
// the manager unauthenticated. Under RestoreVerify the server must confirm
// the token; a rejected token clears the record, while a transport failure
// is returned and leaves the record for a later attempt.
func (m *Manager) Restore(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.user, m.accessToken, m.refreshToken = nil, "", ""

	rec, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	email, access := rec[KeyEmail], rec[KeyAccessToken]
	role, roleErr := models.ParseRole(rec[KeyRole])
	if email == "" || access == "" || roleErr != nil {
		return nil
	}

	if m.policy == RestoreTrust {
		m.user = &models.User{ID: rec[KeyUserID], Email: email, Role: role}
		m.accessToken, m.refreshToken = access, rec[KeyRefreshToken]
		return nil
	}

	u, err := m.auth.WhoAmI(ctx, access)
	if errors.Is(err, common.ErrTokenExpired) && rec[KeyRefreshToken] != "" {
		var s api.Session
		s, err = m.auth.Refresh(ctx, rec[KeyRefreshToken])
		if err == nil {
			m.establish(ctx, s)
			return nil
		}
	}
	if err != nil {
		if isRejected(err) {
			m.logger.Info(ctx, "persisted session rejected", "error", err)
			return m.reset(ctx)
		}
		return fmt.Errorf("verify session: %w", err)
	}

	m.user = &u
	m.accessToken, m.refreshToken = access, rec[KeyRefreshToken]
	return nil
}

// Current returns the signed-in user.
func (m *Manager) Current() (models.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return models.User{}, false
	}
	return *m.user, true
}

// Token returns the access token, or "" when unauthenticated.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accessToken
}

// Refresh rotates the token pair and returns the new access token. A
// rejected refresh token signs the manager out and yields
// common.ErrNotAuthenticated.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil || m.refreshToken == "" {
		return "", common.ErrNotAuthenticated
	}

	s, err := m.auth.Refresh(ctx, m.refreshToken)
	if err != nil {
		if isRejected(err) {
			if rerr := m.reset(ctx); rerr != nil {
				m.logger.Warn(ctx, "clear session failed", "error", rerr)
			}
			return "", fmt.Errorf("%w: %v", common.ErrNotAuthenticated, err)
		}
		return "", err
	}
	m.establish(ctx, s)
	return s.AccessToken, nil
}

// establish switches to the authenticated state and persists it. A failed
// write only costs the next process its restore, so it is logged.
func (m *Manager) establish(ctx context.Context, s api.Session) {
	u := s.User
	m.user = &u
	m.accessToken, m.refreshToken = s.AccessToken, s.RefreshToken

	err := m.store.Save(ctx, map[string]string{
		KeyEmail:        u.Email,
		KeyRole:         string(u.Role),
		KeyUserID:       u.ID,
		KeyAccessToken:  s.AccessToken,
		KeyRefreshToken: s.RefreshToken,
	})
	if err != nil {
		m.logger.Warn(ctx, "persist session failed", "error", err)
	}
}

func (m *Manager) reset(ctx context.Context) error {
	m.user, m.accessToken, m.refreshToken = nil, "", ""
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// isRejected reports whether the server refused the credentials, as opposed
// to being unreachable.
func isRejected(err error) bool {
	for _, target := range []error{
		common.ErrTokenExpired,
		common.ErrInvalidToken,
		common.ErrNotAuthenticated,
		common.ErrorUnauthorized,
		common.ErrRefreshTokenExpired,
		common.ErrUserNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
