// Package services contains server-side business logic. This file implements
// UserService: signup, login, logout, token refresh and password reset.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/letterdesk/internal/common"
	"github.com/dmitrijs2005/letterdesk/internal/cryptox"
	"github.com/dmitrijs2005/letterdesk/internal/dbx"
	"github.com/dmitrijs2005/letterdesk/internal/logging"
	"github.com/dmitrijs2005/letterdesk/internal/server/auth"
	"github.com/dmitrijs2005/letterdesk/internal/server/config"
	"github.com/dmitrijs2005/letterdesk/internal/server/metrics"
	"github.com/dmitrijs2005/letterdesk/internal/server/models"
	"github.com/dmitrijs2005/letterdesk/internal/server/notify"
	"github.com/dmitrijs2005/letterdesk/internal/server/ratelimit"
	"github.com/dmitrijs2005/letterdesk/internal/server/repositories/repomanager"
)

// Session is the result of a successful signup or login.
type Session struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// AffiliateCreditor is the part of the affiliate ledger signup depends on.
type AffiliateCreditor interface {
	CreditAffiliate(ctx context.Context, code string, ref models.Referral) error
}

// UserDeps are the collaborators of UserService. Nil limiters disable
// throttling; a nil notifier only logs.
type UserDeps struct {
	Hasher       cryptox.Hasher
	Affiliates   AffiliateCreditor
	Notifier     notify.Notifier
	LoginLimiter ratelimit.Limiter
	ResetLimiter ratelimit.Limiter
	Logger       logging.Logger
}

type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	hasher                       cryptox.Hasher
	affiliates                   AffiliateCreditor
	notifier                     notify.Notifier
	loginLimiter                 ratelimit.Limiter
	resetLimiter                 ratelimit.Limiter
	log                          logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	resetTokenValidityDuration   time.Duration
	referralAmount               float64
	now                          func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, deps UserDeps) *UserService {
	s := &UserService{
		db:                           db,
		repomanager:                  m,
		hasher:                       deps.Hasher,
		affiliates:                   deps.Affiliates,
		notifier:                     deps.Notifier,
		loginLimiter:                 deps.LoginLimiter,
		resetLimiter:                 deps.ResetLimiter,
		log:                          deps.Logger,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		resetTokenValidityDuration:   cfg.ResetTokenValidityDuration,
		referralAmount:               cfg.ReferralSubscriptionAmount,
		now:                          time.Now,
	}
	if s.hasher == nil {
		s.hasher = cryptox.SHA256Hasher{}
	}
	if s.log == nil {
		s.log = logging.Nop{}
	}
	s.log = s.log.With("module", "users")
	if s.notifier == nil {
		s.notifier = notify.NewLogNotifier(s.log)
	}
	return s
}

// Signup registers an account and logs it in. Admin accounts cannot be
// self-registered. A failing affiliate credit is logged and never aborts
// the signup.
func (s *UserService) Signup(ctx context.Context, email, password string, role models.Role, affiliateCode string) (*Session, error) {
	email = models.NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	if role == "" {
		role = models.RoleUser
	}
	role, err := models.ParseRole(string(role))
	if err != nil {
		return nil, err
	}
	if role == models.RoleAdmin {
		return nil, fmt.Errorf("%w: admin accounts cannot be self-registered", common.ErrPermissionDenied)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	_, err = s.repomanager.Users(s.db).Create(ctx, &models.User{Email: email, PasswordHash: hash, Role: role})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			metrics.ObserveAuth("signup", "duplicate")
			return nil, common.ErrDuplicateAccount
		}
		s.log.Error(ctx, "create user failed", "error", err)
		return nil, common.ErrorInternal
	}
	metrics.ObserveAuth("signup", "ok")

	if affiliateCode = strings.TrimSpace(affiliateCode); affiliateCode != "" && s.affiliates != nil {
		ref := models.Referral{ReferredUserEmail: email, SubscriptionAmount: s.referralAmount, UsedDiscount: true}
		if err := s.affiliates.CreditAffiliate(ctx, affiliateCode, ref); err != nil {
			s.log.Error(ctx, "affiliate credit failed", "code", affiliateCode, "error", err)
		}
	}

	return s.login(ctx, email, password)
}

// Login verifies the credentials and issues a fresh token pair. Attempts are
// throttled per email.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = models.NormalizeEmail(email)
	if !s.allow(ctx, s.loginLimiter, email) {
		metrics.ObserveAuth("login", "throttled")
		return nil, common.ErrTooManyRequests
	}
	return s.login(ctx, email, password)
}

// login is Login without the limiter; signup uses it for the implicit login
// of a freshly stored account.
func (s *UserService) login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			metrics.ObserveAuth("login", "unknown_user")
			return nil, common.ErrUserNotFound
		}
		s.log.Error(ctx, "get user failed", "error", err)
		return nil, common.ErrorInternal
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		metrics.ObserveAuth("login", "bad_password")
		return nil, common.ErrInvalidCredentials
	}

	session, err := s.issueSession(ctx, user, s.db)
	if err != nil {
		return nil, err
	}
	metrics.ObserveAuth("login", "ok")
	return session, nil
}

// Logout revokes the refresh token. Unknown tokens are not an error.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken); err != nil {
		s.log.Error(ctx, "revoke refresh token failed", "error", err)
		return common.ErrorInternal
	}
	metrics.ObserveAuth("logout", "ok")
	return nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh session. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(s.now()) {
		metrics.ObserveAuth("refresh", "expired")
		return nil, common.ErrRefreshTokenExpired
	}

	var session *Session
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorUnauthorized
			}
			return err
		}
		session, err = s.issueSession(ctx, user, tx)
		return err
	}); err != nil {
		return nil, err
	}
	metrics.ObserveAuth("refresh", "ok")
	return session, nil
}

// RequestPasswordReset never reports whether the account exists. For an
// existing account it stores a single-use token and hands it to the notifier.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil
	}
	if !s.allow(ctx, s.resetLimiter, email) {
		s.log.Warn(ctx, "password reset throttled", "email", email)
		return nil
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.log.Error(ctx, "password reset lookup failed", "error", err)
		}
		return nil
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		s.log.Error(ctx, "generate reset token failed", "error", err)
		return nil
	}
	reset := &models.PasswordResetToken{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: s.now().Add(s.resetTokenValidityDuration),
	}
	if err := s.repomanager.ResetTokens(s.db).Create(ctx, reset); err != nil {
		s.log.Error(ctx, "store reset token failed", "error", err)
		return nil
	}

	msg := notify.PasswordReset{Email: reset.Email, Token: reset.Token, ExpiresAt: reset.ExpiresAt}
	if err := s.notifier.NotifyPasswordReset(ctx, msg); err != nil {
		s.log.Error(ctx, "reset notification failed", "error", err)
	}
	metrics.ObserveAuth("reset_request", "ok")
	return nil
}

// ResetPassword consumes token and sets a new password. The token is deleted
// and every refresh token of the account revoked in the same transaction.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: password is required", common.ErrValidation)
	}

	reset, err := s.repomanager.ResetTokens(s.db).Find(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidOrExpiredToken
		}
		s.log.Error(ctx, "find reset token failed", "error", err)
		return common.ErrorInternal
	}
	if !reset.Valid(s.now()) {
		if err := s.repomanager.ResetTokens(s.db).Delete(ctx, token); err != nil && !errors.Is(err, common.ErrorNotFound) {
			s.log.Error(ctx, "delete expired reset token failed", "error", err)
		}
		return common.ErrInvalidOrExpiredToken
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return common.ErrorInternal
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.ResetTokens(tx).Delete(ctx, token); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidOrExpiredToken
			}
			return err
		}
		if err := s.repomanager.Users(tx).UpdatePasswordHash(ctx, reset.UserID, hash); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrAccountNotFound
			}
			return err
		}
		return s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, reset.UserID)
	})
	switch {
	case err == nil:
		metrics.ObserveAuth("reset", "ok")
		return nil
	case errors.Is(err, common.ErrInvalidOrExpiredToken), errors.Is(err, common.ErrAccountNotFound):
		return err
	default:
		s.log.Error(ctx, "reset password failed", "error", err)
		return common.ErrorInternal
	}
}

// WhoAmI returns the account behind a validated access token.
func (s *UserService) WhoAmI(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// --- helpers below ---

func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: invalid email", common.ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", common.ErrValidation)
	}
	return nil
}

// allow fails open when the limiter backend is unavailable.
func (s *UserService) allow(ctx context.Context, l ratelimit.Limiter, key string) bool {
	if l == nil {
		return true
	}
	ok, err := l.Allow(ctx, key)
	if err != nil {
		s.log.Warn(ctx, "rate limiter unavailable", "error", err)
		return true
	}
	return ok
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) issueSession(ctx context.Context, user *models.User, tx dbx.DBTX) (*Session, error) {
	access, err := auth.GenerateToken(auth.PrincipalOf(user), s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, user.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		s.log.Error(ctx, "store refresh token failed", "error", err)
		return nil, common.ErrorInternal
	}
	return &Session{User: user, AccessToken: access, RefreshToken: refresh}, nil
}
