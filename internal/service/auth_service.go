package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/inventory-api/internal/metrics"
	"github.com/iliyamo/inventory-api/internal/model"
	"github.com/iliyamo/inventory-api/internal/repository"
	"github.com/iliyamo/inventory-api/internal/utils"
)

// refreshStoreWindow is the expiry written to a stored refresh row. It is
// independent of the signed token's TTL; whichever runs out first wins.
const refreshStoreWindow = 7 * 24 * time.Hour

const minPasswordLen = 6

// UserStore is the subset of the user repository the auth service needs.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string, role model.Role) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
}

// TokenStore persists refresh tokens by digest.
type TokenStore interface {
	Store(ctx context.Context, t model.RefreshToken) error
	Find(ctx context.Context, tokenHash string) (model.RefreshToken, error)
	Delete(ctx context.Context, tokenHash string) error
	Rotate(ctx context.Context, oldHash string, next model.RefreshToken) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
	User         model.PublicUser `json:"user"`
}

// TokenPair is returned by a successful refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthService verifies credentials and manages the refresh-token
// lifecycle. It is the only writer of refresh-token state.
type AuthService struct {
	users      UserStore
	tokens     TokenStore
	codec      *utils.TokenCodec
	bcryptCost int
	log        *slog.Logger

	now func() time.Time
}

// NewAuthService wires the service. A nil logger falls back to slog.Default.
func NewAuthService(users UserStore, tokens TokenStore, codec *utils.TokenCodec, bcryptCost int, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{
		users:      users,
		tokens:     tokens,
		codec:      codec,
		bcryptCost: bcryptCost,
		log:        log,
		now:        time.Now,
	}
}

// Login checks the credentials and issues a fresh token pair. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.LoginOutcomes.WithLabelValues("invalid").Inc()
			return LoginResult{}, ErrInvalidCredentials
		}
		metrics.LoginOutcomes.WithLabelValues("error").Inc()
		return LoginResult{}, fmt.Errorf("load user: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		metrics.LoginOutcomes.WithLabelValues("invalid").Inc()
		return LoginResult{}, ErrInvalidCredentials
	}

	access, err := s.codec.IssueAccessToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.codec.IssueRefreshToken(u.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.tokens.Store(ctx, s.storedToken(u.ID, refresh.Raw)); err != nil {
		metrics.LoginOutcomes.WithLabelValues("error").Inc()
		return LoginResult{}, fmt.Errorf("store refresh token: %w", err)
	}

	metrics.LoginOutcomes.WithLabelValues("ok").Inc()
	return LoginResult{
		AccessToken:  access.Token,
		RefreshToken: refresh.Raw,
		User:         u.Public(),
	}, nil
}

// Register creates a USER account. The caller cannot choose the role and
// no tokens are issued.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (model.PublicUser, error) {
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return model.PublicUser{}, ErrEmailInUse
	case !errors.Is(err, repository.ErrNotFound):
		return model.PublicUser{}, fmt.Errorf("check email: %w", err)
	}

	if utf8.RuneCountInString(password) < minPasswordLen {
		return model.PublicUser{}, ErrWeakPassword
	}

	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, name, email, hash, model.RoleUser)
	if err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, repository.ErrEmailExists) {
			return model.PublicUser{}, ErrEmailInUse
		}
		return model.PublicUser{}, fmt.Errorf("create user: %w", err)
	}
	return u.Public(), nil
}

// Refresh exchanges a refresh token for a new pair. The presented token
// is consumed: a second exchange of the same string fails with
// ErrReusedOrInvalidToken.
func (s *AuthService) Refresh(ctx context.Context, raw string) (TokenPair, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TokenPair{}, ErrReusedOrInvalidToken
	}
	hash := utils.HashRefreshRaw(raw)

	if _, err := s.tokens.Find(ctx, hash); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			metrics.RefreshOutcomes.WithLabelValues("reused").Inc()
			return TokenPair{}, ErrReusedOrInvalidToken
		}
		metrics.RefreshOutcomes.WithLabelValues("error").Inc()
		return TokenPair{}, fmt.Errorf("find refresh token: %w", err)
	}

	claims, err := s.codec.VerifyRefreshToken(raw)
	if err != nil {
		if derr := s.tokens.Delete(ctx, hash); derr != nil {
			s.log.Warn("purge unverifiable refresh token", "error", derr)
		}
		metrics.RefreshOutcomes.WithLabelValues("expired").Inc()
		return TokenPair{}, ErrExpiredToken
	}

	u, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.RefreshOutcomes.WithLabelValues("user_missing").Inc()
			return TokenPair{}, ErrUserNotFound
		}
		metrics.RefreshOutcomes.WithLabelValues("error").Inc()
		return TokenPair{}, fmt.Errorf("load user: %w", err)
	}

	access, err := s.codec.IssueAccessToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	next, err := s.codec.IssueRefreshToken(u.ID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}

	if err := s.tokens.Rotate(ctx, hash, s.storedToken(u.ID, next.Raw)); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			// A concurrent exchange of the same token committed first.
			metrics.RefreshOutcomes.WithLabelValues("reused").Inc()
			return TokenPair{}, ErrReusedOrInvalidToken
		}
		metrics.RefreshOutcomes.WithLabelValues("error").Inc()
		return TokenPair{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	metrics.RefreshOutcomes.WithLabelValues("ok").Inc()
	return TokenPair{AccessToken: access.Token, RefreshToken: next.Raw}, nil
}

// Logout revokes one refresh token. Empty and unknown tokens succeed.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if err := s.tokens.Delete(ctx, utils.HashRefreshRaw(raw)); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

// EnsureAdmin creates an ADMIN account for email unless one with that
// email already exists. It reports whether a row was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("check admin: %w", err)
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return false, ErrWeakPassword
	}
	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.users.Create(ctx, name, email, hash, model.RoleAdmin); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return false, nil
		}
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}

// PurgeExpired removes stored refresh rows past their expiry.
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpired(ctx, s.now())
}

func (s *AuthService) storedToken(userID, raw string) model.RefreshToken {
	return model.RefreshToken{
		TokenHash: utils.HashRefreshRaw(raw),
		UserID:    userID,
		ExpiresAt: s.now().UTC().Add(refreshStoreWindow),
	}
}
