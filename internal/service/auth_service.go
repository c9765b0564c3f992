package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/projexhq/projex-server/internal/apperr"
	"github.com/projexhq/projex-server/internal/domain"
	"github.com/projexhq/projex-server/internal/observability"
	"github.com/projexhq/projex-server/internal/repository"
	"github.com/projexhq/projex-server/internal/security"
)

const TokenTypeBearer = "bearer"

type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type LoginResult struct {
	TokenPair
	User domain.PublicUser `json:"user"`
}

// AuthService drives register, login, refresh, logout and current-user
// resolution. Each user has at most one live refresh token, held by the
// SessionStore.
type AuthService struct {
	users      repository.UserRepository
	workspaces *WorkspaceService
	hasher     security.PasswordHasher
	tokens     *security.JWTManager
	sessions   SessionStore
	logger     *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	users repository.UserRepository,
	workspaces *WorkspaceService,
	hasher security.PasswordHasher,
	tokens *security.JWTManager,
	sessions SessionStore,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:      users,
		workspaces: workspaces,
		hasher:     hasher,
		tokens:     tokens,
		sessions:   sessions,
		logger:     logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (_ *domain.User, err error) {
	ctx, span := observability.StartSpan(ctx, "auth.register")
	defer func() {
		observability.RecordAuthRegister(ctx, outcome(err))
		endSpan(span, err)
	}()

	email := normalizeEmail(in.Email)
	switch _, lookupErr := s.users.FindByEmail(ctx, email); {
	case lookupErr == nil:
		return nil, apperr.ErrUserAlreadyExists
	case !errors.Is(lookupErr, repository.ErrNotFound):
		return nil, apperr.Internal("lookup user", lookupErr)
	}

	hash, err := s.hasher.Hash(in.Password)
	switch {
	case errors.Is(err, security.ErrPasswordTooLong), errors.Is(err, security.ErrEmptyPassword):
		return nil, apperr.Wrap(apperr.KindValidation, err.Error(), err)
	case err != nil:
		return nil, apperr.Internal("hash password", err)
	}
	user := &domain.User{
		FullName:       strings.TrimSpace(in.FullName),
		Email:          email,
		HashedPassword: hash,
		IsActive:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.ErrUserAlreadyExists
		}
		return nil, apperr.Internal("create user", err)
	}

	if s.workspaces != nil {
		if _, err := s.workspaces.CreateDefault(ctx, user); err != nil {
			s.logger.ErrorContext(ctx, "create default workspace failed",
				"user_id", user.ID.String(), "error", err)
		}
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (_ *LoginResult, err error) {
	ctx, span := observability.StartSpan(ctx, "auth.login")
	defer func() {
		observability.RecordAuthLogin(ctx, outcome(err))
		endSpan(span, err)
	}()

	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Unknown emails pay the same bcrypt cost as wrong passwords.
			s.hasher.Verify(password, s.dummyPasswordHash())
			return nil, apperr.ErrIncorrectCredentials
		}
		return nil, apperr.Internal("lookup user", err)
	}
	if !s.hasher.Verify(password, user.HashedPassword) {
		return nil, apperr.ErrIncorrectCredentials
	}
	if !user.IsActive {
		return nil, apperr.ErrInactiveUser
	}

	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{TokenPair: *pair, User: user.Public()}, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token must
// equal the one currently stored for its subject and is consumed atomically,
// so each refresh token is usable once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (_ *TokenPair, err error) {
	ctx, span := observability.StartSpan(ctx, "auth.refresh")
	defer func() {
		observability.RecordAuthRefresh(ctx, outcome(err))
		endSpan(span, err)
	}()

	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	consumed, err := s.sessions.ConsumeIfMatch(ctx, userID, refreshToken)
	if err != nil {
		return nil, apperr.Internal("consume refresh token", err)
	}
	if !consumed {
		return nil, apperr.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrInvalidToken
		}
		return nil, apperr.Internal("lookup user", err)
	}
	if !user.IsActive {
		return nil, apperr.ErrInactiveUser
	}
	return s.issuePair(ctx, user.ID)
}

// Logout drops the stored refresh token of the token's subject. It succeeds
// whether or not a token was stored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) (err error) {
	ctx, span := observability.StartSpan(ctx, "auth.logout")
	defer func() {
		observability.RecordAuthLogout(ctx, outcome(err))
		endSpan(span, err)
	}()

	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, userID); err != nil {
		return apperr.Internal("delete refresh token", err)
	}
	return nil
}

// CurrentUser resolves the active user an access token was issued to.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (_ *domain.User, err error) {
	defer func() { observability.RecordAccessTokenValidation(ctx, outcome(err)) }()

	if accessToken == "" {
		return nil, apperr.ErrUnauthorized
	}
	userID, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, apperr.Internal("lookup user", err)
	}
	if !user.IsActive {
		return nil, apperr.ErrInactiveUser
	}
	return user, nil
}

func (s *AuthService) issuePair(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	access, err := s.tokens.IssueAccess(userID)
	if err != nil {
		return nil, apperr.Internal("issue access token", err)
	}
	refresh, err := s.tokens.IssueRefresh(userID)
	if err != nil {
		return nil, apperr.Internal("issue refresh token", err)
	}
	if err := s.sessions.Put(ctx, userID, refresh, s.tokens.RefreshTTL()); err != nil {
		return nil, apperr.Internal("store refresh token", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: TokenTypeBearer}, nil
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(fmt.Sprintf("projex-dummy-%s", uuid.NewString()))
		if err != nil {
			s.logger.Error("compute dummy password hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
