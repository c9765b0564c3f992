package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/projexhq/projex-server/internal/apperr"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type Claims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

type JWTOptions struct {
	Secret     string
	Algorithm  string
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// Leeway tolerates clock skew between issuer and verifier.
	Leeway time.Duration
	Now    func() time.Time
}

// JWTManager issues and verifies access and refresh tokens signed with one
// shared secret. The signing algorithm is fixed for the lifetime of the
// manager.
type JWTManager struct {
	secret     []byte
	method     jwt.SigningMethod
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	leeway     time.Duration
	now        func() time.Time
}

func NewJWTManager(opts JWTOptions) (*JWTManager, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("jwt secret is required")
	}
	method, err := signingMethod(opts.Algorithm)
	if err != nil {
		return nil, err
	}
	if opts.AccessTTL <= 0 || opts.RefreshTTL <= 0 {
		return nil, errors.New("jwt ttls must be positive")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &JWTManager{
		secret:     []byte(opts.Secret),
		method:     method,
		issuer:     opts.Issuer,
		audience:   opts.Audience,
		accessTTL:  opts.AccessTTL,
		refreshTTL: opts.RefreshTTL,
		leeway:     opts.Leeway,
		now:        now,
	}, nil
}

func signingMethod(alg string) (jwt.SigningMethod, error) {
	switch alg {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", alg)
	}
}

func (m *JWTManager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *JWTManager) RefreshTTL() time.Duration { return m.refreshTTL }

func (m *JWTManager) IssueAccess(subject uuid.UUID) (string, error) {
	return m.sign(subject, TokenTypeAccess, m.accessTTL)
}

func (m *JWTManager) IssueRefresh(subject uuid.UUID) (string, error) {
	return m.sign(subject, TokenTypeRefresh, m.refreshTTL)
}

func (m *JWTManager) sign(subject uuid.UUID, tokenType string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   subject.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			// jti keeps two tokens minted in the same second distinct.
			ID: uuid.NewString(),
		},
	}
	if m.audience != "" {
		claims.Audience = jwt.ClaimStrings{m.audience}
	}
	return jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
}

// VerifyAccess returns the subject of a valid access token.
func (m *JWTManager) VerifyAccess(raw string) (uuid.UUID, error) {
	claims, err := m.parse(raw, TokenTypeAccess)
	if err != nil {
		return uuid.Nil, err
	}
	return subjectOf(claims)
}

// VerifyRefresh returns the subject of a valid refresh token. Access tokens
// are rejected even when their signature is valid.
func (m *JWTManager) VerifyRefresh(raw string) (uuid.UUID, error) {
	claims, err := m.parse(raw, TokenTypeRefresh)
	if err != nil {
		return uuid.Nil, err
	}
	return subjectOf(claims)
}

func (m *JWTManager) parse(raw, tokenType string) (*Claims, error) {
	if raw == "" {
		return nil, apperr.ErrInvalidToken
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(m.leeway),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidToken, "invalid or expired token", err)
	}
	if !tok.Valid {
		return nil, apperr.ErrInvalidToken
	}
	if claims.TokenType != tokenType {
		return nil, apperr.Wrap(apperr.KindInvalidToken, "invalid or expired token",
			fmt.Errorf("unexpected token type %q", claims.TokenType))
	}
	return claims, nil
}

func subjectOf(claims *Claims) (uuid.UUID, error) {
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.KindInvalidToken, "invalid or expired token", err)
	}
	return id, nil
}
