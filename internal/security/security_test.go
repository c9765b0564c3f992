package security

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/projexhq/projex-server/internal/apperr"
)

const testSecret = "abcdefghijklmnopqrstuvwxyz123456"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestJWTManager(t *testing.T, clock *fakeClock) *JWTManager {
	t.Helper()
	opts := JWTOptions{
		Secret:     testSecret,
		Algorithm:  "HS256",
		Issuer:     "projex-test",
		Audience:   "projex-app",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
	if clock != nil {
		opts.Now = clock.Now
	}
	m, err := NewJWTManager(opts)
	if err != nil {
		t.Fatalf("new jwt manager: %v", err)
	}
	return m
}

func TestPasswordHashVerifyRoundTrip(t *testing.T) {
	h := NewBcryptHasher(4)
	hash, err := h.Hash("p1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "p1" {
		t.Fatal("hash must not equal the plain password")
	}
	if !h.Verify("p1", hash) {
		t.Fatal("expected verify to accept the original password")
	}
	if h.Verify("p2", hash) {
		t.Fatal("expected verify to reject a different password")
	}

	second, err := h.Hash("p1")
	if err != nil {
		t.Fatalf("second hash: %v", err)
	}
	if second == hash {
		t.Fatal("expected salted hashes to differ")
	}
	if !h.Verify("p1", second) {
		t.Fatal("expected verify to accept second hash")
	}
}

func TestPasswordHashRejectsEmpty(t *testing.T) {
	h := NewBcryptHasher(4)
	if _, err := h.Hash(""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
	if h.Verify("", "") {
		t.Fatal("empty input must never verify")
	}
	if h.Verify("p1", "not-a-bcrypt-hash") {
		t.Fatal("malformed hash must not verify")
	}
}

func TestPasswordHashCountsBytesNotRunes(t *testing.T) {
	h := NewBcryptHasher(4)
	atLimit := strings.Repeat("é", MaxPasswordBytes/2)
	hash, err := h.Hash(atLimit)
	if err != nil {
		t.Fatalf("hash %d-byte password: %v", len(atLimit), err)
	}
	if !h.Verify(atLimit, hash) {
		t.Fatal("expected verify to accept password at the byte limit")
	}
	over := strings.Repeat("é", 40)
	if _, err := h.Hash(over); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong for %d bytes, got %v", len(over), err)
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestJWTManager(t, nil)
	subject := uuid.New()

	token, err := m.IssueAccess(subject)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	got, err := m.VerifyAccess(token)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if got != subject {
		t.Fatalf("subject=%s want %s", got, subject)
	}
}

func TestAccessTokenExpires(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	m := newTestJWTManager(t, clock)
	subject := uuid.New()

	token, err := m.IssueAccess(subject)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	clock.Advance(29 * time.Minute)
	if _, err := m.VerifyAccess(token); err != nil {
		t.Fatalf("expected token valid before expiry: %v", err)
	}
	clock.Advance(2 * time.Minute)
	_, err = m.VerifyAccess(token)
	if !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected invalid token after expiry, got %v", err)
	}
}

func TestLeewayToleratesSkew(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	m, err := NewJWTManager(JWTOptions{
		Secret:     testSecret,
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
		Leeway:     30 * time.Second,
		Now:        clock.Now,
	})
	if err != nil {
		t.Fatalf("new jwt manager: %v", err)
	}
	token, err := m.IssueAccess(uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	clock.Advance(time.Minute + 10*time.Second)
	if _, err := m.VerifyAccess(token); err != nil {
		t.Fatalf("expected leeway to accept slightly expired token: %v", err)
	}
	clock.Advance(time.Minute)
	if _, err := m.VerifyAccess(token); err == nil {
		t.Fatal("expected token beyond leeway to fail")
	}
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	m := newTestJWTManager(t, nil)
	subject := uuid.New()

	access, err := m.IssueAccess(subject)
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	refresh, err := m.IssueRefresh(subject)
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}

	if _, err := m.VerifyRefresh(access); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected access token rejected as refresh, got %v", err)
	}
	if _, err := m.VerifyAccess(refresh); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected refresh token rejected as access, got %v", err)
	}
	got, err := m.VerifyRefresh(refresh)
	if err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
	if got != subject {
		t.Fatalf("subject=%s want %s", got, subject)
	}
}

func TestTokensIssuedTogetherAreDistinct(t *testing.T) {
	m := newTestJWTManager(t, nil)
	subject := uuid.New()
	a, _ := m.IssueRefresh(subject)
	b, _ := m.IssueRefresh(subject)
	if a == b {
		t.Fatal("expected consecutive refresh tokens to differ")
	}
}

func TestVerifyRejectsTamperedAndForeignTokens(t *testing.T) {
	m := newTestJWTManager(t, nil)
	token, err := m.IssueAccess(uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	if _, err := m.VerifyAccess(tampered); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected tampered token rejected, got %v", err)
	}

	if _, err := m.VerifyAccess("not-a-jwt"); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected malformed token rejected, got %v", err)
	}
	if _, err := m.VerifyAccess(""); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected empty token rejected, got %v", err)
	}

	other, err := NewJWTManager(JWTOptions{
		Secret:     "zyxwvutsrqponmlkjihgfedcba654321",
		Issuer:     "projex-test",
		Audience:   "projex-app",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("other manager: %v", err)
	}
	foreign, _ := other.IssueAccess(uuid.New())
	if _, err := m.VerifyAccess(foreign); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected token signed with another secret rejected, got %v", err)
	}
}

func TestVerifyRejectsUnexpectedAlgorithm(t *testing.T) {
	m := newTestJWTManager(t, nil)
	claims := Claims{
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "projex-test",
			Audience:  jwt.ClaimStrings{"projex-app"},
			Subject:   uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.VerifyAccess(raw); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected HS512 token rejected by HS256 manager, got %v", err)
	}
}

func TestNewJWTManagerValidatesOptions(t *testing.T) {
	if _, err := NewJWTManager(JWTOptions{AccessTTL: time.Minute, RefreshTTL: time.Hour}); err == nil {
		t.Fatal("expected error for missing secret")
	}
	if _, err := NewJWTManager(JWTOptions{Secret: testSecret, Algorithm: "RS256", AccessTTL: time.Minute, RefreshTTL: time.Hour}); err == nil {
		t.Fatal("expected error for unsupported algorithm")
	}
}
