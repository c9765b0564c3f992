package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/projexhq/projex-server/internal/config"
	"github.com/projexhq/projex-server/internal/database"
)

func newConfigForTest(t *testing.T) *config.Config {
	t.Helper()
	mr := miniredis.RunT(t)
	return &config.Config{
		Env:                "test",
		HTTPAddr:           "127.0.0.1:0",
		APIV1Prefix:        "/api/v1",
		LogLevel:           "error",
		DatabaseDriver:     "sqlite",
		DatabaseURL:        filepath.Join(t.TempDir(), "projex.db"),
		DBMaxOpenConns:     1,
		DBMaxIdleConns:     1,
		DBConnMaxLifetime:  time.Minute,
		RedisURL:           "redis://" + mr.Addr() + "/0",
		SessionKeyPrefix:   "refresh_token",
		RateLimitKeyPrefix: "rl",
		TokenSecretKey:     "abcdefghijklmnopqrstuvwxyz123456",
		TokenAlgorithm:     "HS256",
		TokenIssuer:        "projex-test",
		TokenAudience:      "projex-app",
		AccessTokenTTL:     time.Minute,
		RefreshTokenTTL:    time.Hour,
		BcryptCost:         4,
		AuthRateLimitRPM:   100,
		APIRateLimitRPM:    100,
		ShutdownTimeout:    time.Second,
		ReadinessTimeout:   time.Second,
	}
}

func TestInitializeAppServesReadiness(t *testing.T) {
	ctx := context.Background()
	cfg := newConfigForTest(t)

	a, err := InitializeApp(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("initialize app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	if err := database.Migrate(ctx, a.DB); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	for _, path := range []string{"/health/live", "/health/ready"} {
		rr := httptest.NewRecorder()
		a.Server.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", path, rr.Code, rr.Body.String())
		}
	}
	rr := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("me without token status=%d", rr.Code)
	}
}

func TestInitializeAppFailsOnUnreachableRedis(t *testing.T) {
	cfg := newConfigForTest(t)
	cfg.RedisURL = "redis://127.0.0.1:1/0"

	if _, err := InitializeApp(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected redis connection error")
	}
}
