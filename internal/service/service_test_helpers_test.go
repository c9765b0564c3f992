package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/projexhq/projex-server/internal/domain"
	"github.com/projexhq/projex-server/internal/repository"
	"github.com/projexhq/projex-server/internal/security"
)

func newDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// newMiniredisForTest returns a client bound to a fresh miniredis server; the
// server is exposed so tests can FastForward TTLs.
func newMiniredisForTest(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type authFixture struct {
	db         *gorm.DB
	users      repository.UserRepository
	workspaces *WorkspaceService
	sessions   *RedisSessionStore
	tokens     *security.JWTManager
	auth       *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db := newDBForTest(t)
	_, client := newMiniredisForTest(t)
	tokens, err := security.NewJWTManager(security.JWTOptions{
		Secret:     "service-test-secret-0123456789abcdef",
		Algorithm:  "HS256",
		Issuer:     "projex-test",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("jwt manager: %v", err)
	}
	f := &authFixture{
		db:         db,
		users:      repository.NewUserRepository(db),
		workspaces: NewWorkspaceService(repository.NewWorkspaceRepository(db), nil),
		sessions:   NewRedisSessionStore(client, "refresh_token"),
		tokens:     tokens,
	}
	f.auth = NewAuthService(f.users, f.workspaces, security.NewBcryptHasher(4), tokens, f.sessions, nil)
	return f
}
