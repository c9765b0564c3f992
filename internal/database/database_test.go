package database

import (
	"context"
	"io"
	"log/slog"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/projexhq/projex-server/internal/config"
	"github.com/projexhq/projex-server/internal/domain"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	cfg := &config.Config{
		DatabaseDriver: "sqlite",
		DatabaseURL:    "file:database_test?mode=memory&cache=shared",
		DBMaxOpenConns: 1,
		DBMaxIdleConns: 1,
		LogLevel:       "info",
	}
	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })

	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, model := range domain.Models() {
		if !db.Migrator().HasTable(model) {
			t.Fatalf("expected table for %T", model)
		}
	}
	if !db.Migrator().HasTable("task_tags") {
		t.Fatal("expected task_tags join table")
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(&config.Config{DatabaseDriver: "oracle"}); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

func TestOpenRedis(t *testing.T) {
	server := miniredis.RunT(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := OpenRedis(context.Background(), &config.Config{RedisURL: "redis://" + server.Addr() + "/0"}, log)
	if err != nil {
		t.Fatalf("open redis: %v", err)
	}
	_ = client.Close()

	if _, err := OpenRedis(context.Background(), &config.Config{RedisURL: "://bad"}, log); err == nil {
		t.Fatal("expected parse error")
	}
}
