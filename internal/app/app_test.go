package app

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/projexhq/projex-server/internal/config"
)

func TestNewAssignsDependenciesAndTimeouts(t *testing.T) {
	cfg := &config.Config{ShutdownTimeout: 10 * time.Second, HTTPAddr: ":0"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := NewHTTPServer(cfg, http.NotFoundHandler())

	a := New(cfg, logger, server, nil, nil, nil)
	if a.Config != cfg || a.Logger != logger || a.Server != server {
		t.Fatal("expected app dependencies to be assigned")
	}
	if a.ShutdownTimeout != cfg.ShutdownTimeout {
		t.Fatal("expected shutdown timeout copied from config")
	}
	if server.ReadHeaderTimeout == 0 {
		t.Fatal("expected read header timeout set")
	}
}

func TestRunStopsOnCancelAndClosesRedis(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := &config.Config{HTTPAddr: addr, ShutdownTimeout: time.Second}
	a := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), NewHTTPServer(cfg, http.NotFoundHandler()), nil, client, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		conn, err := net.Dial("tcp", addr)
		if err == nil {
			_ = conn.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never started: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("run did not return after cancel")
	}
	if err := client.Ping(context.Background()).Err(); err == nil {
		t.Fatal("expected redis client closed after run")
	}
}
