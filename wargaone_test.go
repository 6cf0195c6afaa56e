package wargaone

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/warga-one/wargaone-go/internal/config"
	"github.com/warga-one/wargaone-go/internal/logging"
	"github.com/warga-one/wargaone-go/internal/session"
)

func sampleProfile() session.UserProfile {
	return session.UserProfile{
		ID:    "u-1",
		Name:  "Adi",
		Email: "adi@example.com",
		Phone: "+628111111111",
	}
}

func TestNewWithMemoryBackend(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{
		BaseURL:        "http://localhost:8080/api/v1",
		HTTPTimeout:    5 * time.Second,
		SessionBackend: config.BackendMemory,
	}

	app, err := New(ctx, cfg, logging.Discard())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if app.Sessions.IsAuthenticated() || app.Sessions.IsLoading() {
		t.Fatalf("fresh app should settle anonymous, got %+v", app.Sessions.Snapshot())
	}
}

func TestNewWithFileBackendResumesSession(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	cfg := config.Config{
		BaseURL:        "http://localhost:8080/api/v1",
		HTTPTimeout:    5 * time.Second,
		SessionBackend: config.BackendFile,
		SessionFile:    path,
	}

	first, err := New(ctx, cfg, logging.Discard())
	if err != nil {
		t.Fatalf("first app: %v", err)
	}
	if err := first.Sessions.Login(ctx, sampleProfile(), "tok-1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	// A second composition over the same file is the app-restart scenario.
	second, err := New(ctx, cfg, logging.Discard())
	if err != nil {
		t.Fatalf("second app: %v", err)
	}
	if !second.Sessions.IsAuthenticated() {
		t.Fatalf("expected session resumed from disk")
	}
	if second.Sessions.Token() != "tok-1" {
		t.Fatalf("unexpected token %q", second.Sessions.Token())
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{SessionBackend: "vault"}
	if _, err := New(ctx, cfg, logging.Discard()); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
