// Package wargaone is the client-side session core of the WargaOne
// community super-app: persisted credentials, the in-memory auth state
// machine, and an HTTP client that reacts to server-declared session
// invalidation.
package wargaone

import (
	"context"
	"log/slog"

	"github.com/warga-one/wargaone-go/internal/api"
	"github.com/warga-one/wargaone-go/internal/config"
	"github.com/warga-one/wargaone-go/internal/logging"
	"github.com/warga-one/wargaone-go/internal/session"
)

// App bundles the SDK's collaborators behind one explicit composition root.
// Construct it once at startup and pass it by reference; it lives for the
// process lifetime and needs no teardown.
type App struct {
	Config   config.Config
	Store    session.Store
	Sessions *session.Manager
	API      *api.Client
}

// New opens the configured session store, settles the initial auth state with
// a non-silent refresh, and wires the API client through the token-attaching
// transport over the same store.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	store, err := session.OpenStore(ctx, cfg, logging.Component(logger, "store"))
	if err != nil {
		return nil, err
	}

	manager := session.NewManager(ctx, store, logging.Component(logger, "session"))
	client := api.NewClient(cfg, store, logging.Component(logger, "api"))

	return &App{
		Config:   cfg,
		Store:    store,
		Sessions: manager,
		API:      client,
	}, nil
}
