package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/warga-one/wargaone-go/internal/config"
	"github.com/warga-one/wargaone-go/internal/infra"
)

// Logical keys of the persisted session, shared by every backend.
const (
	KeyUser     = "auth.user"
	KeyToken    = "auth.token"
	KeyLoggedIn = "auth.loggedIn"

	flagTrue = "true"
)

// Store persists the device session: a serialized profile, the bearer token,
// and a logged-in flag written as one batch by Save.
//
// Reads degrade rather than fail: a missing or undecodable profile is
// reported as (nil, nil), a missing token as ("", nil). Only genuine I/O
// errors surface, and callers are expected to treat those as absence too.
// Writes (Save, Clear, UpdateProfile) return their errors; callers must not
// assume partial success.
type Store interface {
	Save(ctx context.Context, profile UserProfile, token string) error
	Profile(ctx context.Context) (*UserProfile, error)
	Token(ctx context.Context) (string, error)
	FlagSet(ctx context.Context) (bool, error)
	Clear(ctx context.Context) error
	UpdateProfile(ctx context.Context, patch ProfilePatch) error
}

// OpenStore builds the store backend selected by configuration.
func OpenStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (Store, error) {
	logger.Debug("opening session store", "backend", cfg.SessionBackend)
	switch cfg.SessionBackend {
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendFile:
		return NewFileStore(cfg.SessionFile), nil
	case config.BackendRedis:
		client, err := infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.SessionNamespace), nil
	case config.BackendPostgres:
		pool, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store := NewPostgresStore(pool, cfg.SessionNamespace)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}

// decodeProfile turns a stored JSON document into a profile. Corrupt data is
// treated as absence so downstream logic never needs defensive parsing.
func decodeProfile(raw []byte) *UserProfile {
	if len(raw) == 0 {
		return nil
	}
	var profile UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil
	}
	return &profile
}
