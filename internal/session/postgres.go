package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on a key-value table, for kiosk and
// server-side deployments that already run Postgres. One row per namespace
// and logical key.
type PostgresStore struct {
	db        *pgxpool.Pool
	namespace string
}

// NewPostgresStore builds a Postgres-backed session store.
func NewPostgresStore(db *pgxpool.Pool, namespace string) *PostgresStore {
	return &PostgresStore{db: db, namespace: namespace}
}

// EnsureSchema creates the backing table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS session_state (
        namespace TEXT NOT NULL,
        key TEXT NOT NULL,
        value TEXT NOT NULL,
        PRIMARY KEY (namespace, key)
    )`)
	if err != nil {
		return fmt.Errorf("ensure session schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, profile UserProfile, token string) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	defer tx.Rollback(ctx)

	for key, value := range map[string]string{
		KeyUser:     string(raw),
		KeyToken:    token,
		KeyLoggedIn: flagTrue,
	} {
		if _, err := tx.Exec(ctx, `INSERT INTO session_state (namespace, key, value) VALUES ($1, $2, $3)
            ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value`, s.namespace, key, value); err != nil {
			return fmt.Errorf("save session key %s: %w", key, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *PostgresStore) get(ctx context.Context, key string) (string, error) {
	row := s.db.QueryRow(ctx, `SELECT value FROM session_state WHERE namespace = $1 AND key = $2`, s.namespace, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("read session key %s: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Profile(ctx context.Context) (*UserProfile, error) {
	raw, err := s.get(ctx, KeyUser)
	if err != nil {
		return nil, err
	}
	return decodeProfile([]byte(raw)), nil
}

func (s *PostgresStore) Token(ctx context.Context) (string, error) {
	return s.get(ctx, KeyToken)
}

func (s *PostgresStore) FlagSet(ctx context.Context) (bool, error) {
	flag, err := s.get(ctx, KeyLoggedIn)
	if err != nil {
		return false, err
	}
	return flag == flagTrue, nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM session_state WHERE namespace = $1`, s.namespace); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, patch ProfilePatch) error {
	current, err := s.Profile(ctx)
	if err != nil || current == nil {
		return err
	}
	raw, err := json.Marshal(current.Apply(patch))
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `UPDATE session_state SET value = $1 WHERE namespace = $2 AND key = $3`,
		string(raw), s.namespace, KeyUser); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}
