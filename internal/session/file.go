package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore persists the session as a single JSON document on disk, the
// device-local equivalent of the mobile app's key-value storage. Writes go
// through a temp file and rename so a crash mid-write leaves either the old
// or the new document, never a torn one.
type FileStore struct {
	path string
}

// NewFileStore builds a store rooted at the given file path. The parent
// directory is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Save(_ context.Context, profile UserProfile, token string) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	doc := s.read()
	doc[KeyUser] = string(raw)
	doc[KeyToken] = token
	doc[KeyLoggedIn] = flagTrue
	return s.write(doc)
}

func (s *FileStore) Profile(_ context.Context) (*UserProfile, error) {
	return decodeProfile([]byte(s.read()[KeyUser])), nil
}

func (s *FileStore) Token(_ context.Context) (string, error) {
	return s.read()[KeyToken], nil
}

func (s *FileStore) FlagSet(_ context.Context) (bool, error) {
	return s.read()[KeyLoggedIn] == flagTrue, nil
}

func (s *FileStore) Clear(_ context.Context) error {
	doc := s.read()
	delete(doc, KeyUser)
	delete(doc, KeyToken)
	delete(doc, KeyLoggedIn)
	if len(doc) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove session file: %w", err)
		}
		return nil
	}
	return s.write(doc)
}

func (s *FileStore) UpdateProfile(_ context.Context, patch ProfilePatch) error {
	doc := s.read()
	current := decodeProfile([]byte(doc[KeyUser]))
	if current == nil {
		return nil
	}
	raw, err := json.Marshal(current.Apply(patch))
	if err != nil {
		return err
	}
	doc[KeyUser] = string(raw)
	return s.write(doc)
}

// read loads the backing document. Missing or corrupt files read as empty.
func (s *FileStore) read() map[string]string {
	doc := make(map[string]string)
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return doc
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return make(map[string]string)
	}
	return doc
}

func (s *FileStore) write(doc map[string]string) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
