package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func storeBackends(t *testing.T) map[string]Store {
	t.Helper()
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "session.json")),
	}
}

func TestStoreSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Save(ctx, testProfile(), "tok-1"); err != nil {
				t.Fatalf("save: %v", err)
			}

			profile, err := store.Profile(ctx)
			if err != nil {
				t.Fatalf("profile: %v", err)
			}
			if profile == nil || profile.ID != "u-1" {
				t.Fatalf("unexpected profile: %+v", profile)
			}

			token, err := store.Token(ctx)
			if err != nil || token != "tok-1" {
				t.Fatalf("token = %q, err = %v", token, err)
			}

			flag, err := store.FlagSet(ctx)
			if err != nil || !flag {
				t.Fatalf("flag = %v, err = %v", flag, err)
			}
		})
	}
}

func TestStoreEmptyReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			profile, err := store.Profile(ctx)
			if err != nil || profile != nil {
				t.Fatalf("profile = %+v, err = %v", profile, err)
			}
			token, err := store.Token(ctx)
			if err != nil || token != "" {
				t.Fatalf("token = %q, err = %v", token, err)
			}
			flag, err := store.FlagSet(ctx)
			if err != nil || flag {
				t.Fatalf("flag = %v, err = %v", flag, err)
			}
		})
	}
}

func TestStoreClearIdempotent(t *testing.T) {
	ctx := context.Background()
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Clear(ctx); err != nil {
				t.Fatalf("clear on empty store: %v", err)
			}
			if err := store.Save(ctx, testProfile(), "tok-1"); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := store.Clear(ctx); err != nil {
				t.Fatalf("clear: %v", err)
			}
			if err := store.Clear(ctx); err != nil {
				t.Fatalf("second clear: %v", err)
			}
			flag, _ := store.FlagSet(ctx)
			if flag {
				t.Fatalf("flag survives clear")
			}
		})
	}
}

func TestStoreUpdateWithoutProfileIsNoop(t *testing.T) {
	ctx := context.Background()
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ghost := "ghost"
			if err := store.UpdateProfile(ctx, ProfilePatch{Name: &ghost}); err != nil {
				t.Fatalf("update without profile: %v", err)
			}
			profile, _ := store.Profile(ctx)
			if profile != nil {
				t.Fatalf("update created a profile: %+v", profile)
			}
		})
	}
}

func TestStoreUpdateMergesPatch(t *testing.T) {
	ctx := context.Background()
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Save(ctx, testProfile(), "tok-1"); err != nil {
				t.Fatalf("save: %v", err)
			}
			newName := "Adi Pratama"
			if err := store.UpdateProfile(ctx, ProfilePatch{Name: &newName}); err != nil {
				t.Fatalf("update: %v", err)
			}
			profile, _ := store.Profile(ctx)
			if profile == nil || profile.Name != newName {
				t.Fatalf("patch not merged: %+v", profile)
			}
			if profile.Email != "adi@example.com" {
				t.Fatalf("untouched field changed: %+v", profile)
			}
		})
	}
}

func TestFileStoreCorruptFileReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{garbage"), 0o600); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	store := NewFileStore(path)
	profile, err := store.Profile(ctx)
	if err != nil || profile != nil {
		t.Fatalf("corrupt file must read as absent: %+v, %v", profile, err)
	}
	token, err := store.Token(ctx)
	if err != nil || token != "" {
		t.Fatalf("corrupt file must read as absent: %q, %v", token, err)
	}
}

func TestFileStoreCorruptProfileValueReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"auth.user":"{bad json","auth.token":"tok-1"}`), 0o600); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	store := NewFileStore(path)
	profile, err := store.Profile(ctx)
	if err != nil || profile != nil {
		t.Fatalf("corrupt profile must read as absent: %+v, %v", profile, err)
	}
	token, err := store.Token(ctx)
	if err != nil || token != "tok-1" {
		t.Fatalf("token should still read: %q, %v", token, err)
	}
}

func TestFileStoreClearRemovesFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	if err := store.Save(ctx, testProfile(), "tok-1"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected session file removed, stat err = %v", err)
	}
}
