// Package prefs persists the dashboard theme preference.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Key is the storage key for the theme preference.
const Key = "fd_theme"

type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"
)

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

func ParseTheme(s string) (Theme, bool) {
	switch Theme(s) {
	case Dark:
		return Dark, true
	case Light:
		return Light, true
	}
	return "", false
}

// Store is a key-value backend for the theme preference. Load reports
// false when nothing valid is saved.
type Store interface {
	Load(ctx context.Context) (Theme, bool, error)
	Save(ctx context.Context, theme Theme) error
}

// Resolve picks the saved theme, falling back to the system preference when
// nothing is saved or the store cannot be read.
func Resolve(ctx context.Context, store Store, systemDark func() bool) Theme {
	if store != nil {
		theme, ok, err := store.Load(ctx)
		if err != nil {
			log.Printf("prefs: load theme: %v", err)
		} else if ok {
			return theme
		}
	}
	if systemDark != nil && systemDark() {
		return Dark
	}
	return Light
}

// FileStore keeps preferences as a JSON object in a single file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath is the preferences file under the user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "finance-dashboard", "prefs.json")
}

func (f *FileStore) Load(ctx context.Context) (Theme, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return "", false, err
	}
	theme, ok := ParseTheme(values[Key])
	return theme, ok, nil
}

func (f *FileStore) Save(ctx context.Context, theme Theme) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		// an unreadable file is replaced rather than blocking the toggle
		values = map[string]string{}
	}
	values[Key] = string(theme)

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create prefs dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) read() (map[string]string, error) {
	values := map[string]string{}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read prefs: %w", err)
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse prefs: %w", err)
	}
	return values, nil
}
