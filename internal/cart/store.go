package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore persists one cart as JSON at Path.
type FileStore struct {
	Path string
}

// DefaultPath is $XDG_CONFIG_HOME/storefront/cart.json or its platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "storefront", "cart.json"), nil
}

// Load returns an empty cart when the file does not exist yet.
func (s FileStore) Load() (*Cart, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}

	var c Cart
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", s.Path, err)
	}
	return &c, nil
}

func (s FileStore) Save(c *Cart) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("create cart dir: %w", err)
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("replace cart: %w", err)
	}
	return nil
}
