package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/Veraticus/upi-triage/internal/common"
)

// FileCredentials is a bearer token persisted in a file. A token set in
// configuration takes precedence until it is cleared.
type FileCredentials struct {
	path       string
	configured string
	mu         sync.Mutex
}

// NewFileCredentials returns credentials backed by path.
func NewFileCredentials(path, configured string) *FileCredentials {
	return &FileCredentials{path: path, configured: strings.TrimSpace(configured)}
}

// Path returns the token file location.
func (c *FileCredentials) Path() string { return c.path }

// Token returns the active token, or an empty string.
func (c *FileCredentials) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.configured != "" {
		return c.configured
	}
	if c.path == "" {
		return ""
	}
	data, err := os.ReadFile(c.path) // #nosec G304
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Save stores token in the file.
func (c *FileCredentials) Save(token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: empty token", common.ErrInvalidConfig)
	}
	if c.path == "" {
		return fmt.Errorf("%w: no token file configured", common.ErrMissingConfig)
	}
	if err := EnsureParent(c.path); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(c.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Clear forgets the token and removes the file.
func (c *FileCredentials) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.configured = ""
	if c.path == "" {
		return nil
	}
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
