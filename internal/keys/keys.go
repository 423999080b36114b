package keys

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Store handles access token storage and retrieval, one token per server.
type Store struct {
	configDir string
}

// TokenEntry represents a stored access token
type TokenEntry struct {
	Token string `json:"token"`
}

// Tokens represents the keys.json structure, keyed by server URL
type Tokens map[string]TokenEntry

// NewStore creates a new token store
func NewStore() (*Store, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, err
	}
	return &Store{configDir: configDir}, nil
}

// getConfigDir returns the platform-specific config directory
func getConfigDir() (string, error) {
	// Allow override for testing
	if testDir := os.Getenv("IMGCHAT_CONFIG_DIR"); testDir != "" {
		return testDir, nil
	}

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "imgchat"), nil
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "imgchat"), nil
	default: // linux and others
		// Follow XDG Base Directory Specification
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configHome = filepath.Join(home, ".config")
		}
		return filepath.Join(configHome, "imgchat"), nil
	}
}

// Path returns the path to the keys.json file
func (s *Store) Path() string {
	return filepath.Join(s.configDir, "keys.json")
}

// load reads the tokens from disk
func (s *Store) load() (Tokens, error) {
	path := s.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(Tokens), nil
		}
		return nil, err
	}

	var tokens Tokens
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("failed to parse keys.json: %w", err)
	}
	return tokens, nil
}

// save writes the tokens to disk
func (s *Store) save(tokens Tokens) error {
	if err := os.MkdirAll(s.configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return err
	}

	path := s.Path()
	// Write with restricted permissions (owner read/write only)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write keys.json: %w", err)
	}
	return nil
}

// Set stores a token for the given server
func (s *Store) Set(server, token string) error {
	tokens, err := s.load()
	if err != nil {
		return err
	}

	tokens[server] = TokenEntry{Token: token}
	return s.save(tokens)
}

// Get retrieves a token for the given server
func (s *Store) Get(server string) (string, error) {
	tokens, err := s.load()
	if err != nil {
		return "", err
	}

	entry, ok := tokens[server]
	if !ok {
		return "", nil // Token not found, not an error
	}
	return entry.Token, nil
}

// Delete removes a token for the given server
func (s *Store) Delete(server string) error {
	tokens, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := tokens[server]; !ok {
		return fmt.Errorf("no token found for %s", server)
	}

	delete(tokens, server)
	return s.save(tokens)
}

// List returns all servers with a stored token
func (s *Store) List() ([]string, error) {
	tokens, err := s.load()
	if err != nil {
		return nil, err
	}

	servers := make([]string, 0, len(tokens))
	for server := range tokens {
		servers = append(servers, server)
	}
	return servers, nil
}

// MaskToken returns a masked version of the token for display
func MaskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}

// GetToken retrieves the access token using the priority order:
// 1. Explicit token passed as argument (if non-empty)
// 2. Stored token in keys.json for this server
// 3. Environment variable
//
// An empty result is not an error: the backend may run without auth.
func GetToken(explicitToken, server, envVar string) (string, string) {
	if explicitToken != "" {
		return explicitToken, "command-line flag"
	}

	store, err := NewStore()
	if err == nil {
		stored, err := store.Get(server)
		if err == nil && stored != "" {
			return stored, "stored token (keys.json)"
		}
	}

	if envToken := os.Getenv(envVar); envToken != "" {
		return envToken, fmt.Sprintf("environment variable (%s)", envVar)
	}

	return "", ""
}
