package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultProfileName = ".coursectl.toml"
	defaultBaseURL     = "http://localhost:4000"
)

// profile holds what the purchaser would otherwise carry in a browser
// session: the API base URL, their bearer token and the gateway key.
// BaseURL is the server root; the client adds the /api/v1 prefix.
type profile struct {
	BaseURL    string `toml:"base_url"`
	Token      string `toml:"token"`
	GatewayKey string `toml:"gateway_key"`
	FirstName  string `toml:"first_name"`
	Email      string `toml:"email"`
	// SandboxSecret makes the terminal widget sign confirmations itself
	// instead of prompting. Only for test gateway accounts.
	SandboxSecret string `toml:"sandbox_secret"`
}

func defaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultProfileName
	}
	return filepath.Join(home, defaultProfileName)
}

// loadProfile reads path. A missing file yields the defaults.
func loadProfile(path string) (profile, error) {
	p := profile{BaseURL: defaultBaseURL}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("read profile %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return p, nil
}
