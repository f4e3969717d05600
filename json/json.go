// Package json persists batch reports and conversations as versioned JSON
// documents.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const version = 1

// Document kinds stored in the envelope header.
const (
	kindReport       = "batch_report"
	kindConversation = "conversation"
)

// header is the part of every v1 envelope read before the body.
type header struct {
	Version int    `json:"version"`
	Kind    string `json:"kind"`
}

func checkHeader(data []byte, kind string) error {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return fmt.Errorf("unmarshal envelope: %w", err)
	}
	if h.Version != version {
		return fmt.Errorf("unsupported envelope version: %d", h.Version)
	}
	if h.Kind != kind {
		return fmt.Errorf("envelope kind %q, want %q", h.Kind, kind)
	}
	return nil
}

// writeFile writes data to path atomically, creating parent directories as
// needed.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}
