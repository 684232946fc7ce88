// Package profile persists the browser profile document: favorites,
// credentials and history share one flat JSON file.
package profile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MTSmash-TMP-Networks/TMP-Networks-Browser-Mini/internal/vault"
)

// Document is the on-disk shape. It is always written as a whole; there are
// no partial updates.
type Document struct {
	Favorites   []Favorite                  `json:"favorites"`
	Credentials map[string]vault.Credential `json:"credentials"`
	History     []HistoryEntry              `json:"history"`
}

// PersistenceError reports a failed document write.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist profile %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Manager is the persistence façade. Each repository owns its slice of the
// document in memory; every mutation saves the full document.
type Manager struct {
	path        string
	Favorites   *Favorites
	History     *History
	Credentials *vault.Store
}

// Open loads the document at path. A missing or unreadable file yields an
// empty profile rather than an error.
func Open(path string) *Manager {
	doc := load(path)
	m := &Manager{path: path}
	m.Favorites = newFavorites(doc.Favorites, m.save)
	m.History = newHistory(doc.History, m.save)
	m.Credentials = vault.New(doc.Credentials, m.save)
	return m
}

func load(path string) Document {
	empty := Document{Credentials: map[string]vault.Credential{}}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read profile, starting empty", "path", path, "error", err)
		}
		return empty
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		slog.Warn("profile file is corrupt, starting empty", "path", path, "error", err)
		return empty
	}
	if doc.Credentials == nil {
		doc.Credentials = map[string]vault.Credential{}
	}
	return doc
}

func (m *Manager) save() error {
	doc := Document{
		Favorites:   m.Favorites.All(),
		Credentials: m.Credentials.Snapshot(),
		History:     m.History.All(),
	}

	raw, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return &PersistenceError{Path: m.path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return &PersistenceError{Path: m.path, Err: err}
	}

	// write-then-rename keeps the previous document intact if the write dies
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return &PersistenceError{Path: m.path, Err: err}
	}
	if err := os.Rename(tmp, m.path); err != nil {
		os.Remove(tmp)
		return &PersistenceError{Path: m.path, Err: err}
	}
	return nil
}
