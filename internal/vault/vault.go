// Package vault holds saved login credentials keyed by domain.
package vault

import (
	"fmt"
	"sort"
)

// Credential is one stored login. The domain is the hostname of the page URL
// it was saved on, without the port, matched exactly (no scheme or subdomain
// normalization).
type Credential struct {
	Domain   string `json:"-"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ValidationError reports a rejected mutation. The store is left unchanged.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("credential %s must not be empty", e.Field)
}

// PersistFunc is called after every mutation. Its error is surfaced to the
// caller untouched; the in-memory state keeps the mutation either way.
type PersistFunc func() error

// Store is a domain-keyed credential store. One record per domain; a save
// for an existing domain overwrites it.
type Store struct {
	records map[string]Credential
	persist PersistFunc
}

func New(initial map[string]Credential, persist PersistFunc) *Store {
	records := make(map[string]Credential, len(initial))
	for domain, c := range initial {
		c.Domain = domain
		records[domain] = c
	}
	if persist == nil {
		persist = func() error { return nil }
	}
	return &Store{records: records, persist: persist}
}

// Get returns the credential stored for domain.
func (s *Store) Get(domain string) (Credential, bool) {
	c, ok := s.records[domain]
	return c, ok
}

// Put inserts or overwrites the credential for domain. Empty username or
// password is rejected with a ValidationError and leaves the store unchanged.
func (s *Store) Put(domain, username, password string) error {
	if username == "" {
		return &ValidationError{Field: "username"}
	}
	if password == "" {
		return &ValidationError{Field: "password"}
	}

	// The mapping is fully updated before persistence runs, so a persist
	// failure never leaves a half-applied mutation behind.
	s.records[domain] = Credential{Domain: domain, Username: username, Password: password}
	if err := s.persist(); err != nil {
		return err
	}
	return nil
}

// Delete removes the credential for domain. Removing an absent domain is a
// no-op and does not trigger persistence.
func (s *Store) Delete(domain string) error {
	if _, ok := s.records[domain]; !ok {
		return nil
	}
	delete(s.records, domain)
	return s.persist()
}

// List returns all credentials sorted by domain, ascending.
func (s *Store) List() []Credential {
	out := make([]Credential, 0, len(s.records))
	for _, c := range s.records {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out
}

// Snapshot returns the records in the persisted document shape.
func (s *Store) Snapshot() map[string]Credential {
	out := make(map[string]Credential, len(s.records))
	for domain, c := range s.records {
		out[domain] = c
	}
	return out
}
