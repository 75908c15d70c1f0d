// Package credentials holds the username -> API key registry used to authenticate writes.
//
// The registry is <data dir>/users.json. It is mutated only from outside the process
// (operators editing or replacing the file) or by the one-time bootstrap, so the store
// reloads it whenever a presented key matches nobody. Every failed lookup therefore
// costs a disk read; put a rate limiter in front of the store when it faces the internet.
package credentials

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	"github.com/dollpublish/dollpublish/pkg/logger"
	"github.com/dollpublish/dollpublish/pkg/metrics"
)

// RegistryFile is the registry file name inside the data directory.
const RegistryFile = "users.json"

// DefaultUser is the identity created when no registry exists yet.
const DefaultUser = "default"

// User is one registry entry.
type User struct {
	APIKey string `json:"api_key"`
}

type registry struct {
	Users map[string]User `json:"users"`
}

// Store is the in-memory mirror of the registry. A single mutex covers each
// verification end to end, including any reload, so checks are serialized.
type Store struct {
	mu    sync.Mutex
	path  string
	users map[string]User
}

// Open loads the registry from dataDir, creating dataDir and a bootstrap registry when
// none exists. The bootstrap registry holds one user, "default", with a random key.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &Store{path: filepath.Join(dataDir, RegistryFile)}

	users, err := readRegistry(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		users, err = bootstrap(s.path)
		if err != nil {
			return nil, err
		}
		logger.Infof("created credential registry %s with user %q", s.path, DefaultUser)
	} else if err != nil {
		return nil, err
	}
	s.users = users
	return s, nil
}

// Path returns the registry file location.
func (s *Store) Path() string { return s.path }

// Verify returns the user whose key equals one of the presented values. Empty values are
// ignored. On a miss the registry is reloaded once and checked again, so keys rotated on
// disk take effect without a restart. Comparison is plain string equality.
func (s *Store) Verify(presented ...string) (string, bool) {
	candidates := make([]string, 0, len(presented))
	for _, p := range presented {
		if p != "" {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if name, ok := match(s.users, candidates); ok {
		metrics.CredentialChecks.WithLabelValues("memory").Inc()
		return name, true
	}
	if err := s.reloadLocked(); err != nil {
		logger.Warnf("credential registry reload failed: %v", err)
		metrics.CredentialChecks.WithLabelValues("miss").Inc()
		return "", false
	}
	if name, ok := match(s.users, candidates); ok {
		metrics.CredentialChecks.WithLabelValues("reloaded").Inc()
		return name, true
	}
	metrics.CredentialChecks.WithLabelValues("miss").Inc()
	return "", false
}

// Reload replaces the in-memory users with the registry file contents. On error the
// previous users are kept.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked()
}

func (s *Store) reloadLocked() error {
	users, err := readRegistry(s.path)
	if err != nil {
		metrics.RegistryReloads.WithLabelValues("error").Inc()
		return err
	}
	s.users = users
	metrics.RegistryReloads.WithLabelValues("ok").Inc()
	return nil
}

// Usernames returns the known usernames, sorted.
func (s *Store) Usernames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedNames(s.users)
}

// Lookup returns the user entry for name.
func (s *Store) Lookup(name string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[name]
	return u, ok
}

func match(users map[string]User, candidates []string) (string, bool) {
	for _, name := range sortedNames(users) {
		key := users[name].APIKey
		if key == "" {
			continue
		}
		for _, c := range candidates {
			if key == c {
				return name, true
			}
		}
	}
	return "", false
}

func sortedNames(users map[string]User) []string {
	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func readRegistry(path string) (map[string]User, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg registry
	if err := json.Unmarshal(b, &reg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if reg.Users == nil {
		reg.Users = map[string]User{}
	}
	return reg.Users, nil
}

func bootstrap(path string) (map[string]User, error) {
	users := map[string]User{DefaultUser: {APIKey: NewKey()}}
	if err := writeRegistry(path, users); err != nil {
		return nil, err
	}
	return users, nil
}

// writeRegistry replaces the registry file in one rename so readers never see a partial file.
func writeRegistry(path string, users map[string]User) error {
	b, err := json.MarshalIndent(registry{Users: users}, "", "  ")
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// NewKey returns a fresh random API key.
func NewKey() string { return uuid.NewString() }

// Put sets the key for name, adding the user if needed, and rewrites the registry. The
// file is re-read first so edits made by others since the last load are kept.
func (s *Store) Put(name, key string) error {
	if name == "" || key == "" {
		return errors.New("username and key must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reloadLocked(); err != nil {
		return err
	}
	users := make(map[string]User, len(s.users)+1)
	for n, u := range s.users {
		users[n] = u
	}
	users[name] = User{APIKey: key}
	if err := writeRegistry(s.path, users); err != nil {
		return err
	}
	s.users = users
	return nil
}

// Remove deletes name from the registry. Removing an unknown user is an error.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reloadLocked(); err != nil {
		return err
	}
	if _, ok := s.users[name]; !ok {
		return fmt.Errorf("no such user %q", name)
	}
	users := make(map[string]User, len(s.users))
	for n, u := range s.users {
		if n != name {
			users[n] = u
		}
	}
	if err := writeRegistry(s.path, users); err != nil {
		return err
	}
	s.users = users
	return nil
}
