package dbmanager

import (
	"fmt"
	"maps"
	"strings"
	"sync"
)

// Settings is an in-memory ConfigStore holding a flat map of dotted keys.
// Persistent stores load into and save from a Settings value.
type Settings struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewSettings creates a Settings seeded with values. Entries with invalid
// keys or empty values are dropped.
func NewSettings(values map[string]string) *Settings {
	s := &Settings{values: make(map[string]string, len(values))}
	for k, v := range values {
		if IsValidKey(k) && v != "" {
			s.values[k] = v
		}
	}
	return s
}

// Get returns the value stored at key, or "" when unset.
func (s *Settings) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.values[key]
}

// Section returns the direct children of prefix keyed by their last segment.
// Deeper descendants are not included.
func (s *Settings) Section(prefix string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	section := make(map[string]string)
	p := prefix + "."
	for k, v := range s.values {
		child, ok := strings.CutPrefix(k, p)
		if !ok || strings.Contains(child, ".") {
			continue
		}
		section[child] = v
	}
	return section
}

// Set stores value at key. Setting an empty value removes the key.
func (s *Settings) Set(key, value string) error {
	if !IsValidKey(key) {
		return fmt.Errorf("set %q: invalid key: %w", key, ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if value == "" {
		delete(s.values, key)
		return nil
	}

	s.values[key] = value
	return nil
}

// Unset removes key. Removing a missing key is not an error.
func (s *Settings) Unset(key string) error {
	return s.Set(key, "")
}

// All returns a copy of every stored key and value.
func (s *Settings) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.values)
}

// Replace swaps the stored values for values, dropping invalid entries.
func (s *Settings) Replace(values map[string]string) {
	fresh := NewSettings(values)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = fresh.values
}
