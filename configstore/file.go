package configstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sagarc03/dbmanager"
)

// FileStore is a dbmanager.ConfigStore backed by a YAML file. Nested YAML
// mappings become dotted keys:
//
//	database:
//	  driver:
//	    postgres: pgx
//	  connection:
//	    default: main
//	    main: postgres://app@db:5432/main
type FileStore struct {
	*dbmanager.Settings

	path string
}

// OpenFile reads the YAML file at path. A missing file yields an empty store
// that is created on the first Save.
func OpenFile(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("open file store: empty path: %w", dbmanager.ErrInvalidInput)
	}

	s := &FileStore{
		Settings: dbmanager.NewSettings(nil),
		path:     path,
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Path returns the file backing the store.
func (s *FileStore) Path() string {
	return s.path
}

// Load replaces the in-memory values with the contents of the file.
func (s *FileStore) Load() error {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		s.Replace(nil)
		return nil
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}

	values := make(map[string]string)
	for _, key := range v.AllKeys() {
		values[key] = v.GetString(key)
	}

	s.Replace(values)
	return nil
}

// Save writes the values to the file. The file is replaced atomically and is
// only readable by its owner, since DSNs may carry passwords.
func (s *FileStore) Save(_ context.Context) error {
	tree, err := unflatten(s.All())
	if err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}

	data, err := yaml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("save %s: marshal: %w", s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("save %s: create directory: %w", s.path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("save %s: create temp file: %w", s.path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save %s: write: %w", s.path, err)
	}

	if err = tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("save %s: chmod: %w", s.path, err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("save %s: close: %w", s.path, err)
	}

	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("save %s: rename: %w", s.path, err)
	}

	return nil
}

// Close is a no-op. Unsaved changes are discarded.
func (s *FileStore) Close() error {
	return nil
}

// unflatten turns dotted keys into nested maps. A key that is both a value
// and the parent of other keys cannot be represented in YAML.
func unflatten(values map[string]string) (map[string]any, error) {
	root := make(map[string]any)

	for key, value := range values {
		segments := strings.Split(key, ".")
		node := root

		for _, segment := range segments[:len(segments)-1] {
			child, ok := node[segment]
			if !ok {
				next := make(map[string]any)
				node[segment] = next
				node = next
				continue
			}

			next, ok := child.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("key %s conflicts with a value at %s: %w", key, segment, dbmanager.ErrInvalidInput)
			}
			node = next
		}

		leaf := segments[len(segments)-1]
		if _, ok := node[leaf].(map[string]any); ok {
			return nil, fmt.Errorf("key %s is also a section: %w", key, dbmanager.ErrInvalidInput)
		}
		node[leaf] = value
	}

	return root, nil
}
