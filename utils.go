package dbmanager

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	validNameRegex      = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
	validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
)

// IsValidName validates a protocol or connection name.
// It checks that the name:
//   - is not empty and at most 63 characters long
//   - starts with a lowercase letter or digit
//   - contains only lowercase letters, digits, "_" and "-"
//
// Dots are rejected because names become segments of dotted config keys, and
// upper case is rejected because viper folds keys to lower case on load.
func IsValidName(name string) bool {
	return len(name) <= 63 && validNameRegex.MatchString(name)
}

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// IsValidKey checks that a dotted config key has no empty segments and is valid UTF-8.
func IsValidKey(key string) bool {
	if key == "" || !utf8.ValidString(key) {
		return false
	}

	for _, segment := range strings.Split(key, ".") {
		if strings.TrimSpace(segment) == "" {
			return false
		}
	}

	return true
}

// joinKey joins config path segments with dots.
func joinKey(segments ...string) string {
	return strings.Join(segments, ".")
}
