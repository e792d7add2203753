// Package catalog registers Parquet files as queryable DuckDB views.
package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// invalidIdentChar matches every character that may not appear in a
// table identifier.
var invalidIdentChar = regexp.MustCompile(`[^A-Za-z0-9_]`)

// InvalidIdentifierError reports a raw name that sanitized down to
// nothing.
type InvalidIdentifierError struct {
	Raw string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("unable to create table name from: %q", e.Raw)
}

// Sanitize derives a safe table identifier from an arbitrary
// file-derived name. Characters outside [A-Za-z0-9_] become
// underscores, the result is lowercased, and a leading digit gets a
// "t_" prefix. An empty result is an InvalidIdentifierError.
func Sanitize(raw string) (string, error) {
	sanitized := strings.ToLower(invalidIdentChar.ReplaceAllString(raw, "_"))
	if sanitized == "" {
		return "", &InvalidIdentifierError{Raw: raw}
	}
	if sanitized[0] >= '0' && sanitized[0] <= '9' {
		sanitized = "t_" + sanitized
	}
	return sanitized, nil
}

// nameRegistry tracks table names claimed during one registration pass.
// Sanitize lowercases every candidate, so names that differ only by
// case collide here and take numeric suffixes.
type nameRegistry struct {
	taken map[string]struct{}
}

func newNameRegistry() *nameRegistry {
	return &nameRegistry{taken: make(map[string]struct{})}
}

// claim reserves base, or the first unused of base_2, base_3, ...
func (r *nameRegistry) claim(base string) string {
	name := base
	for suffix := 2; ; suffix++ {
		if _, ok := r.taken[name]; !ok {
			break
		}
		name = fmt.Sprintf("%s_%d", base, suffix)
	}
	r.taken[name] = struct{}{}
	return name
}
