// Package images normalizes the stored image column. Listings persisted over
// time carry either a JSON array or a comma separated list of relative paths,
// and the readers should not care which.
package images

import (
	"encoding/json"
	"strings"
)

// Decode turns the stored column value into a slice of relative paths.
//
// An empty value decodes to nil. A value starting with '[' is treated as a
// JSON array; when that parse fails the raw value is kept as a single entry
// rather than dropped. Anything else splits on commas with trimming.
func Decode(stored string) []string {
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return nil
	}

	if strings.HasPrefix(stored, "[") {
		var parsed []string
		if err := json.Unmarshal([]byte(stored), &parsed); err != nil {
			return []string{stored}
		}
		return compact(parsed)
	}

	return compact(strings.Split(stored, ","))
}

// Encode produces the canonical storage form: comma-joined trimmed paths.
func Encode(paths []string) string {
	return strings.Join(compact(paths), ",")
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Resolver turns stored relative paths into public URLs.
type Resolver struct {
	BaseURL string
}

// NewResolver trims the trailing slash so joins stay predictable.
func NewResolver(baseURL string) Resolver {
	return Resolver{BaseURL: strings.TrimRight(baseURL, "/")}
}

// AbsoluteURL resolves one path. Already-absolute URLs pass through untouched
// so re-resolving a resolved value is safe.
func (r Resolver) AbsoluteURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.TrimLeft(path, "/")
	return r.BaseURL + "/" + path
}

// ResolveAll decodes the stored column and resolves every entry.
func (r Resolver) ResolveAll(stored string) []string {
	paths := Decode(stored)
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, r.AbsoluteURL(p))
	}
	return out
}
