package monitoring

import (
	"path/filepath"

	"golang.org/x/text/unicode/norm"
)

// ExclusionSet holds literal paths the monitor never treats as trackable.
// It is immutable once built.
type ExclusionSet struct {
	paths map[string]struct{}
}

func NewExclusionSet(paths ...string) ExclusionSet {
	set := ExclusionSet{paths: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		if p == "" {
			continue
		}
		set.paths[normalizePath(p)] = struct{}{}
	}
	return set
}

func (s ExclusionSet) Contains(path string) bool {
	_, ok := s.paths[path]
	return ok
}

// Excludes reports whether entry must be skipped by the update and creation
// passes.
func (s ExclusionSet) Excludes(entry DirectoryEntry) bool {
	return entry.IsDir || s.Contains(entry.Path)
}

func (s ExclusionSet) Len() int {
	return len(s.paths)
}

func normalizePath(path string) string {
	return norm.NFC.String(filepath.Clean(path))
}
