package monitoring

// Snapshot maps a file path to its last observed modification time.
type Snapshot map[string]int64

func (s Snapshot) Lookup(path string) (int64, bool) {
	modTime, ok := s[path]
	return modTime, ok
}

func (s Snapshot) Clone() Snapshot {
	clone := make(Snapshot, len(s))
	for path, modTime := range s {
		clone[path] = modTime
	}
	return clone
}
