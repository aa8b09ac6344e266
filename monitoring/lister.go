package monitoring

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// OSLister lists a single directory level on the local filesystem. Symlinks
// are followed, so a link to a directory is reported as a directory.
type OSLister struct{}

var _ DirectoryLister = OSLister{}

func NewOSLister() OSLister {
	return OSLister{}
}

func (OSLister) List(ctx context.Context, directory string) ([]DirectoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(directory)
	if err != nil {
		return nil, &ListingError{Path: directory, Err: classify(err)}
	}
	if !info.IsDir() {
		return nil, &ListingError{Path: directory, Err: fmt.Errorf("%w: not a directory", ErrConfiguration)}
	}

	dirEntries, err := os.ReadDir(directory)
	if err != nil {
		return nil, &ListingError{Path: directory, Err: classify(err)}
	}

	entries := make([]DirectoryEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		path := normalizePath(filepath.Join(directory, de.Name()))

		fi, err := os.Stat(path)
		if err != nil {
			// removed between ReadDir and Stat, or a dangling symlink
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, &ListingError{Path: path, Err: err}
		}

		entries = append(entries, DirectoryEntry{
			Path:    path,
			IsDir:   fi.IsDir(),
			ModTime: fi.ModTime().UnixNano(),
		})
	}
	return entries, nil
}

func classify(err error) error {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return err
}
