package labels

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// ErrAlreadyExists is returned when the labels file is already present
var ErrAlreadyExists = errors.New("labels file already exists")

// EnsureAbsent fails with ErrAlreadyExists if anything exists at path
func EnsureAbsent(path string) error {
	_, err := os.Lstat(path)
	if err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, path)
	}
	// ENOTDIR means the video directory is a file, which discovery reports
	if !errors.Is(err, os.ErrNotExist) && !errors.Is(err, syscall.ENOTDIR) {
		return fmt.Errorf("cannot check labels file %s: %w", path, err)
	}
	return nil
}

// Encode renders the set as an indented JSON array
func Encode(set Set) ([]byte, error) {
	if set == nil {
		set = Set{}
	}
	data, err := json.MarshalIndent(set, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode labels: %w", err)
	}
	return append(data, '\n'), nil
}

// Save writes the whole set to path in one go. The data lands in a temporary
// file next to path first and is then linked into place, so the labels file
// either appears complete or not at all, and an existing file is never replaced.
func Save(path string, set Set) error {
	data, err := Encode(set)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary labels file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write labels: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to set labels file mode: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync labels: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close labels file: %w", err)
	}

	// link fails with EEXIST instead of silently replacing like rename would
	if err := os.Link(tmpName, path); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, path)
		}
		// some filesystems (FAT, SMB shares) have no hard links
		return writeExclusive(path, data)
	}

	return nil
}

// writeExclusive creates path with O_EXCL and writes data with a single call
func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, path)
		}
		return fmt.Errorf("failed to create labels file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("failed to write labels: %w", err)
	}
	return f.Close()
}

// Load reads a labels file written by Save
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels file: %w", err)
	}

	var set Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse labels file %s: %w", path, err)
	}
	return set, nil
}
