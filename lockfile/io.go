package lockfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Filename is the default lockfile name.
const Filename = "condaplan.lock"

const lockfilePermissions = 0o644

// ReadFile reads and parses a lockfile from the given path.
func ReadFile(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates lockfile JSON data.
func Parse(data []byte) (*Lockfile, error) {
	var lf Lockfile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("failed to parse lockfile JSON: %w", err)
	}
	if lf.Packages == nil {
		lf.Packages = make(map[string]Entry)
	}
	if err := lf.Validate(); err != nil {
		return nil, err
	}
	return &lf, nil
}

// WriteFile writes the lockfile to path atomically: the data goes to a
// temporary file in the same directory which then replaces path, so a
// concurrent reader sees either the old or the new lockfile.
func (l *Lockfile) WriteFile(path string) error {
	data, err := l.Marshal()
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write lockfile: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write lockfile: %w", err)
	}
	if err := tmp.Chmod(lockfilePermissions); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write lockfile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write lockfile: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write lockfile: %w", err)
	}
	return nil
}

// WriteTo writes the lockfile to w.
func (l *Lockfile) WriteTo(w io.Writer) (int64, error) {
	data, err := l.Marshal()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Marshal serializes the lockfile as indented JSON. Output is deterministic:
// map keys are sorted and the nil maps and slices of a fresh lockfile are
// written as empty values.
func (l *Lockfile) Marshal() ([]byte, error) {
	out := *l
	if out.Packages == nil {
		out.Packages = map[string]Entry{}
	}
	if out.Channels == nil {
		out.Channels = []string{}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Exists reports whether path names a regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DefaultPath returns the lockfile path inside dir.
func DefaultPath(dir string) string {
	if dir == "" {
		return Filename
	}
	return filepath.Join(dir, Filename)
}
