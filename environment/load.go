package environment

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/albertocavalcante/go-condaplan/index"
	"github.com/albertocavalcante/go-condaplan/record"
	"github.com/albertocavalcante/go-condaplan/spec"
)

// MetaDir is the directory inside a prefix holding linked package records.
const MetaDir = "conda-meta"

// Load reads a prefix's conda-meta directory: one JSON record per linked
// package, plus an optional "pinned" file with one spec per line. A prefix
// without conda-meta is an empty environment.
func Load(prefix string, opts ...Option) (*Environment, error) {
	metaDir := filepath.Join(prefix, MetaDir)
	entries, err := os.ReadDir(metaDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(prefix, nil, opts...), nil
		}
		return nil, fmt.Errorf("read %s: %w", metaDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	linked := make([]*record.Package, 0, len(names))
	for _, name := range names {
		path := filepath.Join(metaDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		p, err := index.DecodeRecord("", data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		linked = append(linked, p)
	}

	pins, err := readPinned(filepath.Join(metaDir, "pinned"))
	if err != nil {
		return nil, err
	}
	if len(pins) > 0 {
		opts = append([]Option{WithPinned(pins...)}, opts...)
	}
	return New(prefix, linked, opts...), nil
}

func readPinned(path string) ([]spec.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var pins []spec.Spec
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = strings.TrimSpace(text[:i])
		}
		if text == "" {
			continue
		}
		s, err := spec.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		pins = append(pins, s)
	}
	return pins, scanner.Err()
}
