package index

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/albertocavalcante/go-condaplan/record"
	"github.com/albertocavalcante/go-condaplan/remote"
)

// Fetcher retrieves remote repodata documents. *remote.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Source names one index file and the channel its packages belong to.
// Channel may be empty for manifests, which declare their own channels.
type Source struct {
	Channel string
	Path    string
}

// ParseSource parses "channel=path" or a bare path.
func ParseSource(s string) Source {
	if ch, path, ok := strings.Cut(s, "="); ok && !strings.ContainsAny(ch, `/\`) {
		return Source{Channel: ch, Path: path}
	}
	return Source{Path: s}
}

// Load builds an index from repodata.json files, repodata URLs and Starlark
// manifests. Files ending in .json are repodata; anything else is a
// manifest. A repodata file without a channel is named after its parent
// directory, and a URL after its channel path (see remote.ChannelName).
// The priority order is channels, followed by channels first seen in the
// sources, in source order.
func Load(channels []string, sources ...Source) (*Index, error) {
	return LoadContext(context.Background(), nil, channels, sources...)
}

// LoadContext is Load with a context for remote sources. A nil fetcher
// uses a default remote.Client when a URL source is present.
func LoadContext(ctx context.Context, fetcher Fetcher, channels []string, sources ...Source) (*Index, error) {
	order := slices.Clone(channels)
	addChannel := func(ch string) {
		if ch != "" && !slices.Contains(order, ch) {
			order = append(order, ch)
		}
	}

	var pkgs []*record.Package
	for _, src := range sources {
		if remote.IsURL(src.Path) {
			if fetcher == nil {
				fetcher = remote.NewClient()
			}
			ch := src.Channel
			if ch == "" {
				ch = remote.ChannelName(src.Path)
			}
			data, err := fetcher.Fetch(ctx, src.Path)
			if err != nil {
				return nil, err
			}
			loaded, err := ParseRepodata(ch, data)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", src.Path, err)
			}
			for _, p := range loaded {
				addChannel(p.Channel)
			}
			pkgs = append(pkgs, loaded...)
			continue
		}
		if strings.EqualFold(filepath.Ext(src.Path), ".json") {
			ch := src.Channel
			if ch == "" {
				ch = filepath.Base(filepath.Dir(src.Path))
			}
			loaded, err := LoadRepodataFile(ch, src.Path)
			if err != nil {
				return nil, err
			}
			addChannel(ch)
			pkgs = append(pkgs, loaded...)
			continue
		}

		m, err := ParseManifestFile(src.Path)
		if err != nil {
			return nil, err
		}
		for _, ch := range m.Channels {
			addChannel(ch)
		}
		for _, p := range m.Packages {
			if src.Channel != "" && p.Channel == "" {
				p.Channel = src.Channel
			}
			addChannel(p.Channel)
		}
		pkgs = append(pkgs, m.Packages...)
	}
	return New(order, pkgs...), nil
}
