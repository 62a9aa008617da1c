package index

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/albertocavalcante/go-condaplan/record"
	"github.com/albertocavalcante/go-condaplan/spec"
)

// repodata is the subset of a channel's repodata.json used here.
type repodata struct {
	Info struct {
		Channel string `json:"channel"`
	} `json:"info"`
	Packages map[string]packageRecord `json:"packages"`
}

// packageRecord is one package entry of repodata.json. The same layout is
// used by the records under a prefix's conda-meta directory.
type packageRecord struct {
	Name          string      `json:"name"`
	Version       string      `json:"version"`
	Build         string      `json:"build"`
	BuildNumber   int         `json:"build_number"`
	Channel       string      `json:"channel"`
	Depends       []string    `json:"depends"`
	Features      featureList `json:"features"`
	TrackFeatures featureList `json:"track_features"`
	IsMeta        bool        `json:"is_meta"`
}

// featureList accepts both the historical space-separated string form and
// a JSON list.
type featureList []string

func (f *featureList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = strings.Fields(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("features must be a string or a list of strings")
	}
	*f = list
	return nil
}

// ParseRepodata decodes a repodata.json document. Packages are assigned to
// channel unless the document names its own channel in info.channel and
// channel is empty.
func ParseRepodata(channel string, data []byte) ([]*record.Package, error) {
	var doc repodata
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse repodata: %w", err)
	}
	if channel == "" {
		channel = doc.Info.Channel
	}

	filenames := make([]string, 0, len(doc.Packages))
	for fn := range doc.Packages {
		filenames = append(filenames, fn)
	}
	sort.Strings(filenames)

	pkgs := make([]*record.Package, 0, len(filenames))
	for _, fn := range filenames {
		rec := doc.Packages[fn]
		rec.Channel = channel
		p, err := rec.toPackage()
		if err != nil {
			return nil, fmt.Errorf("repodata entry %s: %w", fn, err)
		}
		pkgs = append(pkgs, p)
	}
	return pkgs, nil
}

// LoadRepodataFile reads and decodes a repodata.json file.
func LoadRepodataFile(channel, path string) ([]*record.Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read repodata %s: %w", path, err)
	}
	return ParseRepodata(channel, data)
}

// DecodeRecord decodes a single package record, as stored in conda-meta.
// The record's own channel field wins over channel when present.
func DecodeRecord(channel string, data []byte) (*record.Package, error) {
	var rec packageRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse package record: %w", err)
	}
	if rec.Channel == "" {
		rec.Channel = channel
	}
	return rec.toPackage()
}

func (r packageRecord) toPackage() (*record.Package, error) {
	if r.Name == "" || r.Version == "" || r.Build == "" {
		return nil, fmt.Errorf("record needs name, version and build")
	}
	deps, err := spec.ParseAll(r.Depends)
	if err != nil {
		return nil, fmt.Errorf("%s-%s-%s: %w", r.Name, r.Version, r.Build, err)
	}
	return &record.Package{
		Name:          strings.ToLower(r.Name),
		Version:       r.Version,
		Build:         r.Build,
		BuildNumber:   r.BuildNumber,
		Channel:       r.Channel,
		Depends:       deps,
		Features:      r.Features,
		TrackFeatures: r.TrackFeatures,
		Meta:          r.IsMeta,
	}, nil
}
