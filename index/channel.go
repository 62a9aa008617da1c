package index

import (
	"slices"
	"strings"

	"github.com/albertocavalcante/go-condaplan/record"
	"github.com/albertocavalcante/go-condaplan/spec"
)

// ChannelRank returns the priority of channel, 0 being the highest.
// Unknown channels rank after every configured channel.
func (ix *Index) ChannelRank(channel string) int {
	if i := slices.Index(ix.channels, channel); i >= 0 {
		return i
	}
	return len(ix.channels)
}

// ChannelSelect keeps, for every package name, only the candidates from the
// highest-priority channel that offers that name at all.
func ChannelSelect(pkgs record.Set, channels []string) record.Set {
	rank := func(ch string) int {
		if i := slices.Index(channels, ch); i >= 0 {
			return i
		}
		return len(channels)
	}

	best := make(map[string]int)
	for _, p := range pkgs {
		r := rank(p.Channel)
		if cur, ok := best[p.Name]; !ok || r < cur {
			best[p.Name] = r
		}
	}
	return pkgs.Filter(func(p *record.Package) bool {
		return rank(p.Channel) == best[p.Name]
	})
}

func splitChannel(s string) (channel, rest string) {
	if ch, r, ok := strings.Cut(s, "::"); ok {
		return ch, r
	}
	return "", s
}

func trimArchive(s string) string {
	return strings.TrimSuffix(s, spec.ArchiveSuffix)
}
