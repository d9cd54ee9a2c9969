package report

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/debtools/apt-show-versions/internal/aptcache"
)

// memoSize bounds the attribution memo. A machine with every Debian
// suite configured stays two orders of magnitude under this.
const memoSize = 1024

// Attributor names the distribution an index file belongs to, the way
// the user wrote it in the sources. Answers are memoized per run; the
// snapshot is immutable, so entries never go stale.
type Attributor struct {
	sources []*aptcache.SourceEntry
	memo    *lru.Cache[aptcache.FileID, string]
}

func NewAttributor(sources []*aptcache.SourceEntry) *Attributor {
	memo, err := lru.New[aptcache.FileID, string](memoSize)
	if err != nil {
		panic(err)
	}
	return &Attributor{sources: sources, memo: memo}
}

// DistributionName returns the distribution string of the source entry
// that produced this file, truncated at the first slash, but only when
// it names the file's own archive or codename. A moving alias like
// "stable/updates" is honoured; a misconfigured entry can never
// mislabel a file. Without a matching entry the file's archive, then
// codename, stands in.
func (a *Attributor) DistributionName(f *aptcache.OriginFile) string {
	if name, ok := a.memo.Get(f.ID); ok {
		return name
	}
	name := a.attribute(f)
	a.memo.Add(f.ID, name)
	return name
}

func (a *Attributor) attribute(f *aptcache.OriginFile) string {
	for _, e := range a.sources {
		for _, ef := range e.Files {
			if ef != f {
				continue
			}
			dist, _, _ := strings.Cut(e.Distribution, "/")
			if f.Archive != "" && f.Archive == dist {
				return dist
			}
			if f.Codename != "" && f.Codename == dist {
				return dist
			}
		}
	}
	if f.Archive != "" {
		return f.Archive
	}
	return f.Codename
}
