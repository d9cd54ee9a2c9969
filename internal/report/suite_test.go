package report

import (
	"testing"

	"github.com/debtools/apt-show-versions/internal/aptcache"
)

func entry(dist string, files ...*aptcache.OriginFile) *aptcache.SourceEntry {
	return &aptcache.SourceEntry{
		Type:         "deb",
		URI:          "http://deb.debian.org/debian",
		Distribution: dist,
		Files:        files,
	}
}

func TestDistributionName(t *testing.T) {
	stable := &aptcache.OriginFile{ID: 1, Archive: "stable", Codename: "trixie"}
	tests := []struct {
		name    string
		sources []*aptcache.SourceEntry
		file    *aptcache.OriginFile
		want    string
	}{
		{
			name:    "entry names the archive",
			sources: []*aptcache.SourceEntry{entry("stable", stable)},
			file:    stable,
			want:    "stable",
		},
		{
			name:    "entry names the codename",
			sources: []*aptcache.SourceEntry{entry("trixie", stable)},
			file:    stable,
			want:    "trixie",
		},
		{
			name:    "alias truncated at the slash",
			sources: []*aptcache.SourceEntry{entry("stable/updates", stable)},
			file:    stable,
			want:    "stable",
		},
		{
			// The first entry points at the file but names neither
			// alias; the scan keeps going.
			name: "mismatched entry skipped",
			sources: []*aptcache.SourceEntry{
				entry("bookworm", stable),
				entry("trixie", stable),
			},
			file: stable,
			want: "trixie",
		},
		{
			name:    "no entry falls back to archive",
			sources: nil,
			file:    stable,
			want:    "stable",
		},
		{
			name: "archive empty falls back to codename",
			file: &aptcache.OriginFile{ID: 2, Codename: "sid"},
			want: "sid",
		},
		{
			name: "nothing known",
			file: &aptcache.OriginFile{ID: 3},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAttributor(tt.sources)
			if got := a.DistributionName(tt.file); got != tt.want {
				t.Errorf("DistributionName = %q, want %q", got, tt.want)
			}
			// Same answer on the second ask.
			if got := a.DistributionName(tt.file); got != tt.want {
				t.Errorf("second DistributionName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDistributionNameMemoized(t *testing.T) {
	stable := &aptcache.OriginFile{ID: 1, Archive: "stable"}
	a := NewAttributor([]*aptcache.SourceEntry{entry("stable", stable)})
	if got := a.DistributionName(stable); got != "stable" {
		t.Fatalf("first call = %q", got)
	}
	// Cutting the sources away proves the second answer comes from the
	// memo, not a rescan.
	a.sources = nil
	if got := a.DistributionName(stable); got != "stable" {
		t.Errorf("memoized call = %q, want stable", got)
	}
	fresh := &aptcache.OriginFile{ID: 2, Archive: "unstable"}
	if got := a.DistributionName(fresh); got != "unstable" {
		t.Errorf("fresh file = %q, want unstable", got)
	}
}
