package aptcache

import (
	"testing"
	"testing/fstest"
)

func TestParsePin(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    pin
		wantErr bool
	}{
		{
			name: "release archive",
			in:   "release a=stable",
			want: pin{archive: "stable"},
		},
		{
			name: "release full",
			in:   "release a=stable, n=trixie, o=Debian, l=Debian, c=main",
			want: pin{archive: "stable", codename: "trixie", origin: "Debian", label: "Debian", component: "main"},
		},
		{
			name: "release version term ignored",
			in:   "release a=stable, v=13.0",
			want: pin{archive: "stable"},
		},
		{
			name: "origin site",
			in:   "origin deb.debian.org",
			want: pin{site: "deb.debian.org"},
		},
		{name: "version pin", in: "version 5.8*", wantErr: true},
		{name: "unknown type", in: "component main", wantErr: true},
		{name: "malformed term", in: "release stable", wantErr: true},
		{name: "unknown key", in: "release z=zed", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePin(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("pin = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPriorityDefaults(t *testing.T) {
	pol := &Policy{}
	tests := []struct {
		name string
		file *OriginFile
		want int
	}{
		{"status pseudo-index", &OriginFile{NotSource: true, Archive: "now"}, 100},
		{"plain archive", &OriginFile{Archive: "stable"}, 500},
		{"not automatic", &OriginFile{Archive: "experimental", NotAutomatic: true}, 1},
		{"backports", &OriginFile{Archive: "trixie-backports", NotAutomatic: true, ButAutomaticUpgrades: true}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pol.Priority(tt.file); got != tt.want {
				t.Errorf("Priority = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPriorityPinMatching(t *testing.T) {
	pol := &Policy{pins: []pin{
		{archive: "experimental", component: "main", priority: 150},
		{site: "pkgs.example.com", priority: -1},
		{archive: "experimental", priority: 900},
	}}
	tests := []struct {
		name string
		file *OriginFile
		want int
	}{
		// Both experimental pins match; the first in file order wins.
		{"first match wins", &OriginFile{Archive: "experimental", Component: "main"}, 150},
		// The two-field pin needs both fields to agree.
		{"and semantics", &OriginFile{Archive: "experimental", Component: "contrib"}, 900},
		{"origin pin", &OriginFile{Site: "pkgs.example.com", Archive: "stable"}, -1},
		{"no match falls back", &OriginFile{Archive: "stable"}, 500},
		// A pin never matching NotAutomatic fields leaves the default.
		{"unpinned not automatic", &OriginFile{Archive: "unstable", NotAutomatic: true}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pol.Priority(tt.file); got != tt.want {
				t.Errorf("Priority = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLoadPolicy(t *testing.T) {
	fsys := fstest.MapFS{
		"etc/apt/preferences": {Data: []byte(
			"Package: *\n" +
				"Pin: release a=experimental\n" +
				"Pin-Priority: 150\n" +
				"\n" +
				// Named-package pins pin versions, not origin files.
				"Package: bash\n" +
				"Pin: release a=unstable\n" +
				"Pin-Priority: 900\n",
		)},
		"etc/apt/preferences.d/vendor.pref": {Data: []byte(
			"Package: *\n" +
				"Pin: origin pkgs.example.com\n" +
				"Pin-Priority: 990\n",
		)},
		"etc/apt/preferences.d/noext": {Data: []byte(
			"Package: *\n" +
				"Pin: release a=unstable\n" +
				"Pin-Priority: 50\n",
		)},
		"etc/apt/preferences.d/ignored.bak": {Data: []byte(
			"Package: *\n" +
				"Pin: release a=stable\n" +
				"Pin-Priority: -10\n",
		)},
		"etc/apt/preferences.d/broken.pref": {Data: []byte(
			"Package: *\n" +
				"Pin: release a=testing\n" +
				"Pin-Priority: soon\n",
		)},
	}
	pol := loadPolicy(fsys, "etc/apt/preferences", "etc/apt/preferences.d")

	tests := []struct {
		name string
		file *OriginFile
		want int
	}{
		{"main file pin", &OriginFile{Archive: "experimental", NotAutomatic: true}, 150},
		{"named package ignored", &OriginFile{Archive: "unstable"}, 50},
		{"pref fragment", &OriginFile{Site: "pkgs.example.com"}, 990},
		{"bak fragment ignored", &OriginFile{Archive: "stable"}, 500},
		{"bad priority skipped", &OriginFile{Archive: "testing"}, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pol.Priority(tt.file); got != tt.want {
				t.Errorf("Priority = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLoadPolicyMissingFiles(t *testing.T) {
	pol := loadPolicy(fstest.MapFS{}, "etc/apt/preferences", "etc/apt/preferences.d")
	if len(pol.pins) != 0 {
		t.Errorf("pins = %+v, want none", pol.pins)
	}
	if got := pol.Priority(&OriginFile{Archive: "stable"}); got != 500 {
		t.Errorf("Priority = %d, want 500", got)
	}
}
