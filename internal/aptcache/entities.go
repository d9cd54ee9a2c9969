// Package aptcache loads the dpkg status database, the APT package
// indexes, the configured sources and the pin preferences into one
// immutable in-memory snapshot, and answers policy questions about it.
package aptcache

import (
	"strings"

	debver "pault.ag/go/debian/version"
)

// Entity identities are indexes into the snapshot's pooled slices.
type (
	PackageID uint32
	VersionID uint32
	FileID    uint32
)

// Package is one (name, architecture) entry known to dpkg or to at
// least one index.
type Package struct {
	ID   PackageID
	Name string
	Arch string

	// Status triple from the dpkg status database. Zero values
	// (unknown/ok/not-installed) for packages dpkg has never seen.
	Selection SelectionState
	Install   InstallState
	State     CurrentState

	// Installed points into Versions; nil when not installed.
	Installed *Version

	// Versions holds every known version, descending, including the
	// installed one.
	Versions []*Version
}

// FullName returns the unambiguous multi-arch form, name:arch.
func (p *Package) FullName() string { return p.Name + ":" + p.Arch }

// IsInstalled reports whether dpkg has a version of this package on
// the system.
func (p *Package) IsInstalled() bool { return p.Installed != nil }

// Version is one version string of one package, with every origin that
// provides it. The status pseudo-origin, when present, is first.
type Version struct {
	ID      VersionID
	Str     string
	Origins []*OriginFile

	parsed  debver.Version
	parseOK bool
}

// NewVersion builds a Version, parsing the Debian version string for
// later comparison. Unparseable strings still work, falling back to
// byte comparison.
func NewVersion(id VersionID, str string, origins ...*OriginFile) *Version {
	v := &Version{ID: id, Str: str, Origins: origins}
	if parsed, err := debver.Parse(str); err == nil {
		v.parsed = parsed
		v.parseOK = true
	}
	return v
}

func (v *Version) String() string { return v.Str }

// Compare orders two versions by Debian version comparison rules,
// falling back to byte order when either did not parse.
func (v *Version) Compare(o *Version) int {
	if v.parseOK && o.parseOK {
		return debver.Compare(v.parsed, o.parsed)
	}
	return strings.Compare(v.Str, o.Str)
}

// OriginFile is one package index: a binary-Packages file under the
// lists directory, or the dpkg status database as a pseudo-index with
// NotSource set.
type OriginFile struct {
	ID    FileID
	Site  string // host part of the index file name
	Index string // index file name under the lists directory

	Archive   string // suite from the Release file, e.g. "stable"
	Codename  string // e.g. "trixie"
	Origin    string
	Label     string
	Component string
	Arch      string

	NotSource            bool
	NotAutomatic         bool
	ButAutomaticUpgrades bool
}

// SourceEntry is one configured repository: a sources.list line or one
// deb822 URI/suite pair.
type SourceEntry struct {
	Type         string // "deb"
	URI          string
	Distribution string // as written, possibly "stable/updates"
	Components   []string

	// Files are the origin files this entry produced, resolved at
	// load time.
	Files []*OriginFile
}
