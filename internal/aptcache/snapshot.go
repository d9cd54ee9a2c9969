package aptcache

import (
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/debtools/apt-show-versions/internal/utils/logger"
)

// LoadOptions carry the filesystem root and the host paths of the dpkg
// and APT state to read.
type LoadOptions struct {
	// FS is the filesystem root; nil means the host root.
	FS fs.FS

	Status          string
	ListsDir        string
	Sources         string
	SourceParts     string
	Preferences     string
	PreferenceParts string
}

// Snapshot is the immutable view of the package cache one run works
// on. All slices and maps are read-only after Load.
type Snapshot struct {
	pkgs     []*Package
	byKey    map[pkgKey]*Package
	byName   map[string][]*Package
	vers     []*Version
	files    []*OriginFile
	sources  []*SourceEntry
	policy   *Policy
	archives map[string]bool
	status   *OriginFile
}

type pkgKey struct{ name, arch string }

// Load builds a snapshot. The status database is required; missing
// index, source or preference files merely make the snapshot emptier,
// with a warning.
func Load(opts LoadOptions) (*Snapshot, error) {
	fsys := opts.FS
	if fsys == nil {
		fsys = os.DirFS("/")
	}
	start := time.Now()
	b := newBuilder()
	if err := b.loadStatus(fsys, fsPath(opts.Status)); err != nil {
		return nil, err
	}
	b.loadIndexes(fsys, fsPath(opts.ListsDir))
	b.loadSources(fsys, fsPath(opts.Sources), fsPath(opts.SourceParts))
	b.policy = loadPolicy(fsys, fsPath(opts.Preferences), fsPath(opts.PreferenceParts))
	s := b.finish()
	logger.Logger().Debugf("loaded %d packages, %d versions, %d index files in %s",
		len(s.pkgs), len(s.vers), len(s.files), time.Since(start))
	return s, nil
}

// fsPath converts a host-absolute path from the configuration into an
// fs.FS path.
func fsPath(p string) string {
	p = strings.TrimPrefix(path.Clean(p), "/")
	if p == "" {
		return "."
	}
	return p
}

type builder struct {
	pkgs     map[pkgKey]*Package
	vers     []*Version
	verIndex map[verKey]*Version
	files    []*OriginFile
	sources  []*SourceEntry
	policy   *Policy
	status   *OriginFile
}

type verKey struct {
	pkg *Package
	str string
}

func newBuilder() *builder {
	b := &builder{
		pkgs:     map[pkgKey]*Package{},
		verIndex: map[verKey]*Version{},
	}
	// The status database is a pseudo-index: it provides installed
	// versions but nothing installable.
	b.status = b.addFile(&OriginFile{
		Index:     "status",
		Archive:   "now",
		NotSource: true,
	})
	return b
}

func (b *builder) addFile(f *OriginFile) *OriginFile {
	f.ID = FileID(len(b.files))
	b.files = append(b.files, f)
	return f
}

func (b *builder) pkg(name, arch string) *Package {
	k := pkgKey{name, arch}
	if p, ok := b.pkgs[k]; ok {
		return p
	}
	p := &Package{Name: name, Arch: arch}
	b.pkgs[k] = p
	return p
}

// version interns one (package, version-string) pair.
func (b *builder) version(p *Package, str string) *Version {
	k := verKey{p, str}
	if v, ok := b.verIndex[k]; ok {
		return v
	}
	v := NewVersion(VersionID(len(b.vers)), str)
	b.vers = append(b.vers, v)
	b.verIndex[k] = v
	p.Versions = append(p.Versions, v)
	return v
}

func (b *builder) finish() *Snapshot {
	pkgs := make([]*Package, 0, len(b.pkgs))
	for _, p := range b.pkgs {
		pkgs = append(pkgs, p)
	}
	sort.Slice(pkgs, func(i, j int) bool {
		if pkgs[i].Name != pkgs[j].Name {
			return pkgs[i].Name < pkgs[j].Name
		}
		return pkgs[i].Arch < pkgs[j].Arch
	})
	byKey := make(map[pkgKey]*Package, len(pkgs))
	byName := map[string][]*Package{}
	for i, p := range pkgs {
		p.ID = PackageID(i)
		vs := p.Versions
		sort.SliceStable(vs, func(a, c int) bool { return vs[a].Compare(vs[c]) > 0 })
		byKey[pkgKey{p.Name, p.Arch}] = p
		byName[p.Name] = append(byName[p.Name], p)
	}
	archives := map[string]bool{}
	for _, f := range b.files {
		if !f.NotSource && f.Archive != "" {
			archives[f.Archive] = true
		}
	}
	pol := b.policy
	if pol == nil {
		pol = &Policy{}
	}
	return &Snapshot{
		pkgs:     pkgs,
		byKey:    byKey,
		byName:   byName,
		vers:     b.vers,
		files:    b.files,
		sources:  b.sources,
		policy:   pol,
		archives: archives,
		status:   b.status,
	}
}

// Packages returns every known package in (name, architecture) order.
func (s *Snapshot) Packages() []*Package { return s.pkgs }

// Lookup returns the package of exactly this name and architecture, or
// nil.
func (s *Snapshot) Lookup(name, arch string) *Package {
	return s.byKey[pkgKey{name, arch}]
}

// OriginFiles returns every index file, the status pseudo-index first.
func (s *Snapshot) OriginFiles() []*OriginFile { return s.files }

// Sources returns the configured source entries in configuration
// order.
func (s *Snapshot) Sources() []*SourceEntry { return s.sources }

// Policy returns the pin policy loaded from the preferences files.
func (s *Snapshot) Policy() *Policy { return s.policy }

// Archives returns the set of archive labels the real indexes carry.
// Callers must treat it as read-only.
func (s *Snapshot) Archives() map[string]bool { return s.archives }

// Candidate returns the version the pin policy would install for this
// package, or nil. The rules follow apt_preferences: priorities of
// zero and below never win; a priority below 100 never replaces an
// installed version; going backwards needs a priority above 1000; the
// newest version wins priority ties.
func (s *Snapshot) Candidate(p *Package) *Version {
	var best *Version
	bestPrio := 0
	for _, v := range p.Versions {
		instVer := p.Installed != nil && v.ID == p.Installed.ID
		prio, ok := 0, false
		for _, f := range v.Origins {
			// The status pseudo-index offers nothing installable
			// beyond what is already installed.
			if f.NotSource && !instVer {
				continue
			}
			if q := s.policy.Priority(f); !ok || q > prio {
				prio, ok = q, true
			}
		}
		if !ok || prio <= 0 {
			continue
		}
		if !instVer && p.Installed != nil {
			if prio < 100 {
				continue
			}
			if v.Compare(p.Installed) < 0 && prio <= 1000 {
				continue
			}
		}
		if prio > bestPrio {
			best, bestPrio = v, prio
		}
	}
	return best
}
