package aptcache

import (
	"errors"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/debtools/apt-show-versions/internal/utils/logger"
)

// indexMeta is what an index file's name alone tells us, before any
// Release metadata.
type indexMeta struct {
	site      string
	dist      string
	component string
	arch      string
	prefix    string // shared with the Release file of the same suite
}

// loadIndexes walks the APT lists directory and ingests every binary
// package index it recognizes.
func (b *builder) loadIndexes(fsys fs.FS, dir string) {
	log := logger.Logger()
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		log.Warnf("package indexes unavailable: %v", err)
		return
	}
	releases := map[string]releaseInfo{}
	for _, e := range entries {
		if e.IsDir() {
			// partial/ and auxiliary directories
			continue
		}
		name := e.Name()
		base, ext, isIndex := indexBaseExt(name)
		if !isIndex {
			continue
		}
		if !compressionExts[ext] {
			log.Warnf("skipping index %s: unsupported compression %q", name, ext)
			continue
		}
		meta, ok := parseIndexName(base)
		if !ok {
			log.Warnf("skipping index %s: unrecognized file name", name)
			continue
		}
		rel, cached := releases[meta.prefix]
		if !cached {
			rel = loadRelease(fsys, dir, meta.prefix)
			releases[meta.prefix] = rel
		}
		file := &OriginFile{
			Site:                 meta.site,
			Index:                name,
			Archive:              rel.Suite,
			Codename:             rel.Codename,
			Origin:               rel.Origin,
			Label:                rel.Label,
			Component:            meta.component,
			Arch:                 meta.arch,
			NotAutomatic:         rel.NotAutomatic,
			ButAutomaticUpgrades: rel.ButAutomaticUpgrades,
		}
		if rel.Suite == "" && rel.Codename == "" {
			// No Release metadata; the dists path segment is all we
			// know, and it is usually the codename.
			file.Codename = meta.dist
		}
		b.addFile(file)
		if err := b.readIndex(fsys, path.Join(dir, name), ext, file); err != nil {
			log.Warnf("index %s: %v", name, err)
		}
	}
}

// indexBaseExt recognizes "..._Packages" with an optional compression
// extension.
func indexBaseExt(name string) (base, ext string, isIndex bool) {
	if strings.HasSuffix(name, "_Packages") {
		return name, "", true
	}
	i := strings.LastIndex(name, "_Packages.")
	if i < 0 {
		return "", "", false
	}
	cut := i + len("_Packages")
	return name[:cut], name[cut:], true
}

// parseIndexName takes an index file name apart. APT encodes the
// repository URI and the dists path into the name, underscores
// standing in for slashes:
//
//	deb.debian.org_debian_dists_trixie_main_binary-amd64_Packages
//
// A name without a dists segment is a flat repository; only the site
// is knowable then.
func parseIndexName(base string) (indexMeta, bool) {
	segs := strings.Split(base, "_")
	n := len(segs)
	if n < 2 || segs[n-1] != "Packages" {
		return indexMeta{}, false
	}
	m := indexMeta{site: segs[0]}
	if m.site == "" {
		return indexMeta{}, false
	}
	di := -1
	for i, s := range segs {
		if s == "dists" {
			di = i
			break
		}
	}
	if di < 0 || n-3 <= di {
		m.prefix = strings.Join(segs[:n-1], "_") + "_"
		return m, true
	}
	if bin := segs[n-2]; strings.HasPrefix(bin, "binary-") {
		m.arch = strings.TrimPrefix(bin, "binary-")
	}
	m.component = segs[n-3]
	m.dist = strings.Join(segs[di+1:n-3], "/")
	m.prefix = strings.Join(segs[:n-3], "_") + "_"
	return m, true
}

// readIndex ingests one binary package index into the builder.
func (b *builder) readIndex(fsys fs.FS, p, ext string, file *OriginFile) error {
	f, err := fsys.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()
	r, release, err := openReader(f, ext)
	if err != nil {
		return err
	}
	defer release()

	log := logger.Logger()
	sc := newStanzaScanner(r)
	count := 0
	for {
		st, err := sc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Warnf("index %s: skipping %v", file.Index, err)
			continue
		}
		name := st["package"]
		if name == "" {
			log.Warnf("index %s: skipping paragraph without a Package field", file.Index)
			continue
		}
		ver := st["version"]
		if ver == "" {
			log.Warnf("index %s: package %s has no version", file.Index, name)
			continue
		}
		arch := st["architecture"]
		if arch == "" {
			arch = file.Arch
		}
		if arch == "" {
			arch = "all"
		}
		pkg := b.pkg(name, arch)
		v := b.version(pkg, ver)
		v.Origins = append(v.Origins, file)
		count++
	}
	log.Debugf("index %s: %d packages", file.Index, count)
	return nil
}
