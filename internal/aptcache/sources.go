package aptcache

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/debtools/apt-show-versions/internal/utils/logger"
)

// loadSources reads the configured package sources: the one-line
// sources.list format first (main file, then *.list fragments), then
// deb822 *.sources fragments. Only binary ("deb") entries matter;
// source-package entries produce no binary indexes.
func (b *builder) loadSources(fsys fs.FS, mainPath, partsDir string) {
	lineFiles := []string{mainPath}
	var stanzaFiles []string
	if entries, err := fs.ReadDir(fsys, partsDir); err == nil {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch path.Ext(e.Name()) {
			case ".list":
				lineFiles = append(lineFiles, path.Join(partsDir, e.Name()))
			case ".sources":
				stanzaFiles = append(stanzaFiles, path.Join(partsDir, e.Name()))
			}
		}
	}
	for _, p := range lineFiles {
		b.readListFile(fsys, p)
	}
	for _, p := range stanzaFiles {
		b.readSourcesFile(fsys, p)
	}
	b.resolveSourceFiles()
}

func (b *builder) readListFile(fsys fs.FS, p string) {
	log := logger.Logger()
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		log.Debugf("no sources file %s: %v", p, err)
		return
	}
	for i, line := range strings.Split(string(data), "\n") {
		entry, ok, err := parseSourceLine(line)
		if err != nil {
			log.Warnf("%s:%d: %v", p, i+1, err)
			continue
		}
		if ok {
			b.sources = append(b.sources, entry)
		}
	}
}

// parseSourceLine parses the one-line format:
//
//	deb [key=val ...] uri distribution [component...]
//
// Blank lines, comments and deb-src lines yield ok == false.
func parseSourceLine(line string) (entry *SourceEntry, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, false, nil
	}
	fields := strings.Fields(line)
	typ := fields[0]
	if typ != "deb" && typ != "deb-src" {
		return nil, false, fmt.Errorf("unknown source type %q", typ)
	}
	rest := fields[1:]
	if len(rest) > 0 && strings.HasPrefix(rest[0], "[") {
		closed := false
		for len(rest) > 0 && !closed {
			closed = strings.HasSuffix(rest[0], "]")
			rest = rest[1:]
		}
		if !closed {
			return nil, false, fmt.Errorf("unterminated option block")
		}
	}
	if len(rest) < 2 {
		return nil, false, fmt.Errorf("truncated source line")
	}
	if typ == "deb-src" {
		return nil, false, nil
	}
	return &SourceEntry{
		Type:         typ,
		URI:          rest[0],
		Distribution: rest[1],
		Components:   rest[2:],
	}, true, nil
}

// readSourcesFile parses deb822 .sources stanzas. Each deb URI/suite
// pair becomes one entry, keeping the order suites were written in.
func (b *builder) readSourcesFile(fsys fs.FS, p string) {
	log := logger.Logger()
	f, err := fsys.Open(p)
	if err != nil {
		log.Debugf("no sources file %s: %v", p, err)
		return
	}
	defer f.Close()
	sc := newStanzaScanner(f)
	for {
		st, err := sc.Next()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			log.Warnf("%s: skipping %v", p, err)
			continue
		}
		if v := st["enabled"]; v != "" && !strings.EqualFold(v, "yes") && !strings.EqualFold(v, "true") {
			continue
		}
		if !containsField(st["types"], "deb") {
			continue
		}
		comps := strings.Fields(st["components"])
		for _, uri := range strings.Fields(st["uris"]) {
			for _, suite := range strings.Fields(st["suites"]) {
				b.sources = append(b.sources, &SourceEntry{
					Type:         "deb",
					URI:          uri,
					Distribution: suite,
					Components:   comps,
				})
			}
		}
	}
}

func containsField(list, want string) bool {
	for _, f := range strings.Fields(list) {
		if f == want {
			return true
		}
	}
	return false
}

// resolveSourceFiles links every entry to the index files it produced,
// following APT's lists-directory naming. Flat repositories carry no
// suite or codename, so nothing attributable can come from them and
// they stay unresolved.
func (b *builder) resolveSourceFiles() {
	for _, e := range b.sources {
		if e.Distribution == "" || strings.HasSuffix(e.Distribution, "/") {
			continue
		}
		prefix := listPrefix(e.URI, e.Distribution)
		for _, f := range b.files {
			if f.NotSource || !strings.HasPrefix(f.Index, prefix) {
				continue
			}
			if len(e.Components) > 0 && f.Component != "" && !containsString(e.Components, f.Component) {
				continue
			}
			e.Files = append(e.Files, f)
		}
	}
}

// listPrefix computes the lists-directory name prefix APT derives from
// a (uri, distribution) pair.
func listPrefix(uri, dist string) string {
	host := uri
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.Index(host, "@"); i >= 0 {
		host = host[i+1:]
	}
	host = strings.Trim(host, "/")
	host = strings.ReplaceAll(host, "/", "_")
	return host + "_dists_" + strings.ReplaceAll(dist, "/", "_") + "_"
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
