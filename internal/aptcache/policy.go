package aptcache

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/debtools/apt-show-versions/internal/utils/logger"
)

// Policy holds the wildcard pins from the preferences files. Pins
// scoped to single packages never change which version is reported
// here, so only "Package: *" stanzas are kept.
type Policy struct {
	pins []pin
}

// pin matches an index file on every field it sets.
type pin struct {
	archive   string
	codename  string
	origin    string
	label     string
	component string
	site      string
	priority  int
}

func (p pin) matches(f *OriginFile) bool {
	if p.site != "" && p.site != f.Site {
		return false
	}
	if p.archive != "" && p.archive != f.Archive {
		return false
	}
	if p.codename != "" && p.codename != f.Codename {
		return false
	}
	if p.origin != "" && p.origin != f.Origin {
		return false
	}
	if p.label != "" && p.label != f.Label {
		return false
	}
	if p.component != "" && p.component != f.Component {
		return false
	}
	return true
}

// Priority returns the pin priority of one index file. The first
// matching pin wins; without one, the stock defaults apply: 100 for
// the status pseudo-index and for archives marked
// ButAutomaticUpgrades, 1 for NotAutomatic archives, 500 otherwise.
func (pol *Policy) Priority(f *OriginFile) int {
	for _, p := range pol.pins {
		if p.matches(f) {
			return p.priority
		}
	}
	switch {
	case f.NotSource:
		return 100
	case f.ButAutomaticUpgrades:
		return 100
	case f.NotAutomatic:
		return 1
	}
	return 500
}

// loadPolicy reads the main preferences file and the fragment
// directory. Fragments with an extension other than .pref are ignored.
func loadPolicy(fsys fs.FS, mainPath, partsDir string) *Policy {
	pol := &Policy{}
	pol.readPreferences(fsys, mainPath)
	if entries, err := fs.ReadDir(fsys, partsDir); err == nil {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if ext := path.Ext(e.Name()); ext != "" && ext != ".pref" {
				continue
			}
			pol.readPreferences(fsys, path.Join(partsDir, e.Name()))
		}
	}
	return pol
}

func (pol *Policy) readPreferences(fsys fs.FS, p string) {
	log := logger.Logger()
	f, err := fsys.Open(p)
	if err != nil {
		log.Debugf("no preferences file %s: %v", p, err)
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
		if st["package"] != "*" {
			continue
		}
		prio, err := strconv.Atoi(strings.TrimSpace(st["pin-priority"]))
		if err != nil {
			log.Warnf("%s: bad pin priority %q", p, st["pin-priority"])
			continue
		}
		pn, err := parsePin(st["pin"])
		if err != nil {
			log.Warnf("%s: %v", p, err)
			continue
		}
		pn.priority = prio
		pol.pins = append(pol.pins, pn)
	}
}

// parsePin parses the Pin field of a wildcard stanza. Release pins
// take a comma list of letter=value terms; origin pins take a host
// name. Version pins need a package name and never pair with "*".
func parsePin(s string) (pin, error) {
	kind, rest, _ := strings.Cut(strings.TrimSpace(s), " ")
	rest = strings.TrimSpace(rest)
	switch kind {
	case "release":
		var p pin
		for _, term := range strings.Split(rest, ",") {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			k, v, ok := strings.Cut(term, "=")
			if !ok {
				return pin{}, fmt.Errorf("malformed release pin term %q", term)
			}
			switch k {
			case "a":
				p.archive = v
			case "n":
				p.codename = v
			case "o":
				p.origin = v
			case "l":
				p.label = v
			case "c":
				p.component = v
			case "v":
				// Release versions are not tracked per index file.
			default:
				return pin{}, fmt.Errorf("unknown release pin key %q", k)
			}
		}
		return p, nil
	case "origin":
		return pin{site: rest}, nil
	case "version":
		return pin{}, fmt.Errorf("version pin needs a package name, not a wildcard")
	}
	return pin{}, fmt.Errorf("unknown pin type %q", kind)
}
