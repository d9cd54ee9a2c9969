package aptcache

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/debtools/apt-show-versions/internal/utils/logger"
)

// loadStatus reads the dpkg status database. It is the one input the
// tool cannot work without; anything else degrades gracefully.
func (b *builder) loadStatus(fsys fs.FS, p string) error {
	f, err := fsys.Open(p)
	if err != nil {
		return fmt.Errorf("open status database: %w", err)
	}
	defer f.Close()

	log := logger.Logger()
	sc := newStanzaScanner(f)
	for {
		st, err := sc.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			log.Warnf("status database: skipping %v", err)
			continue
		}
		name := st["package"]
		if name == "" {
			log.Warnf("status database: skipping paragraph without a Package field")
			continue
		}
		arch := st["architecture"]
		if arch == "" {
			arch = "all"
		}
		sel, inst, cur, err := ParseStatusTriple(st["status"])
		if err != nil {
			return fmt.Errorf("status database, package %s: %w", name, err)
		}
		pkg := b.pkg(name, arch)
		pkg.Selection, pkg.Install, pkg.State = sel, inst, cur

		// dpkg keeps a Version for removed-but-not-purged packages;
		// only states past config-files mean bits are on disk.
		ver := st["version"]
		if ver == "" || cur == StateNotInstalled || cur == StateConfigFiles {
			continue
		}
		v := b.version(pkg, ver)
		v.Origins = append(v.Origins, b.status)
		pkg.Installed = v
	}
}
