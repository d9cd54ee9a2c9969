package report

import (
	"fmt"
	"io"

	"github.com/debtools/apt-show-versions/internal/aptcache"
)

// officialSuites is the canonical group order of the all-versions
// block. Anything else an archive calls itself lands in the leading
// pseudo-group.
var officialSuites = []string{
	"oldstable", "stable", "proposed-updates", "stable-updates",
	"testing", "testing-proposed-updates", "testing-updates",
	"unstable", "experimental",
}

func isOfficialSuite(archive string) bool {
	for _, s := range officialSuites {
		if archive == s {
			return true
		}
	}
	return false
}

// blockRow is one line of the table. Literal rows separate groups and
// never count toward column widths.
type blockRow struct {
	cells   [4]string
	literal string
}

// block prints the per-archive table above a verdict: a status
// heading, then one row per (version, origin) pair, grouped by suite.
func (r *Reporter) block(p *aptcache.Package) {
	if p.Installed != nil {
		fmt.Fprintf(r.out, "%s %s %s %s %s\n", p.FullName(), p.Installed.Str,
			p.Selection, p.Install, p.State)
	} else {
		fmt.Fprintln(r.out, "Not installed")
	}

	rows := r.groupRows(p, "")
	archives := r.catalog.Archives()
	for _, suite := range officialSuites {
		// A suite no configured archive carries is skipped outright; a
		// carried one that offers nothing for this package says so.
		if !archives[suite] {
			continue
		}
		g := r.groupRows(p, suite)
		if len(g) == 0 {
			rows = append(rows, blockRow{literal: "No " + suite + " version"})
			continue
		}
		rows = append(rows, g...)
	}
	renderRows(r.out, rows)
}

// groupRows collects the rows of one suite group. The empty suite is
// the pseudo-group of unofficial archives.
func (r *Reporter) groupRows(p *aptcache.Package, suite string) []blockRow {
	var rows []blockRow
	for _, v := range p.Versions {
		for _, f := range v.Origins {
			if f.NotSource {
				continue
			}
			if suite == "" {
				if isOfficialSuite(f.Archive) {
					continue
				}
			} else if f.Archive != suite {
				continue
			}
			rows = append(rows, blockRow{cells: [4]string{
				p.FullName(), v.Str, r.attr.DistributionName(f), f.Site,
			}})
		}
	}
	return rows
}

func renderRows(out io.Writer, rows []blockRow) {
	var width [4]int
	for _, row := range rows {
		if row.literal != "" {
			continue
		}
		for i, c := range row.cells {
			if len(c) > width[i] {
				width[i] = len(c)
			}
		}
	}
	for _, row := range rows {
		if row.literal != "" {
			fmt.Fprintln(out, row.literal)
			continue
		}
		fmt.Fprintf(out, "%-*s %-*s %-*s %-*s\n",
			width[0], row.cells[0], width[1], row.cells[1],
			width[2], row.cells[2], width[3], row.cells[3])
	}
}
