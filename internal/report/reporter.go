// Package report classifies packages against the archive state and
// renders the one-line verdicts and the all-versions blocks.
package report

import (
	"fmt"
	"io"

	"github.com/debtools/apt-show-versions/internal/aptcache"
)

// Options are the report-shaping switches.
type Options struct {
	// UpgradesOnly keeps only packages an upgrade would touch.
	UpgradesOnly bool
	// Brief cuts every verdict down to its display name.
	Brief bool
	// AllVersions prints the per-archive block above each verdict.
	AllVersions bool
	// NoHold drops packages the user has held back.
	NoHold bool
}

// Catalog is the cache surface the reporter consumes.
type Catalog interface {
	Candidate(*aptcache.Package) *aptcache.Version
	Archives() map[string]bool
}

// Selection is one resolved set of packages to report on, in emission
// order.
type Selection struct {
	Packages []*aptcache.Package
	// ShowUninstalled admits not-installed packages. Exact patterns
	// grant it; regex patterns only under regex-all; the full walk
	// never does.
	ShowUninstalled bool
}

// Result counts what one Run emitted.
type Result struct {
	Printed    int
	Upgradable int
}

// Reporter writes verdicts for classified packages.
type Reporter struct {
	catalog Catalog
	namer   *Namer
	attr    *Attributor
	opts    Options
	out     io.Writer
}

func New(catalog Catalog, namer *Namer, attr *Attributor, opts Options, out io.Writer) *Reporter {
	return &Reporter{catalog: catalog, namer: namer, attr: attr, opts: opts, out: out}
}

// Run reports every package in the selection, in order.
func (r *Reporter) Run(sel Selection) Result {
	var res Result
	for _, p := range sel.Packages {
		r.report(p, sel.ShowUninstalled, &res)
	}
	return res
}

func (r *Reporter) report(p *aptcache.Package, showUninstalled bool, res *Result) {
	if r.opts.NoHold && p.Selection == aptcache.SelectionHold {
		return
	}
	if p.Installed == nil && (!showUninstalled || r.opts.UpgradesOnly) {
		return
	}
	cand := r.catalog.Candidate(p)
	state := Classify(p.Installed, cand, p.Versions)
	if state.Upgradable() {
		res.Upgradable++
	}
	if r.opts.UpgradesOnly && !state.Upgradable() {
		return
	}
	if r.opts.AllVersions && !r.opts.Brief {
		r.block(p)
	}
	r.verdict(p, state, cand)
	res.Printed++
}

func (r *Reporter) verdict(p *aptcache.Package, state UpgradeState, cand *aptcache.Version) {
	// Brief mode sends the tail of every verdict to the null sink,
	// leaving the display name alone on the line.
	tail := r.out
	if r.opts.Brief {
		tail = io.Discard
	}
	switch state {
	case NotInstalled:
		fmt.Fprint(r.out, p.FullName())
		fmt.Fprint(tail, " not installed")
	case NotAvailable:
		fmt.Fprint(r.out, p.FullName())
		fmt.Fprintf(tail, " %s installed: No available version in archive", p.Installed.Str)
	case UpToDate:
		fmt.Fprint(r.out, r.namer.DisplayName(p, cand))
		fmt.Fprintf(tail, " uptodate %s", p.Installed.Str)
	case AutomaticUpgrade:
		fmt.Fprint(r.out, r.namer.DisplayName(p, cand))
		fmt.Fprintf(tail, " upgradable from %s to %s", p.Installed.Str, cand.Str)
	case ManualUpgrade:
		newest := p.Versions[0]
		fmt.Fprint(r.out, r.namer.DisplayName(p, newest))
		fmt.Fprintf(tail, " *manually* upgradable from %s to %s", p.Installed.Str, newest.Str)
	case DowngradeOnly:
		fmt.Fprint(r.out, r.namer.DisplayName(p, cand))
		fmt.Fprintf(tail, " %s newer than version in archive", p.Installed.Str)
	}
	fmt.Fprintln(r.out)
}
