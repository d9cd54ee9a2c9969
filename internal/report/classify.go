package report

import (
	"fmt"

	"github.com/debtools/apt-show-versions/internal/aptcache"
)

// UpgradeState is the verdict on one package: how its installed
// version relates to what the archives offer.
type UpgradeState int

const (
	NotInstalled UpgradeState = iota
	NotAvailable
	UpToDate
	AutomaticUpgrade
	ManualUpgrade
	DowngradeOnly
)

var stateNames = [...]string{
	"not-installed", "not-available", "up-to-date",
	"automatic-upgrade", "manual-upgrade", "downgrade-only",
}

func (s UpgradeState) String() string {
	if int(s) >= len(stateNames) {
		panic(fmt.Sprintf("upgrade state %d out of range", s))
	}
	return stateNames[s]
}

// Upgradable reports whether the state means a newer version exists,
// whether or not policy would install it.
func (s UpgradeState) Upgradable() bool {
	return s == AutomaticUpgrade || s == ManualUpgrade
}

// Classify is the verdict on one package. avail is the package's
// version list, newest first, including the installed version.
//
// The case order is load-bearing: a package whose candidate moved away
// from the installed version is an automatic upgrade even when a
// newer-still version exists that policy refuses, and an installed
// version some index still offers is up to date even when a newer
// version exists. Scripts parse these verdicts, so the order must not
// change.
func Classify(installed, candidate *aptcache.Version, avail []*aptcache.Version) UpgradeState {
	switch {
	case installed == nil:
		return NotInstalled
	case len(avail) == 1 && len(installed.Origins) == 1:
		// The installed version, known only to the status database, is
		// the only version anywhere.
		return NotAvailable
	case candidate != nil && candidate.ID != installed.ID:
		return AutomaticUpgrade
	case len(installed.Origins) > 1:
		return UpToDate
	case len(avail) > 0 && avail[0].ID != installed.ID:
		return ManualUpgrade
	}
	// Only older versions remain in the archives.
	for i, v := range avail {
		if v.ID == installed.ID && i+1 < len(avail) {
			return DowngradeOnly
		}
	}
	panic("unclassifiable package state: corrupt cache snapshot")
}
