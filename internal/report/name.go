package report

import "github.com/debtools/apt-show-versions/internal/aptcache"

// Policy is the priority side of the pin policy.
type Policy interface {
	Priority(*aptcache.OriginFile) int
}

// Namer renders display names: the bare full name, or
// fullname/distribution when a real archive offers the version.
type Namer struct {
	policy Policy
	attr   *Attributor
}

func NewNamer(policy Policy, attr *Attributor) *Namer {
	return &Namer{policy: policy, attr: attr}
}

// DisplayName names p as reported alongside version v. The
// highest-priority non-status origin of v picks the distribution
// suffix, ties going to the first origin; no such origin, or no
// version, means no suffix.
func (n *Namer) DisplayName(p *aptcache.Package, v *aptcache.Version) string {
	full := p.FullName()
	if v == nil {
		return full
	}
	var best *aptcache.OriginFile
	bestPrio := 0
	for _, f := range v.Origins {
		if f.NotSource {
			continue
		}
		if prio := n.policy.Priority(f); best == nil || prio > bestPrio {
			best, bestPrio = f, prio
		}
	}
	if best == nil {
		return full
	}
	if name := n.attr.DistributionName(best); name != "" {
		return full + "/" + name
	}
	return full
}
