package aptcache

import (
	"fmt"
	"regexp"
	"strings"
)

// MatchKind reports which resolver produced a package set.
type MatchKind int

const (
	// MatchOther is the whole-cache walk used when no pattern is given.
	MatchOther MatchKind = iota
	// MatchExact selects one package name across architectures.
	MatchExact
	// MatchRegex selects every package whose name the pattern matches.
	MatchRegex
)

// regexChars turn a pattern into a regular expression instead of a
// package name.
const regexChars = `.?*+^$[]`

// Resolve turns one command-line pattern into the packages it selects.
// Regular expressions match unanchored against package names. Exact
// patterns may carry an architecture qualifier as name:arch. A valid
// pattern that selects nothing returns an empty set and no error.
func (s *Snapshot) Resolve(pattern string) ([]*Package, MatchKind, error) {
	if strings.ContainsAny(pattern, regexChars) {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, MatchRegex, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		var out []*Package
		for _, p := range s.pkgs {
			if re.MatchString(p.Name) {
				out = append(out, p)
			}
		}
		return out, MatchRegex, nil
	}
	if name, arch, ok := strings.Cut(pattern, ":"); ok {
		if p := s.Lookup(name, arch); p != nil {
			return []*Package{p}, MatchExact, nil
		}
		return nil, MatchExact, nil
	}
	return append([]*Package(nil), s.byName[pattern]...), MatchExact, nil
}
