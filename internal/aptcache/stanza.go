package aptcache

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// stanza is one deb822 paragraph with field names lowercased. Folded
// values are joined with single spaces.
type stanza map[string]string

// stanzaScanner streams deb822 paragraphs: blank-line separated
// "Field: value" groups with indented continuation lines. Comment
// lines are ignored (sources files allow them, the others never
// contain any).
type stanzaScanner struct {
	sc   *bufio.Scanner
	line int
	done bool
}

// Long lines show up in Description and checksum fields; 4 MiB is far
// beyond anything dpkg or APT will write.
const maxFieldLine = 4 * 1024 * 1024

func newStanzaScanner(r io.Reader) *stanzaScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxFieldLine)
	return &stanzaScanner{sc: sc}
}

// Next returns the next paragraph, or io.EOF at the end. A malformed
// paragraph yields an error naming the offending line; the scanner has
// already resynced to the next blank line, so the caller can keep
// going.
func (s *stanzaScanner) Next() (stanza, error) {
	if s.done {
		return nil, io.EOF
	}
	var st stanza
	lastField := ""
	badLine := 0
	for s.sc.Scan() {
		s.line++
		line := s.sc.Text()
		if strings.TrimSpace(line) == "" {
			if badLine != 0 {
				return nil, fmt.Errorf("malformed paragraph at line %d", badLine)
			}
			if st != nil {
				return st, nil
			}
			continue
		}
		if badLine != 0 {
			continue
		}
		if line[0] == '#' {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			if lastField == "" {
				badLine = s.line
				continue
			}
			st[lastField] += " " + strings.TrimSpace(line)
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			badLine = s.line
			continue
		}
		if st == nil {
			st = stanza{}
		}
		lastField = strings.ToLower(strings.TrimSpace(name))
		if _, dup := st[lastField]; !dup {
			st[lastField] = strings.TrimSpace(value)
		}
	}
	s.done = true
	if err := s.sc.Err(); err != nil {
		return nil, fmt.Errorf("read paragraph: %w", err)
	}
	if badLine != 0 {
		return nil, fmt.Errorf("malformed paragraph at line %d", badLine)
	}
	if st != nil {
		return st, nil
	}
	return nil, io.EOF
}
