// Package config resolves the tool's configuration: APT-compatible
// path defaults, an optional YAML file, and one-off -o overrides,
// flattened into dotted keys.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dotted keys understood by the tool. Unknown keys may still be set
// through the override mechanism; they are simply never read.
const (
	KeyStatus          = "dir.state.status"
	KeyLists           = "dir.state.lists"
	KeySources         = "dir.etc.sources"
	KeySourceParts     = "dir.etc.sourceparts"
	KeyPreferences     = "dir.etc.preferences"
	KeyPreferenceParts = "dir.etc.preferenceparts"
	KeyBrief           = "show-versions.brief"
	KeyUpgradesOnly    = "show-versions.upgrades-only"
	KeyAllVersions     = "show-versions.all-versions"
	KeyRegexAll        = "show-versions.regex-all"
	KeyNoHold          = "show-versions.no-hold"
	KeyLogLevel        = "log.level"
)

// EnvConfigFile names an alternate configuration file when -c is not
// given.
const EnvConfigFile = "APT_SHOW_VERSIONS_CONFIG"

func defaultValues() map[string]string {
	return map[string]string{
		KeyStatus:          "/var/lib/dpkg/status",
		KeyLists:           "/var/lib/apt/lists",
		KeySources:         "/etc/apt/sources.list",
		KeySourceParts:     "/etc/apt/sources.list.d",
		KeyPreferences:     "/etc/apt/preferences",
		KeyPreferenceParts: "/etc/apt/preferences.d",
		KeyBrief:           "false",
		KeyUpgradesOnly:    "false",
		KeyAllVersions:     "false",
		KeyRegexAll:        "false",
		KeyNoHold:          "false",
		KeyLogLevel:        "warn",
	}
}

// Store resolves dotted keys against explicit values first, defaults
// second. Values come from a config file and from overrides; the last
// write wins.
type Store struct {
	defaults map[string]string
	values   map[string]string
}

// New returns a store holding only the built-in defaults.
func New() *Store {
	return &Store{
		defaults: defaultValues(),
		values:   map[string]string{},
	}
}

// LoadFile reads, validates and merges a YAML configuration file.
func (s *Store) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := s.loadYAML(data); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}

func (s *Store) loadYAML(data []byte) error {
	if err := validateYAML(data); err != nil {
		return err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	flat := map[string]string{}
	if err := flatten("", doc, flat); err != nil {
		return err
	}
	for k, v := range flat {
		s.values[k] = v
	}
	return nil
}

func flatten(prefix string, node map[string]any, out map[string]string) error {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch t := v.(type) {
		case map[string]any:
			if err := flatten(key, t, out); err != nil {
				return err
			}
		case nil:
			// empty node, nothing to record
		case string:
			out[key] = t
		case bool:
			out[key] = strconv.FormatBool(t)
		case int:
			out[key] = strconv.Itoa(t)
		case int64:
			out[key] = strconv.FormatInt(t, 10)
		case float64:
			out[key] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			return fmt.Errorf("config key %s: unsupported value type %T", key, v)
		}
	}
	return nil
}

// Set records an explicit value for a key, shadowing file and default.
func (s *Store) Set(key, value string) {
	s.values[key] = value
}

// IsSet reports whether the key carries an explicit (non-default)
// value.
func (s *Store) IsSet(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Str returns the value for key, falling back to the default, else "".
func (s *Store) Str(key string) string {
	if v, ok := s.values[key]; ok {
		return v
	}
	return s.defaults[key]
}

// Bool returns the value for key parsed as a boolean; unparseable
// values read as false.
func (s *Store) Bool(key string) bool {
	v, ok := s.values[key]
	if !ok {
		v = s.defaults[key]
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

// ParseOption splits a KEY=VAL override as accepted by -o.
func ParseOption(arg string) (key, value string, err error) {
	key, value, ok := strings.Cut(arg, "=")
	if !ok || key == "" {
		return "", "", fmt.Errorf("malformed option %q, expected KEY=VAL", arg)
	}
	return key, value, nil
}

// Typed accessors for the keys the tool reads.

func (s *Store) StatusPath() string          { return s.Str(KeyStatus) }
func (s *Store) ListsDir() string            { return s.Str(KeyLists) }
func (s *Store) SourcesPath() string         { return s.Str(KeySources) }
func (s *Store) SourcePartsDir() string      { return s.Str(KeySourceParts) }
func (s *Store) PreferencesPath() string     { return s.Str(KeyPreferences) }
func (s *Store) PreferencePartsDir() string  { return s.Str(KeyPreferenceParts) }
func (s *Store) LogLevel() string            { return s.Str(KeyLogLevel) }
func (s *Store) Brief() bool                 { return s.Bool(KeyBrief) }
func (s *Store) UpgradesOnly() bool          { return s.Bool(KeyUpgradesOnly) }
func (s *Store) AllVersions() bool           { return s.Bool(KeyAllVersions) }
func (s *Store) RegexAll() bool              { return s.Bool(KeyRegexAll) }
func (s *Store) NoHold() bool                { return s.Bool(KeyNoHold) }
