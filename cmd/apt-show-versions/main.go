package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/debtools/apt-show-versions/internal/aptcache"
	"github.com/debtools/apt-show-versions/internal/config"
	"github.com/debtools/apt-show-versions/internal/report"
	"github.com/debtools/apt-show-versions/internal/utils/logger"
)

const toolVersion = "0.1.0"

// Command-line flags
var (
	upgradesOnly bool
	brief        bool
	allVersions  bool
	regexAll     bool
	noHold       bool
	packageName  string
	configFile   string
	overrides    optionList
	initialize   bool
	verbose      bool
)

// optionList collects repeated -o KEY=VAL overrides in order.
type optionList []string

var _ pflag.Value = (*optionList)(nil)

func (o *optionList) String() string { return strings.Join(*o, ",") }
func (o *optionList) Type() string   { return "KEY=VAL" }
func (o *optionList) Set(v string) error {
	*o = append(*o, v)
	return nil
}

// exitError carries a specific process exit code out of RunE.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

// rootFS is the filesystem the package cache loads from. Tests swap
// it for a synthetic tree.
var rootFS = func() fs.FS { return os.DirFS("/") }

func main() {
	defer logger.Sync()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit code:
// 0 on success, 1 on usage or cache errors, 2 for the scripted
// "is this one package upgradable?" answer.
func run(args []string, stdout, stderr io.Writer) int {
	rootCmd := createRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.Execute(); err != nil {
		var xe *exitError
		if errors.As(err, &xe) {
			if xe.err != nil {
				fmt.Fprintf(stderr, "E: %v\n", xe.err)
			}
			return xe.code
		}
		fmt.Fprintf(stderr, "E: %v\n", err)
		return 1
	}
	return 0
}

// createRootCommand builds the command-line surface.
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "apt-show-versions [flags] [PATTERN...]",
		Short: "shows available package versions and upgrade state",
		Long: `apt-show-versions compares the installed version of every package
against what the configured archives offer and prints one verdict line
per package. Patterns narrow the report to matching packages; a pattern
containing regular-expression characters matches package names as an
unanchored expression, anything else names one package exactly.`,
		Version:       toolVersion,
		Args:          cobra.ArbitraryArgs,
		RunE:          executeShow,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fl := rootCmd.Flags()
	fl.BoolVarP(&upgradesOnly, "upgradeable", "u", false, "print only upgradeable packages")
	fl.BoolVarP(&brief, "brief", "b", false, "print package names only")
	fl.BoolVarP(&allVersions, "allversions", "a", false, "print all available versions of each package")
	fl.BoolVarP(&regexAll, "regex-all", "R", false, "let regular expressions match uninstalled packages")
	fl.BoolVarP(&noHold, "no-hold", "n", false, "hide packages on hold")
	fl.StringVarP(&packageName, "package", "p", "", "report this package (same as one PATTERN)")
	fl.StringVarP(&configFile, "config", "c", "", "alternate configuration file")
	fl.VarP(&overrides, "option", "o", "one-off configuration override, KEY=VAL")
	fl.BoolVarP(&initialize, "initialize", "i", false, "accepted for backward compatibility")
	fl.BoolVarP(&verbose, "verbose", "v", false, "accepted for backward compatibility, requests debug logging")
	return rootCmd
}

// resolveRequestedLogLevel picks the log level: an explicit
// configuration wins, --verbose falls back to debug.
func resolveRequestedLogLevel(cfg *config.Store, cmd *cobra.Command) string {
	if cfg.IsSet(config.KeyLogLevel) {
		return cfg.LogLevel()
	}
	if cmd != nil && cmd.Flags().Changed("verbose") && verbose {
		return "debug"
	}
	return cfg.LogLevel()
}

// loadConfiguration merges defaults, the optional file, -o overrides
// and the boolean flags, in that order.
func loadConfiguration(cmd *cobra.Command) (*config.Store, error) {
	cfg := config.New()
	path := configFile
	if !cmd.Flags().Changed("config") {
		path = os.Getenv(config.EnvConfigFile)
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	for _, kv := range overrides {
		key, val, err := config.ParseOption(kv)
		if err != nil {
			return nil, err
		}
		cfg.Set(key, val)
	}
	for flag, key := range map[string]string{
		"upgradeable": config.KeyUpgradesOnly,
		"brief":       config.KeyBrief,
		"allversions": config.KeyAllVersions,
		"regex-all":   config.KeyRegexAll,
		"no-hold":     config.KeyNoHold,
	} {
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetBool(flag)
			cfg.Set(key, strconv.FormatBool(v))
		}
	}
	return cfg, nil
}

// executeShow handles the one and only command.
func executeShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration(cmd)
	if err != nil {
		return err
	}
	logger.Init(resolveRequestedLogLevel(cfg, cmd))
	log := logger.Logger()

	patterns := args
	if cmd.Flags().Changed("package") {
		if len(patterns) > 0 {
			return &exitError{code: 1, err: errors.New("--package cannot be combined with a package argument")}
		}
		patterns = []string{packageName}
	}
	if cfg.NoHold() && len(patterns) > 0 {
		return &exitError{code: 1, err: errors.New("--no-hold cannot be combined with package patterns")}
	}
	if cfg.RegexAll() && len(patterns) == 0 {
		return &exitError{code: 1, err: errors.New("--regex-all needs at least one pattern")}
	}

	snap, err := aptcache.Load(aptcache.LoadOptions{
		FS:              rootFS(),
		Status:          cfg.StatusPath(),
		ListsDir:        cfg.ListsDir(),
		Sources:         cfg.SourcesPath(),
		SourceParts:     cfg.SourcePartsDir(),
		Preferences:     cfg.PreferencesPath(),
		PreferenceParts: cfg.PreferencePartsDir(),
	})
	if err != nil {
		if len(patterns) == 0 {
			// Scripts probe the whole-system walk with exit code 2.
			return &exitError{code: 2, err: err}
		}
		return &exitError{code: 1, err: err}
	}

	attr := report.NewAttributor(snap.Sources())
	rep := report.New(snap, report.NewNamer(snap.Policy(), attr), attr, report.Options{
		UpgradesOnly: cfg.UpgradesOnly(),
		Brief:        cfg.Brief(),
		AllVersions:  cfg.AllVersions(),
		NoHold:       cfg.NoHold(),
	}, cmd.OutOrStdout())

	if len(patterns) == 0 {
		res := rep.Run(report.Selection{Packages: snap.Packages()})
		log.Debugf("reported %d packages, %d upgradable", res.Printed, res.Upgradable)
		return nil
	}

	errOut := cmd.ErrOrStderr()
	var total report.Result
	literalOnly := true
	for _, pat := range patterns {
		pkgs, kind, err := snap.Resolve(pat)
		if err != nil {
			// Bad patterns are diagnosed, the remaining patterns still run.
			fmt.Fprintf(errOut, "E: %v\n", err)
			literalOnly = false
			continue
		}
		if kind == aptcache.MatchRegex {
			literalOnly = false
		}
		if kind == aptcache.MatchExact && len(pkgs) == 0 {
			fmt.Fprintf(errOut, "unable to locate package %s\n", pat)
			continue
		}
		res := rep.Run(report.Selection{
			Packages:        pkgs,
			ShowUninstalled: kind == aptcache.MatchExact || (kind == aptcache.MatchRegex && cfg.RegexAll()),
		})
		total.Printed += res.Printed
		total.Upgradable += res.Upgradable
	}
	if cfg.UpgradesOnly() && literalOnly && len(patterns) == 1 && total.Upgradable == 0 {
		return &exitError{code: 2}
	}
	return nil
}
