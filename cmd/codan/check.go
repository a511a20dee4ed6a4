package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"codan/internal/checker"
	"codan/internal/checkers"
	"codan/internal/config"
	"codan/internal/diag"
	"codan/internal/diagfmt"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <unit|directory>",
	Short: "Analyze a serialized translation unit or a directory of units",
	Long: `Analyze a .cast/.json translation unit, or every unit below a directory, with
the enabled checkers. Rule settings come from the nearest .codan.toml and are
overridden by flags.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

// init registers the flags read by readCheckOptions.
func init() {
	checkCmd.Flags().String("format", "", "output format (pretty|short|json|sarif); default from config or pretty")
	checkCmd.Flags().String("config", "", "configuration file (default: nearest "+config.FileName+")")
	checkCmd.Flags().Bool("no-config", false, "ignore configuration files")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Bool("enable-all", false, "enable every rule")
	checkCmd.Flags().StringSlice("enable", nil, "enable rules by id")
	checkCmd.Flags().StringSlice("disable", nil, "disable rules by id")
	checkCmd.Flags().StringArray("severity", nil, "override a rule severity (RULE=info|warning|error)")
	checkCmd.Flags().StringArray("set", nil, "set a rule parameter (RULE.param=value)")
	checkCmd.Flags().Bool("cache", false, "reuse results of unchanged units from the on-disk cache")
	checkCmd.Flags().String("cache-dir", "", "cache directory (default: $XDG_CACHE_HOME/codan)")
	checkCmd.Flags().String("progress", "auto", "show a progress view for directories (auto|on|off)")
	checkCmd.Flags().String("path-mode", "auto", "how file paths are printed (auto|absolute|relative|basename)")
	checkCmd.Flags().Int("context", 0, "source lines shown around each problem (pretty)")
	checkCmd.Flags().Bool("with-notes", false, "include problem notes in output")
}

type checkOptions struct {
	format      string
	configPath  string
	noConfig    bool
	jobs        int
	enableAll   bool
	enable      []string
	disable     []string
	severities  []string
	params      []string
	useCache    bool
	cacheDir    string
	progress    uiMode
	pathMode    diagfmt.PathMode
	baseDir     string
	context     int
	withNotes   bool
	maxProblems int
	timings     bool
	quiet       bool
	color       bool
}

// exitError carries a process exit status through cobra.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// runCheck executes "check": it loads the configuration, analyzes every unit
// and prints the problems. Problems of error severity end with exit status 2.
func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	opts, err := readCheckOptions(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	code, err := check(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], opts)
	if err != nil {
		return err
	}
	if code != 0 {
		return exitError{code: code}
	}
	return nil
}

func readCheckOptions(cmd *cobra.Command) (checkOptions, error) {
	var opts checkOptions
	var err error
	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	if opts.format, err = flags.GetString("format"); err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	if opts.configPath, err = flags.GetString("config"); err != nil {
		return opts, fmt.Errorf("failed to get config flag: %w", err)
	}
	if opts.noConfig, err = flags.GetBool("no-config"); err != nil {
		return opts, fmt.Errorf("failed to get no-config flag: %w", err)
	}
	if opts.jobs, err = flags.GetInt("jobs"); err != nil {
		return opts, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if opts.enableAll, err = flags.GetBool("enable-all"); err != nil {
		return opts, fmt.Errorf("failed to get enable-all flag: %w", err)
	}
	if opts.enable, err = flags.GetStringSlice("enable"); err != nil {
		return opts, fmt.Errorf("failed to get enable flag: %w", err)
	}
	if opts.disable, err = flags.GetStringSlice("disable"); err != nil {
		return opts, fmt.Errorf("failed to get disable flag: %w", err)
	}
	if opts.severities, err = flags.GetStringArray("severity"); err != nil {
		return opts, fmt.Errorf("failed to get severity flag: %w", err)
	}
	if opts.params, err = flags.GetStringArray("set"); err != nil {
		return opts, fmt.Errorf("failed to get set flag: %w", err)
	}
	if opts.useCache, err = flags.GetBool("cache"); err != nil {
		return opts, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if opts.cacheDir, err = flags.GetString("cache-dir"); err != nil {
		return opts, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	progressStr, err := flags.GetString("progress")
	if err != nil {
		return opts, fmt.Errorf("failed to get progress flag: %w", err)
	}
	if opts.progress, err = readUIMode(progressStr); err != nil {
		return opts, err
	}
	pathStr, err := flags.GetString("path-mode")
	if err != nil {
		return opts, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	var ok bool
	if opts.pathMode, ok = diagfmt.ParsePathMode(pathStr); !ok {
		return opts, fmt.Errorf("unknown path mode %q (expected auto|absolute|relative|basename)", pathStr)
	}
	if opts.context, err = flags.GetInt("context"); err != nil {
		return opts, fmt.Errorf("failed to get context flag: %w", err)
	}
	if opts.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return opts, fmt.Errorf("failed to get with-notes flag: %w", err)
	}

	if opts.maxProblems, err = root.GetInt("max-problems"); err != nil {
		return opts, fmt.Errorf("failed to get max-problems flag: %w", err)
	}
	if opts.timings, err = root.GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if opts.quiet, err = root.GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	colorStr, err := root.GetString("color")
	if err != nil {
		return opts, fmt.Errorf("failed to get color flag: %w", err)
	}
	colorMode, err := readUIMode(colorStr)
	if err != nil {
		return opts, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorStr)
	}
	opts.color = shouldUseTUI(colorMode)

	if wd, wdErr := os.Getwd(); wdErr == nil {
		opts.baseDir = wd
	}
	return opts, nil
}

// check is the body of "check" without cobra: it returns the exit status.
func check(ctx context.Context, out, errOut io.Writer, target string, opts checkOptions) (int, error) {
	reg := checkers.Registry()

	file, err := loadConfigFile(target, opts)
	if err != nil {
		return 1, err
	}
	cfg, err := buildConfig(reg, file, opts)
	if err != nil {
		return 1, err
	}
	if file != nil {
		if opts.format == "" {
			opts.format = file.Run.Format
		}
		if opts.jobs == 0 {
			opts.jobs = file.Run.Jobs
		}
		if opts.maxProblems == 0 {
			opts.maxProblems = file.Run.MaxProblems
		}
	}
	if opts.format == "" {
		opts.format = "pretty"
	}
	switch opts.format {
	case "pretty", "short", "json", "sarif":
	default:
		return 1, fmt.Errorf("unknown format %q (expected pretty|short|json|sarif)", opts.format)
	}

	var exclude []string
	if file != nil {
		exclude = file.Run.Exclude
	}
	files, err := collectInputs(target, exclude)
	if err != nil {
		return 1, err
	}

	outcomes, err := analyze(ctx, files, reg, cfg, opts)
	if err != nil {
		return 1, err
	}

	if err := render(out, outcomes, reg, cfg, opts); err != nil {
		return 1, fmt.Errorf("failed to write output: %w", err)
	}
	failed := reportOutcomes(errOut, outcomes, opts)

	switch {
	case failed:
		return 1, nil
	case hasErrors(outcomes):
		return 2, nil
	}
	return 0, nil
}

func loadConfigFile(target string, opts checkOptions) (*config.File, error) {
	if opts.noConfig {
		return nil, nil
	}
	path := opts.configPath
	if path == "" {
		found, ok, err := config.Find(target)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		path = found
	}
	return config.LoadFile(path)
}

// buildConfig layers flags over the configuration file.
func buildConfig(reg *checker.Registry, file *config.File, opts checkOptions) (*config.Config, error) {
	o := &config.Overrides{EnableAll: opts.enableAll}
	if file != nil {
		file.Apply(o)
	}
	for _, id := range opts.enable {
		o.Enable(strings.TrimSpace(id))
	}
	for _, id := range opts.disable {
		o.Disable(strings.TrimSpace(id))
	}
	for _, kv := range opts.severities {
		id, sevStr, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --severity %q (expected RULE=severity)", kv)
		}
		sev, err := diag.ParseSeverity(sevStr)
		if err != nil {
			return nil, fmt.Errorf("--severity %s: %w", kv, err)
		}
		o.SetSeverity(strings.TrimSpace(id), sev)
	}
	for _, kv := range opts.params {
		key, value, ok := strings.Cut(kv, "=")
		id, param, okDot := strings.Cut(key, ".")
		if !ok || !okDot {
			return nil, fmt.Errorf("invalid --set %q (expected RULE.param=value)", kv)
		}
		o.Set(strings.TrimSpace(id), strings.TrimSpace(param), value)
	}
	cfg, err := config.Build(reg.Specs(), o)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func displayPath(p string, opts checkOptions) string {
	if opts.baseDir == "" {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	if rel, err := filepath.Rel(opts.baseDir, abs); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return p
}
