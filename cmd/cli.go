// Package cmd implements the sentinel command line interface.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"sentinel/internal/badge"
	"sentinel/internal/config"
	"sentinel/internal/logging"
	"sentinel/internal/model"
	"sentinel/internal/progress"
	"sentinel/internal/report"
	"sentinel/internal/rules"
	"sentinel/internal/safefile"
	"sentinel/internal/scan"
	"sentinel/internal/suppress"
	"sentinel/internal/tui"
	"sentinel/internal/version"
)

// Exit codes.
const (
	ExitClean    = 0
	ExitFindings = 1
	ExitFatal    = 2
)

// Execute dispatches the CLI. The returned code follows the contract:
// 0 clean, 1 findings at or above the fail-on threshold, 2 fatal.
func Execute(args []string) (int, error) {
	if len(args) == 0 {
		return ExitFatal, usageError("missing command")
	}

	switch args[0] {
	case "scan":
		return runScan(args[1:])
	case "rules":
		return runRules(args[1:])
	case "badge":
		return runBadge(args[1:])
	case "version":
		fmt.Println("sentinel " + version.Version)
		return ExitClean, nil
	case "help", "--help", "-h":
		printUsage()
		return ExitClean, nil
	default:
		return ExitFatal, usageError(fmt.Sprintf("unknown command %q", args[0]))
	}
}

func runScan(args []string) (int, error) {
	cfg, err := config.Load()
	if err != nil {
		return ExitFatal, err
	}

	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.SetOutput(flag.CommandLine.Output())

	format := fs.String("format", "text", "Output format: text|json|sarif")
	failOn := fs.String("fail-on", "low", "Exit 1 when findings at or above this severity exist")
	workers := fs.Int("workers", 4, "Concurrent file workers")
	fileTimeout := fs.Duration("timeout", 5*time.Second, "Per-file matching timeout")
	maxFileBytes := fs.Int64("max-file-bytes", 2*1024*1024, "Skip files larger than this")
	rulesDir := fs.String("rules-dir", "", "Custom rules directory (default .sentinel/rules and ~/.sentinel/rules)")
	noCustomRules := fs.Bool("no-custom-rules", false, "Run builtin rules only")
	noSuppress := fs.Bool("no-suppress", false, "Ignore suppressions and report everything")
	out := fs.String("out", "", "Write the report to a file instead of stdout")
	verbose := fs.Bool("verbose", false, "Enable verbose logs")
	enableTUI := fs.Bool("tui", false, "Enable interactive terminal UI")
	disableTUI := fs.Bool("no-tui", false, "Disable interactive terminal UI")

	var excludes listFlag
	var languages listFlag
	var onlyCategories listFlag
	fs.Var(&excludes, "exclude", "Exclude paths matching glob (repeatable or comma-separated)")
	fs.Var(&languages, "lang", "Restrict scan to language(s) (repeatable or comma-separated)")
	fs.Var(&onlyCategories, "only-category", "Only run rules in the given categories (repeatable or comma-separated)")

	var root string
	parseArgs := args
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		root = args[0]
		parseArgs = args[1:]
	}
	if err := fs.Parse(parseArgs); err != nil {
		return ExitFatal, err
	}
	remaining := fs.Args()
	switch {
	case root == "" && len(remaining) == 1:
		root = remaining[0]
	case root != "" && len(remaining) == 0:
		// valid
	default:
		return ExitFatal, usageError("usage: sentinel scan <path> [flags]")
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	applyConfig(cfg, set, format, failOn, workers, fileTimeout, maxFileBytes,
		rulesDir, noCustomRules, noSuppress, verbose, disableTUI,
		&excludes, &languages, &onlyCategories)

	if *workers < 1 {
		return ExitFatal, errors.New("--workers must be >= 1")
	}
	if *fileTimeout <= 0 {
		return ExitFatal, errors.New("--timeout must be > 0")
	}
	if *maxFileBytes <= 0 {
		return ExitFatal, errors.New("--max-file-bytes must be > 0")
	}
	if *enableTUI && *disableTUI {
		return ExitFatal, errors.New("cannot set both --tui and --no-tui")
	}

	style, err := report.ParseStyle(*format)
	if err != nil {
		return ExitFatal, err
	}
	threshold := model.NormalizeSeverity(*failOn)

	log, err := logging.New(*verbose)
	if err != nil {
		return ExitFatal, err
	}
	defer func() { _ = log.Sync() }()

	registry, err := rules.Load(rules.LoadOptions{
		RulesDir:       *rulesDir,
		NoCustomRules:  *noCustomRules,
		OnlyCategories: onlyCategories.Values(),
		Logger:         log,
	})
	if err != nil {
		return ExitFatal, err
	}

	stdoutTTY := isatty.IsTerminal(os.Stdout.Fd())
	useTUI := style == report.StyleText && *out == "" &&
		stdoutTTY && isatty.IsTerminal(os.Stderr.Fd())
	if *enableTUI {
		useTUI = true
	}
	if *disableTUI {
		useTUI = false
	}

	scanOpts := scan.Options{
		Root:         root,
		Registry:     registry,
		Excludes:     excludes.Values(),
		Languages:    languages.Values(),
		Workers:      *workers,
		FileTimeout:  *fileTimeout,
		MaxFileBytes: *maxFileBytes,
		Logger:       log,
	}

	ctx := context.Background()
	var rep model.Report
	if useTUI {
		events := make(chan progress.Event, 128)
		scanOpts.Sink = progress.NewChannelSink(events)

		type runResult struct {
			report model.Report
			err    error
		}
		runDone := make(chan runResult, 1)
		go func() {
			defer close(events)
			r, runErr := scan.Run(ctx, scanOpts)
			runDone <- runResult{report: r, err: runErr}
		}()

		if err := tui.Run(tui.Options{Events: events}); err != nil {
			return ExitFatal, err
		}
		result := <-runDone
		if result.err != nil {
			return ExitFatal, result.err
		}
		rep = result.report
	} else {
		if *verbose {
			scanOpts.Sink = progress.NewPlainSink(os.Stderr)
		}
		rep, err = scan.Run(ctx, scanOpts)
		if err != nil {
			return ExitFatal, err
		}
	}

	if !*noSuppress {
		if err := applySuppressions(&rep, root); err != nil {
			return ExitFatal, err
		}
	}

	colorize := style == report.StyleText && *out == "" && stdoutTTY
	rendered, err := report.Format(rep, style, colorize)
	if err != nil {
		return ExitFatal, err
	}

	if *out != "" {
		if err := safefile.WriteFileAtomic(*out, []byte(rendered), 0o644); err != nil {
			return ExitFatal, err
		}
		fmt.Printf("report written to %s\n", *out)
	} else {
		fmt.Print(rendered)
		if !strings.HasSuffix(rendered, "\n") {
			fmt.Println()
		}
	}

	if rep.HasFindingsAtOrAbove(threshold) {
		return ExitFindings, nil
	}
	return ExitClean, nil
}

// applyConfig fills in config-file values for flags the user did not
// set on the command line. Flags always win.
func applyConfig(cfg config.Config, set map[string]bool,
	format, failOn *string, workers *int, fileTimeout *time.Duration,
	maxFileBytes *int64, rulesDir *string, noCustomRules, noSuppress,
	verbose, disableTUI *bool, excludes, languages, onlyCategories *listFlag) {

	if !set["format"] && cfg.Format != "" {
		*format = cfg.Format
	}
	if !set["fail-on"] && cfg.FailOn != "" {
		*failOn = cfg.FailOn
	}
	if !set["workers"] && cfg.Workers != nil {
		*workers = *cfg.Workers
	}
	if !set["timeout"] && cfg.FileTimeout != "" {
		if d, err := time.ParseDuration(cfg.FileTimeout); err == nil {
			*fileTimeout = d
		}
	}
	if !set["max-file-bytes"] && cfg.MaxFileBytes != nil {
		*maxFileBytes = *cfg.MaxFileBytes
	}
	if !set["rules-dir"] && cfg.RulesDir != "" {
		*rulesDir = cfg.RulesDir
	}
	if !set["no-custom-rules"] && cfg.NoCustomRules != nil {
		*noCustomRules = *cfg.NoCustomRules
	}
	if !set["no-suppress"] && cfg.NoSuppress != nil {
		*noSuppress = *cfg.NoSuppress
	}
	if !set["verbose"] && cfg.Verbose != nil {
		*verbose = *cfg.Verbose
	}
	if !set["no-tui"] && cfg.NoTUI != nil {
		*disableTUI = *cfg.NoTUI
	}
	if !set["exclude"] && len(cfg.Exclude) > 0 {
		excludes.values = append(excludes.values, cfg.Exclude...)
	}
	if !set["lang"] && len(cfg.Languages) > 0 {
		languages.values = append(languages.values, cfg.Languages...)
	}
	if !set["only-category"] && len(cfg.OnlyCategory) > 0 {
		onlyCategories.values = append(onlyCategories.values, cfg.OnlyCategory...)
	}
}

// applySuppressions moves accepted findings out of the active set.
// Inline annotations are keyed relative to the scan root, so a
// single-file root scans its parent directory instead.
func applySuppressions(rep *model.Report, root string) error {
	suppressRoot := root
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		suppressRoot = filepath.Dir(root)
	}

	entries, err := suppress.Load(suppress.DefaultPath(suppressRoot))
	if err != nil {
		return err
	}
	inline, err := suppress.ScanInline(suppressRoot)
	if err != nil {
		return err
	}

	active, suppressed := suppress.Apply(rep.Findings, entries, inline)
	rep.Findings = active
	rep.SuppressedFindings = suppressed
	rep.Recount()
	return nil
}

func runRules(args []string) (int, error) {
	if len(args) == 0 {
		return ExitFatal, usageError("usage: sentinel rules <list|validate> [flags]")
	}
	switch args[0] {
	case "list":
		return runRulesList(args[1:])
	case "validate":
		return runRulesValidate(args[1:])
	default:
		return ExitFatal, usageError(fmt.Sprintf("unknown rules subcommand %q", args[0]))
	}
}

func runRulesList(args []string) (int, error) {
	fs := flag.NewFlagSet("rules list", flag.ContinueOnError)
	fs.SetOutput(flag.CommandLine.Output())

	rulesDir := fs.String("rules-dir", "", "Custom rules directory")
	includeBuiltins := fs.Bool("include-builtins", true, "Include builtin rules")
	categoryFilter := fs.String("category", "", "Only list rules in this category")

	if err := fs.Parse(args); err != nil {
		return ExitFatal, err
	}
	if len(fs.Args()) != 0 {
		return ExitFatal, errors.New("rules list does not accept positional args")
	}

	dirs, err := rules.ResolveReadDirs(*rulesDir)
	if err != nil {
		return ExitFatal, err
	}
	custom, warnings, err := rules.LoadCustomDirs(dirs)
	if err != nil {
		return ExitFatal, err
	}

	all := make([]rules.Rule, 0, len(custom)+32)
	if *includeBuiltins {
		all = append(all, rules.Builtins()...)
	}
	all = append(all, custom...)

	filter := strings.ToLower(strings.TrimSpace(*categoryFilter))
	listed := make([]rules.Rule, 0, len(all))
	for _, r := range all {
		r = rules.NormalizeRule(r)
		if filter != "" && r.Category != filter {
			continue
		}
		listed = append(listed, r)
	}
	sort.Slice(listed, func(i, j int) bool { return listed[i].ID < listed[j].ID })

	if len(listed) == 0 {
		fmt.Println("no rules found")
	} else {
		for _, r := range listed {
			fmt.Printf("%-28s %-16s %-8s %-8s %s\n",
				r.ID, r.Category, r.Severity, r.Source, strings.Join(r.Languages, ","))
		}
	}
	for _, w := range warnings {
		fmt.Printf("warning: %s\n", w)
	}
	return ExitClean, nil
}

func runRulesValidate(args []string) (int, error) {
	fs := flag.NewFlagSet("rules validate", flag.ContinueOnError)
	fs.SetOutput(flag.CommandLine.Output())

	rulesDir := fs.String("rules-dir", "", "Custom rules directory")

	if err := fs.Parse(args); err != nil {
		return ExitFatal, err
	}
	if len(fs.Args()) != 0 {
		return ExitFatal, errors.New("rules validate does not accept positional args")
	}

	dirs, err := rules.ResolveReadDirs(*rulesDir)
	if err != nil {
		return ExitFatal, err
	}
	custom, warnings, err := rules.LoadCustomDirs(dirs)
	if err != nil {
		return ExitFatal, err
	}
	if len(warnings) > 0 {
		return ExitFatal, fmt.Errorf("invalid rules:\n- %s", strings.Join(warnings, "\n- "))
	}

	all := append(rules.Builtins(), custom...)
	seen := make(map[string]struct{}, len(all))
	for _, r := range all {
		r = rules.NormalizeRule(r)
		if err := rules.ValidateRule(r); err != nil {
			return ExitFatal, fmt.Errorf("invalid rule %q: %w", r.ID, err)
		}
		if _, dup := seen[r.ID]; dup {
			return ExitFatal, fmt.Errorf("duplicate rule id %q", r.ID)
		}
		seen[r.ID] = struct{}{}
	}

	fmt.Printf("validated %d rules\n", len(all))
	return ExitClean, nil
}

func runBadge(args []string) (int, error) {
	fs := flag.NewFlagSet("badge", flag.ContinueOnError)
	fs.SetOutput(flag.CommandLine.Output())

	label := fs.String("label", "security", "Badge label text")
	styleName := fs.String("style", "flat", "Badge style: flat|flat-square")
	badgeFormat := fs.String("format", "svg", "Badge format: svg|shields")
	out := fs.String("out", "", "Write badge to a file instead of stdout")

	var reportPath string
	parseArgs := args
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		reportPath = args[0]
		parseArgs = args[1:]
	}
	if err := fs.Parse(parseArgs); err != nil {
		return ExitFatal, err
	}
	remaining := fs.Args()
	switch {
	case reportPath == "" && len(remaining) == 1:
		reportPath = remaining[0]
	case reportPath != "" && len(remaining) == 0:
		// valid
	default:
		return ExitFatal, usageError("usage: sentinel badge <report.json> [flags]")
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		return ExitFatal, fmt.Errorf("read report: %w", err)
	}
	var rep model.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return ExitFatal, fmt.Errorf("parse report %s: %w", reportPath, err)
	}
	if rep.CountsBySeverity == nil {
		rep.Recount()
	}

	grade, color := badge.Grade(rep.CountsBySeverity)

	var rendered string
	switch strings.ToLower(strings.TrimSpace(*badgeFormat)) {
	case "svg":
		rendered = badge.RenderSVG(*label, grade, color, badge.ParseStyle(*styleName))
	case "shields":
		rendered = badge.ShieldsJSON(*label, grade, color)
	default:
		return ExitFatal, fmt.Errorf("--format must be svg or shields, got %q", *badgeFormat)
	}

	if *out != "" {
		if err := safefile.WriteFileAtomic(*out, []byte(rendered), 0o644); err != nil {
			return ExitFatal, err
		}
		fmt.Printf("badge written to %s (grade %s)\n", *out, grade)
	} else {
		fmt.Println(rendered)
	}
	return ExitClean, nil
}

func usageError(msg string) error {
	printUsage()
	return errors.New(msg)
}

func printUsage() {
	fmt.Println("Sentinel CLI")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  sentinel scan <path> [flags]")
	fmt.Println("  sentinel rules <list|validate> [flags]")
	fmt.Println("  sentinel badge <report.json> [flags]")
	fmt.Println("  sentinel version")
	fmt.Println("")
	fmt.Println("Flags (scan):")
	fmt.Println("  --format <text|json|sarif>  Output format (default text)")
	fmt.Println("  --fail-on <severity>        Exit 1 threshold (default low)")
	fmt.Println("  --lang <tag>                Restrict to language(s) (repeatable)")
	fmt.Println("  --exclude <glob>            Exclude paths (repeatable)")
	fmt.Println("  --only-category <name>      Only run rules in category (repeatable)")
	fmt.Println("  --workers <n>               Concurrent file workers (default 4)")
	fmt.Println("  --timeout <dur>             Per-file matching timeout (default 5s)")
	fmt.Println("  --max-file-bytes <n>        Skip larger files (default 2097152)")
	fmt.Println("  --rules-dir <dir>           Custom rules directory")
	fmt.Println("  --no-custom-rules           Builtin rules only")
	fmt.Println("  --no-suppress               Ignore suppressions")
	fmt.Println("  --out <file>                Write report to file")
	fmt.Println("  --tui / --no-tui            Force the terminal UI on/off")
	fmt.Println("  --verbose                   Verbose logs")
	fmt.Println("")
	fmt.Println("Flags (badge):")
	fmt.Println("  --label <text>              Badge label (default security)")
	fmt.Println("  --style <flat|flat-square>  Badge style (default flat)")
	fmt.Println("  --format <svg|shields>      Badge format (default svg)")
	fmt.Println("  --out <file>                Write badge to file")
}

type listFlag struct {
	values []string
}

func (f *listFlag) String() string {
	if f == nil {
		return ""
	}
	return strings.Join(f.values, ",")
}

func (f *listFlag) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			f.values = append(f.values, part)
		}
	}
	return nil
}

func (f *listFlag) Values() []string {
	if f == nil || len(f.values) == 0 {
		return nil
	}
	out := make([]string, 0, len(f.values))
	for _, v := range f.values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
