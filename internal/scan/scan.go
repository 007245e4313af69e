// Package scan orchestrates a full tree scan: it enumerates files,
// fans them out to a bounded worker pool, runs the matcher per file,
// and aggregates findings into a deterministic report.
package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"sentinel/internal/lang"
	"sentinel/internal/matcher"
	"sentinel/internal/model"
	"sentinel/internal/progress"
	"sentinel/internal/rules"
)

const (
	defaultWorkers      = 4
	defaultFileTimeout  = 5 * time.Second
	defaultMaxFileBytes = 2 * 1024 * 1024
)

// Options configures a scan run.
type Options struct {
	Root         string
	Registry     *rules.Registry
	Excludes     []string
	Languages    []string
	Workers      int
	FileTimeout  time.Duration
	MaxFileBytes int64
	Sink         progress.Sink
	Logger       *zap.SugaredLogger
}

type fileOutcome struct {
	idx      int
	findings []model.Finding
	errs     []model.ScanError
	scanned  bool
}

// Run executes the scan. Per-file failures (unreadable file, pattern
// timeout) are recorded in the report and never abort the run; a
// cancelled context returns the partial report marked incomplete.
// Fatal errors are limited to preconditions: nil/empty registry or an
// unusable root path.
func Run(ctx context.Context, opts Options) (model.Report, error) {
	started := time.Now().UTC()
	report := model.Report{RootPath: opts.Root, StartedAt: started}

	if opts.Registry == nil || opts.Registry.Len() == 0 {
		return report, errors.New("rule registry is empty")
	}
	if strings.TrimSpace(opts.Root) == "" {
		return report, errors.New("scan root is required")
	}
	if opts.Workers < 1 {
		opts.Workers = defaultWorkers
	}
	if opts.FileTimeout <= 0 {
		opts.FileTimeout = defaultFileTimeout
	}
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = defaultMaxFileBytes
	}
	if opts.Sink == nil {
		opts.Sink = progress.NoopSink{}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	langFilter := make(map[string]struct{}, len(opts.Languages))
	for _, l := range opts.Languages {
		l = lang.Normalize(l)
		if !lang.Known(l) || l == lang.Wildcard {
			return report, fmt.Errorf("unknown language filter %q", l)
		}
		langFilter[l] = struct{}{}
	}

	walked, err := enumerate(opts.Root, opts.Excludes, langFilter, opts.MaxFileBytes)
	if err != nil {
		return report, err
	}

	compiled, err := matcher.Compile(opts.Registry.All())
	if err != nil {
		return report, fmt.Errorf("compile rules: %w", err)
	}
	byLanguage := makeLanguageIndex(compiled)

	report.RuleCount = opts.Registry.Len()
	report.SkippedRules = opts.Registry.Skipped()
	report.FilesSkipped = walked.skipped

	opts.Sink.Emit(progress.Event{
		Type:       progress.EventScanStarted,
		At:         started,
		Root:       opts.Root,
		FilesTotal: len(walked.files),
	})

	outcomes := runPool(ctx, walked.files, byLanguage, opts, log)

	seen := make(map[string]struct{}, 64)
	for _, outcome := range outcomes {
		if outcome.scanned {
			report.FilesScanned++
		}
		report.Errors = append(report.Errors, outcome.errs...)
		for _, f := range outcome.findings {
			key := f.File + "\x00" + fmt.Sprint(f.StartLine) + "\x00" + f.RuleID
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			report.Findings = append(report.Findings, f)
		}
	}

	sortFindings(report.Findings, opts.Registry)
	report.Recount()

	completed := time.Now().UTC()
	report.CompletedAt = completed
	report.DurationMS = completed.Sub(started).Milliseconds()
	report.Incomplete = ctx.Err() != nil

	status := "complete"
	if report.Incomplete {
		status = "incomplete"
	}
	opts.Sink.Emit(progress.Event{
		Type:         progress.EventScanFinished,
		At:           completed,
		Root:         opts.Root,
		Status:       status,
		FindingCount: len(report.Findings),
		DurationMS:   report.DurationMS,
	})

	return report, nil
}

// runPool fans files out to opts.Workers goroutines. Results come back
// indexed so aggregation preserves enumeration (file) order regardless
// of completion order.
func runPool(ctx context.Context, files []fileEntry, byLanguage map[string][]matcher.CompiledRule, opts Options, log *zap.SugaredLogger) []fileOutcome {
	ordered := make([]fileOutcome, len(files))
	sem := make(chan struct{}, opts.Workers)
	var wg sync.WaitGroup

	for idx, entry := range files {
		wg.Add(1)
		go func(idx int, entry fileEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			// Cooperative cancellation between files: once the run is
			// cancelled remaining files are left unvisited.
			if ctx.Err() != nil {
				ordered[idx] = fileOutcome{idx: idx}
				return
			}
			ordered[idx] = scanFile(ctx, idx, entry, byLanguage, opts, log)
		}(idx, entry)
	}
	wg.Wait()
	return ordered
}

func scanFile(ctx context.Context, idx int, entry fileEntry, byLanguage map[string][]matcher.CompiledRule, opts Options, log *zap.SugaredLogger) fileOutcome {
	outcome := fileOutcome{idx: idx}
	startedAt := time.Now().UTC()

	opts.Sink.Emit(progress.Event{
		Type:     progress.EventFileStarted,
		At:       startedAt,
		File:     entry.rel,
		Language: entry.language,
	})

	applicable := byLanguage[entry.language]
	if len(applicable) == 0 {
		outcome.scanned = true
		emitFileFinished(opts.Sink, entry, 0, startedAt)
		return outcome
	}

	contentBytes, err := os.ReadFile(entry.abs)
	if err != nil {
		outcome.errs = append(outcome.errs, model.ScanError{
			Kind:    model.ErrorKindRead,
			File:    entry.rel,
			Message: err.Error(),
		})
		log.Warnw("file unreadable", "file", entry.rel, "error", err)
		opts.Sink.Emit(progress.Event{
			Type:  progress.EventFileError,
			File:  entry.rel,
			Error: err.Error(),
		})
		return outcome
	}

	fileCtx, cancel := context.WithTimeout(ctx, opts.FileTimeout)
	defer cancel()

	unit := matcher.NewSourceUnit(entry.rel, entry.language, string(contentBytes))
	res := matcher.Match(fileCtx, unit, applicable)
	outcome.scanned = true
	outcome.findings = res.Findings

	for _, matchErr := range res.Errors {
		if errors.Is(fileCtx.Err(), context.DeadlineExceeded) {
			matchErr.Kind = model.ErrorKindTimeout
		}
		outcome.errs = append(outcome.errs, matchErr)
		log.Warnw("rule failed on file", "file", matchErr.File, "rule", matchErr.RuleID, "error", matchErr.Message)
	}
	if errors.Is(fileCtx.Err(), context.DeadlineExceeded) && len(res.Errors) == 0 {
		outcome.errs = append(outcome.errs, model.ScanError{
			Kind:    model.ErrorKindTimeout,
			File:    entry.rel,
			Message: fmt.Sprintf("matching abandoned after %s", opts.FileTimeout),
		})
	}

	emitFileFinished(opts.Sink, entry, len(res.Findings), startedAt)
	return outcome
}

func emitFileFinished(sink progress.Sink, entry fileEntry, findings int, startedAt time.Time) {
	now := time.Now().UTC()
	sink.Emit(progress.Event{
		Type:         progress.EventFileFinished,
		At:           now,
		File:         entry.rel,
		Language:     entry.language,
		FindingCount: findings,
		DurationMS:   now.Sub(startedAt).Milliseconds(),
	})
}

// makeLanguageIndex groups compiled rules by the language tags they
// apply to, preserving registration order within each bucket.
func makeLanguageIndex(compiled []matcher.CompiledRule) map[string][]matcher.CompiledRule {
	out := make(map[string][]matcher.CompiledRule, 16)
	tags := []string{
		lang.JavaScript, lang.TypeScript, lang.Java, lang.PHP, lang.Python,
		lang.C, lang.Go, lang.Ruby, lang.CSharp, lang.Config,
	}
	for _, tag := range tags {
		for _, cr := range compiled {
			if cr.Rule.AppliesTo(tag) {
				out[tag] = append(out[tag], cr)
			}
		}
	}
	return out
}

// sortFindings applies the stable reporting order: file, then line,
// then rule registration order.
func sortFindings(findings []model.Finding, reg *rules.Registry) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		ri, rj := reg.Index(a.RuleID), reg.Index(b.RuleID)
		if ri != rj {
			return ri < rj
		}
		return a.DetectorID < b.DetectorID
	})
}
