package scan

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"sentinel/internal/model"
	"sentinel/internal/rules"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func builtinRegistry(t *testing.T) *rules.Registry {
	t.Helper()
	reg, err := rules.Build(rules.Builtins(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestRun_SQLInjectionScenario(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "db.js", `const q = "SELECT * FROM users WHERE name = '" + name + "'";`+"\n")

	report, err := Run(context.Background(), Options{Root: root, Registry: builtinRegistry(t)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(report.Findings) != 1 {
		t.Fatalf("expected exactly one finding, got %d: %+v", len(report.Findings), report.Findings)
	}
	f := report.Findings[0]
	if f.Severity != model.SeverityCritical || f.Category != "injection" {
		t.Errorf("finding = %+v, want critical injection", f)
	}
	if f.File != "db.js" || f.StartLine != 1 {
		t.Errorf("location = %s:%d, want db.js:1", f.File, f.StartLine)
	}
}

func TestRun_HardenedCookieProducesNoFindings(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "session.js", `res.cookie('sid', id, {httpOnly:true, secure:true, sameSite:'strict'})`+"\n")

	report, err := Run(context.Background(), Options{Root: root, Registry: builtinRegistry(t)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Findings) != 0 {
		t.Fatalf("expected zero findings, got %+v", report.Findings)
	}
}

func TestRun_EmptyRegistryIsFatalBeforeAnyFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.js", "eval(x)\n")

	_, err := Run(context.Background(), Options{Root: root, Registry: nil})
	if err == nil {
		t.Fatal("expected fatal error for missing registry")
	}
}

func TestRun_UnreadableFileRecordedAndScanContinues(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "ok.js", "eval(payload)\n")
	if err := os.Symlink(filepath.Join(root, "missing.js"), filepath.Join(root, "broken.js")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	report, err := Run(context.Background(), Options{Root: root, Registry: builtinRegistry(t)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	readErrs := 0
	for _, e := range report.Errors {
		if e.Kind == model.ErrorKindRead && e.File == "broken.js" {
			readErrs++
		}
	}
	if readErrs != 1 {
		t.Fatalf("expected one read error for broken.js, got %+v", report.Errors)
	}
	for _, f := range report.Findings {
		if f.File == "broken.js" {
			t.Fatalf("unreadable file must yield zero findings, got %+v", f)
		}
	}
	if len(report.Findings) == 0 {
		t.Fatal("scan should still report findings from readable files")
	}
}

func TestRun_DeterministicAcrossRepeatedScans(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/app.js", "eval(a)\neval(b)\n")
	writeFile(t, root, "b/loader.py", "import pickle\npickle.loads(blob)\n")
	writeFile(t, root, "config.yaml", "debug: true\n")

	reg := builtinRegistry(t)
	first, err := Run(context.Background(), Options{Root: root, Registry: reg, Workers: 4})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Run(context.Background(), Options{Root: root, Registry: reg, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first.Findings, second.Findings) {
		t.Fatalf("findings differ across runs:\n%+v\n%+v", first.Findings, second.Findings)
	}

	for i := 1; i < len(first.Findings); i++ {
		prev, cur := first.Findings[i-1], first.Findings[i]
		if prev.File > cur.File {
			t.Fatalf("findings not in file order: %s before %s", prev.File, cur.File)
		}
		if prev.File == cur.File && prev.StartLine > cur.StartLine {
			t.Fatalf("findings not in line order within %s", cur.File)
		}
	}
}

func TestRun_DedupCollapsesSameFileLineRule(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.js", "dangerzone dangerzone\n")

	// Two detectors of one rule hitting the same line must collapse to
	// a single finding keyed by (file, line, ruleID).
	rule := rules.Rule{
		APIVersion: rules.APIVersion,
		ID:         "overlap",
		Category:   "injection",
		Severity:   "high",
		Languages:  []string{"javascript"},
		Detectors: []rules.Detector{
			{ID: "d1", Kind: rules.DetectorContains, Pattern: "dangerzone"},
			{ID: "d2", Kind: rules.DetectorRegex, Pattern: `dangerzone`},
		},
	}
	reg, err := rules.Build([]rules.Rule{rule}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	report, err := Run(context.Background(), Options{Root: root, Registry: reg})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Findings) != 1 {
		t.Fatalf("expected dedup to one finding, got %+v", report.Findings)
	}
}

func TestRun_ExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.js", "eval(x)\n")
	writeFile(t, root, "test/fixture.js", "eval(x)\n")

	report, err := Run(context.Background(), Options{
		Root:     root,
		Registry: builtinRegistry(t),
		Excludes: []string{"test/**"},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range report.Findings {
		if f.File == "test/fixture.js" {
			t.Fatalf("excluded file was scanned: %+v", f)
		}
	}
	if report.FilesSkipped == 0 {
		t.Fatal("excluded file should count as skipped")
	}
}

func TestRun_LanguageFilter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.js", "eval(x)\n")
	writeFile(t, root, "app.py", "eval(x)\n")

	report, err := Run(context.Background(), Options{
		Root:      root,
		Registry:  builtinRegistry(t),
		Languages: []string{"python"},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range report.Findings {
		if f.Language != "python" {
			t.Fatalf("language filter leaked: %+v", f)
		}
	}
	if report.FilesScanned != 1 {
		t.Fatalf("files scanned = %d, want 1", report.FilesScanned)
	}

	if _, err := Run(context.Background(), Options{
		Root:      root,
		Registry:  builtinRegistry(t),
		Languages: []string{"fortran"},
	}); err == nil {
		t.Fatal("unknown language filter should be fatal")
	}
}

func TestRun_CancelledContextReturnsIncompletePartial(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.js", "b.js", "c.js"} {
		writeFile(t, root, name, "eval(x)\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Run(ctx, Options{Root: root, Registry: builtinRegistry(t)})
	if err != nil {
		t.Fatalf("cancelled scan must still return a report: %v", err)
	}
	if !report.Incomplete {
		t.Fatal("cancelled scan must be marked incomplete")
	}
}

func TestRun_MissingRootIsFatal(t *testing.T) {
	_, err := Run(context.Background(), Options{
		Root:     filepath.Join(t.TempDir(), "does-not-exist"),
		Registry: builtinRegistry(t),
	})
	if err == nil {
		t.Fatal("expected fatal error for missing root")
	}
}

func TestRun_SingleFileRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "only.js", "eval(x)\n")

	report, err := Run(context.Background(), Options{
		Root:     filepath.Join(root, "only.js"),
		Registry: builtinRegistry(t),
	})
	if err != nil {
		t.Fatal(err)
	}
	if report.FilesScanned != 1 || len(report.Findings) == 0 {
		t.Fatalf("single-file scan: scanned=%d findings=%d", report.FilesScanned, len(report.Findings))
	}
}
