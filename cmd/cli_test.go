package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir from newer Go releases.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

// isolate keeps scan runs away from the developer's real config and
// suppression files.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())
}

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExecuteUnknownCommand(t *testing.T) {
	code, err := Execute([]string{"frobnicate"})
	if code != ExitFatal || err == nil {
		t.Fatalf("code=%d err=%v, want fatal", code, err)
	}
}

func TestExecuteMissingCommand(t *testing.T) {
	code, err := Execute(nil)
	if code != ExitFatal || err == nil {
		t.Fatalf("code=%d err=%v, want fatal", code, err)
	}
}

func TestExecuteVersion(t *testing.T) {
	code, err := Execute([]string{"version"})
	if code != ExitClean || err != nil {
		t.Fatalf("code=%d err=%v", code, err)
	}
}

func TestExecuteHelp(t *testing.T) {
	code, err := Execute([]string{"help"})
	if code != ExitClean || err != nil {
		t.Fatalf("code=%d err=%v", code, err)
	}
}

func TestScanFindingsExitOne(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFile(t, root, "db.js", `const q = "SELECT * FROM users WHERE name = '" + name + "'";`+"\n")

	code, err := Execute([]string{"scan", root})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if code != ExitFindings {
		t.Fatalf("code = %d, want %d", code, ExitFindings)
	}
}

func TestScanCleanExitZero(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFile(t, root, "session.js", `res.cookie('sid', id, {httpOnly:true, secure:true, sameSite:'strict'})`+"\n")

	code, err := Execute([]string{"scan", root})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if code != ExitClean {
		t.Fatalf("code = %d, want %d", code, ExitClean)
	}
}

func TestScanFailOnThreshold(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	// debug-enabled is medium severity.
	writeFile(t, root, "app.yaml", "debug: true\n")

	code, err := Execute([]string{"scan", root, "--fail-on", "critical"})
	if err != nil {
		t.Fatal(err)
	}
	if code != ExitClean {
		t.Fatalf("medium finding below critical threshold: code = %d", code)
	}

	code, err = Execute([]string{"scan", root, "--fail-on", "medium"})
	if err != nil {
		t.Fatal(err)
	}
	if code != ExitFindings {
		t.Fatalf("medium finding at medium threshold: code = %d", code)
	}
}

func TestScanJSONReportToFile(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFile(t, root, "app.js", "eval(payload)\n")
	outPath := filepath.Join(t.TempDir(), "report.json")

	code, err := Execute([]string{"scan", root, "--format", "json", "--out", outPath})
	if err != nil {
		t.Fatal(err)
	}
	if code != ExitFindings {
		t.Fatalf("code = %d", code)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"eval-usage"`) {
		t.Fatalf("report missing finding:\n%s", data)
	}
}

func TestScanInlineSuppression(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFile(t, root, "app.js", "// sentinel:ignore eval-usage -- sandboxed\neval(payload)\n")

	code, err := Execute([]string{"scan", root})
	if err != nil {
		t.Fatal(err)
	}
	if code != ExitClean {
		t.Fatalf("suppressed finding should not fail the scan: code = %d", code)
	}

	code, err = Execute([]string{"scan", root, "--no-suppress"})
	if err != nil {
		t.Fatal(err)
	}
	if code != ExitFindings {
		t.Fatalf("--no-suppress should surface the finding: code = %d", code)
	}
}

func TestScanMissingPathIsFatal(t *testing.T) {
	isolate(t)
	code, err := Execute([]string{"scan", filepath.Join(t.TempDir(), "nope")})
	if code != ExitFatal || err == nil {
		t.Fatalf("code=%d err=%v, want fatal", code, err)
	}
}

func TestScanUnknownFormatIsFatal(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFile(t, root, "a.js", "x\n")

	code, err := Execute([]string{"scan", root, "--format", "xml"})
	if code != ExitFatal || err == nil {
		t.Fatalf("code=%d err=%v, want fatal", code, err)
	}
}

func TestScanConflictingTUIFlags(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFile(t, root, "a.js", "x\n")

	code, err := Execute([]string{"scan", root, "--tui", "--no-tui"})
	if code != ExitFatal || err == nil {
		t.Fatalf("code=%d err=%v, want fatal", code, err)
	}
}

func TestScanConfigFileDefaults(t *testing.T) {
	isolate(t)
	repo := t.TempDir()
	chdir(t, repo)
	writeFile(t, repo, ".sentinel/config.yaml", "fail_on: critical\n")

	root := t.TempDir()
	writeFile(t, root, "app.yaml", "debug: true\n")

	code, err := Execute([]string{"scan", root})
	if err != nil {
		t.Fatal(err)
	}
	if code != ExitClean {
		t.Fatalf("config fail_on=critical should keep medium findings clean: code = %d", code)
	}

	// Flags still beat config.
	code, err = Execute([]string{"scan", root, "--fail-on", "low"})
	if err != nil {
		t.Fatal(err)
	}
	if code != ExitFindings {
		t.Fatalf("flag should override config: code = %d", code)
	}
}

func TestScanCustomRulesDir(t *testing.T) {
	isolate(t)
	rulesDir := t.TempDir()
	writeFile(t, rulesDir, "todo-marker.rule.yaml", `api_version: sentinel/v1
id: todo-marker
name: TODO marker
category: configuration
severity: info
languages: ["*"]
detectors:
  - id: fixme
    kind: contains
    pattern: "FIXME"
    message: "FIXME left in source"
`)

	root := t.TempDir()
	writeFile(t, root, "app.js", "// FIXME handle errors\n")

	code, err := Execute([]string{"scan", root, "--rules-dir", rulesDir, "--fail-on", "info"})
	if err != nil {
		t.Fatal(err)
	}
	if code != ExitFindings {
		t.Fatalf("custom rule should match: code = %d", code)
	}
}

func TestRulesListAndValidate(t *testing.T) {
	isolate(t)

	code, err := Execute([]string{"rules", "list"})
	if code != ExitClean || err != nil {
		t.Fatalf("rules list: code=%d err=%v", code, err)
	}

	code, err = Execute([]string{"rules", "validate"})
	if code != ExitClean || err != nil {
		t.Fatalf("rules validate: code=%d err=%v", code, err)
	}
}

func TestRulesValidateRejectsMalformed(t *testing.T) {
	isolate(t)
	rulesDir := t.TempDir()
	writeFile(t, rulesDir, "broken.rule.yaml", "api_version: sentinel/v1\nid: broken\n")

	code, err := Execute([]string{"rules", "validate", "--rules-dir", rulesDir})
	if code != ExitFatal || err == nil {
		t.Fatalf("code=%d err=%v, want fatal", code, err)
	}
}

func TestBadgeFromReport(t *testing.T) {
	isolate(t)
	reportPath := writeFile(t, t.TempDir(), "report.json", `{
  "root_path": "/repo",
  "findings": [],
  "counts_by_severity": {},
  "counts_by_category": {}
}`)
	outPath := filepath.Join(t.TempDir(), "badge.svg")

	code, err := Execute([]string{"badge", reportPath, "--out", outPath})
	if code != ExitClean || err != nil {
		t.Fatalf("badge: code=%d err=%v", code, err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "A+") {
		t.Fatalf("clean report should grade A+:\n%s", data)
	}
}

func TestBadgeMissingReportIsFatal(t *testing.T) {
	isolate(t)
	code, err := Execute([]string{"badge", filepath.Join(t.TempDir(), "nope.json")})
	if code != ExitFatal || err == nil {
		t.Fatalf("code=%d err=%v, want fatal", code, err)
	}
}

func TestListFlag(t *testing.T) {
	var f listFlag
	if err := f.Set("a, b"); err != nil {
		t.Fatal(err)
	}
	if err := f.Set("c"); err != nil {
		t.Fatal(err)
	}
	got := f.Values()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Values() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Values() = %v, want %v", got, want)
		}
	}
}
