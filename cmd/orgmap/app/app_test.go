package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agentstation/orgmap/pkg/config"
)

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	resetViper(t)
	logger := zerolog.Nop()
	app, err := New("1.0.0", "abc123", "2026-01-01", "test", WithLogger(&logger), WithMergeConfig(cfg))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return app
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func exampleFiles(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	return []string{
		writeFile(t, dir, "a.yaml", `- local_id: "1"
  name: US Government
- local_id: "2"
  name: Department of Example
  parent_local_id: "1"
`),
		writeFile(t, dir, "b.csv", "local_id,name,parent_local_id\n1,USG,\n2,Dept. of Example,1\n"),
	}
}

func run(t *testing.T, app *App, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := app.createRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app := newTestApp(t, config.Default())

	if app.Version() != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", app.Version())
	}
	if app.Commit() != "abc123" {
		t.Errorf("Commit() = %s, want abc123", app.Commit())
	}
	if app.Date() != "2026-01-01" {
		t.Errorf("Date() = %s, want 2026-01-01", app.Date())
	}
	if app.BuiltBy() != "test" {
		t.Errorf("BuiltBy() = %s, want test", app.BuiltBy())
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if app.Config() == nil {
		t.Error("Config() returned nil")
	}
}

// TestApp_MergeConfig_Copies verifies callers cannot mutate the cached config.
func TestApp_MergeConfig_Copies(t *testing.T) {
	app := newTestApp(t, config.Default())

	first, err := app.MergeConfig()
	if err != nil {
		t.Fatalf("MergeConfig() failed: %v", err)
	}
	first.Threshold = 0.1

	second, err := app.MergeConfig()
	if err != nil {
		t.Fatalf("MergeConfig() failed: %v", err)
	}
	if second.Threshold != config.Default().Threshold {
		t.Errorf("Threshold = %v, cached config was mutated", second.Threshold)
	}
}

// TestApp_MergeConfig_Concurrent verifies lazy loading is race free.
func TestApp_MergeConfig_Concurrent(t *testing.T) {
	resetViper(t)
	logger := zerolog.Nop()
	app, err := New("1.0.0", "test", "2026-01-01", "test", WithLogger(&logger))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	app.config.ConfigFile = ""

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := app.MergeConfig(); err != nil {
				t.Errorf("MergeConfig() failed: %v", err)
			}
		}()
	}
	wg.Wait()
}

// TestApp_Sources verifies configured sources come before path sources.
func TestApp_Sources(t *testing.T) {
	files := exampleFiles(t)
	cfg := config.Default()
	cfg.Sources = []config.SourceSpec{{ID: "usg", Path: files[0]}}
	app := newTestApp(t, cfg)

	srcs, err := app.Sources(files[1])
	if err != nil {
		t.Fatalf("Sources() failed: %v", err)
	}
	if len(srcs) != 2 {
		t.Fatalf("len(Sources()) = %d, want 2", len(srcs))
	}
	if srcs[0].ID() != "usg" || srcs[1].ID() != "b" {
		t.Errorf("ids = %s, %s, want usg, b", srcs[0].ID(), srcs[1].ID())
	}
}

// TestExecute_Version verifies the version command output.
func TestExecute_Version(t *testing.T) {
	app := newTestApp(t, config.Default())

	stdout, _, err := run(t, app, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if stdout != "orgmap 1.0.0\n" {
		t.Errorf("version output = %q", stdout)
	}
}

// TestExecute_Merge runs a merge end to end over files on disk.
func TestExecute_Merge(t *testing.T) {
	app := newTestApp(t, config.Default())
	files := exampleFiles(t)

	stdout, stderr, err := run(t, app, "merge", "--quiet", files[0], files[1])
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	want := "US Government [a:1] (a, b)\n  Department of Example [a:2] (a, b)\n"
	if stdout != want {
		t.Errorf("merge output:\n%s\nwant:\n%s", stdout, want)
	}
	if stderr != "" {
		t.Errorf("quiet merge wrote to stderr: %q", stderr)
	}
}

// TestExecute_MergeWritesReport verifies --out and --report files.
func TestExecute_MergeWritesReport(t *testing.T) {
	app := newTestApp(t, config.Default())
	files := exampleFiles(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "merged.json")
	report := filepath.Join(dir, "report.yaml")

	_, stderr, err := run(t, app, "merge", "-o", "json", "--out", out, "--report", report, files[0], files[1])
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if !strings.Contains(stderr, "4 records from 2 sources") {
		t.Errorf("summary missing from stderr: %q", stderr)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"name": "Department of Example"`) {
		t.Errorf("json export missing merged node:\n%s", data)
	}

	data, err = os.ReadFile(report)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "orgmap-normalize/1") {
		t.Errorf("report missing algorithm versions:\n%s", data)
	}
}

// TestExecute_MergeNoSources verifies a run without sources fails.
func TestExecute_MergeNoSources(t *testing.T) {
	app := newTestApp(t, config.Default())

	if _, _, err := run(t, app, "merge"); err == nil {
		t.Fatal("merge without sources should fail")
	}
}

// TestExecute_Diff verifies diff against a saved tree.
func TestExecute_Diff(t *testing.T) {
	app := newTestApp(t, config.Default())
	files := exampleFiles(t)
	saved := writeFile(t, t.TempDir(), "last.txt", "US Government [a:1] (a, b)\n")

	stdout, _, err := run(t, app, "diff", "--quiet", saved, files[0], files[1])
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	if !strings.Contains(stdout, "+  Department of Example [a:2] (a, b)") {
		t.Errorf("diff output:\n%s", stdout)
	}
}

// TestExecute_ValidateFails verifies an excluded source fails validation.
func TestExecute_ValidateFails(t *testing.T) {
	app := newTestApp(t, config.Default())
	dir := t.TempDir()
	cyclic := writeFile(t, dir, "c.csv", "local_id,name,parent_local_id\nx,Loop One,y\ny,Loop Two,x\n")

	stdout, _, err := run(t, app, "validate", "-o", "table", exampleFiles(t)[0], cyclic)
	if err == nil {
		t.Fatal("validate should fail when a source is excluded")
	}
	if !strings.Contains(stdout, "excluded") {
		t.Errorf("validate output missing excluded row:\n%s", stdout)
	}
}
