package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/kbukum/cloudstore/errors"
	"github.com/kbukum/cloudstore/version"
)

// execute runs the CLI with args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// isolate keeps the user's config files and environment out of the test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	return t.TempDir()
}

func localArgs(root, bucket string, args ...string) []string {
	return append([]string{"--provider", "local", "--local-root", root, "--bucket", bucket}, args...)
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCLI_PutListCatGet(t *testing.T) {
	root := isolate(t)
	src := writeTemp(t, "data.csv", "name,size\na,1\nb,2\n")

	out, err := execute(t, localArgs(root, "src", "put", src, "--folder", "in")...)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if strings.TrimSpace(out) != "in/data.csv" {
		t.Errorf("put printed %q", out)
	}

	out, err = execute(t, localArgs(root, "src", "ls", "in")...)
	if err != nil {
		t.Fatalf("ls: %v", err)
	}
	if out != "in/data.csv\n" {
		t.Errorf("ls printed %q", out)
	}

	out, err = execute(t, localArgs(root, "src", "cat", "data.csv", "--folder", "in")...)
	if err != nil {
		t.Fatalf("cat: %v", err)
	}
	if out != "name,size\na,1\nb,2\n" {
		t.Errorf("cat printed %q", out)
	}

	target := filepath.Join(t.TempDir(), "copy.csv")
	out, err = execute(t, localArgs(root, "src", "get", "data.csv", target, "--folder", "in")...)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if strings.TrimSpace(out) != target {
		t.Errorf("get printed %q, want %q", out, target)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "name,size\na,1\nb,2\n" {
		t.Errorf("downloaded %q", data)
	}
}

func TestCLI_CatDocuments(t *testing.T) {
	root := isolate(t)
	doc := writeTemp(t, "settings.json", `{"region":"eu-west-1"}`)
	if _, err := execute(t, localArgs(root, "cfg", "put", doc)...); err != nil {
		t.Fatalf("put: %v", err)
	}

	out, err := execute(t, localArgs(root, "cfg", "cat", "settings.json", "--format", "yaml")...)
	if err != nil {
		t.Fatalf("cat as yaml: %v", err)
	}
	if strings.TrimSpace(out) != "region: eu-west-1" {
		t.Errorf("cat printed %q", out)
	}

	out, err = execute(t, localArgs(root, "cfg", "cat", "settings.json", "-f", "raw")...)
	if err != nil {
		t.Fatalf("cat raw: %v", err)
	}
	if out != `{"region":"eu-west-1"}` {
		t.Errorf("cat raw printed %q", out)
	}

	if _, err := execute(t, localArgs(root, "cfg", "cat", "settings.json", "-f", "toml")...); err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("expected unknown format error, got %v", err)
	}
}

func TestCLI_CatMissingObject(t *testing.T) {
	root := isolate(t)
	_, err := execute(t, localArgs(root, "src", "cat", "missing.txt")...)
	if !errors.IsNotFound(err) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestCLI_MoveAndCopy(t *testing.T) {
	root := isolate(t)
	for _, name := range []string{"a.csv", "b.csv", "notes.txt"} {
		p := writeTemp(t, name, name)
		if _, err := execute(t, localArgs(root, "src", "put", p, "--folder", "in")...); err != nil {
			t.Fatalf("put %s: %v", name, err)
		}
	}

	out, err := execute(t, localArgs(root, "dst", "mb")...)
	if err != nil {
		t.Fatalf("mb: %v", err)
	}
	if strings.TrimSpace(out) != "local://dst" {
		t.Errorf("mb printed %q", out)
	}

	out, err = execute(t, localArgs(root, "src", "cp", "dst", "--folder", "in", "--ext", "csv")...)
	if err != nil {
		t.Fatalf("cp: %v", err)
	}
	if strings.TrimSpace(out) != "2 object(s) -> dst" {
		t.Errorf("cp printed %q", out)
	}

	out, err = execute(t, localArgs(root, "src", "mv", "dst", "in/notes.txt", "--rename", "archive/notes.txt")...)
	if err != nil {
		t.Fatalf("mv: %v", err)
	}
	if strings.TrimSpace(out) != "1 object(s) -> dst" {
		t.Errorf("mv printed %q", out)
	}

	out, err = execute(t, localArgs(root, "dst", "ls")...)
	if err != nil {
		t.Fatalf("ls dst: %v", err)
	}
	if want := "archive/notes.txt\nin/a.csv\nin/b.csv\n"; out != want {
		t.Errorf("dst holds %q, want %q", out, want)
	}

	out, err = execute(t, localArgs(root, "src", "ls", "in")...)
	if err != nil {
		t.Fatalf("ls src: %v", err)
	}
	if want := "in/a.csv\nin/b.csv\n"; out != want {
		t.Errorf("src holds %q, want %q", out, want)
	}
}

func TestCLI_CopySummaryCountsCopiedKeys(t *testing.T) {
	root := isolate(t)
	p := writeTemp(t, "a.csv", "a")
	if _, err := execute(t, localArgs(root, "src", "put", p)...); err != nil {
		t.Fatalf("put: %v", err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"key onto itself", []string{"cp", "src", "a.csv"}, "0 object(s) -> src"},
		{"listing onto itself", []string{"cp", "src"}, "0 object(s) -> src"},
		{"renamed in place", []string{"cp", "src", "a.csv", "--rename", "b.csv"}, "1 object(s) -> src"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := execute(t, localArgs(root, "src", tc.args...)...)
			if err != nil {
				t.Fatal(err)
			}
			if strings.TrimSpace(out) != tc.want {
				t.Errorf("printed %q, want %q", out, tc.want)
			}
		})
	}
}

func TestCLI_RenameNeedsOneKey(t *testing.T) {
	root := isolate(t)
	_, err := execute(t, localArgs(root, "src", "cp", "dst", "a", "b", "--rename", "c")...)
	if err == nil || !strings.Contains(err.Error(), "exactly one key") {
		t.Fatalf("expected rename error, got %v", err)
	}
}

func TestCLI_ConfigFile(t *testing.T) {
	root := isolate(t)
	cfgFile := writeTemp(t, "cloudstore.yml", "storage:\n  provider: local\n  bucket: fromfile\n  local:\n    root: "+root+"\n")

	if _, err := execute(t, "--config", cfgFile, "ls"); err != nil {
		t.Fatalf("ls with config file: %v", err)
	}
	if info, err := os.Stat(filepath.Join(root, "fromfile")); err != nil || !info.IsDir() {
		t.Errorf("expected bucket directory from config file, got %v", err)
	}

	if _, err := execute(t, "--config", filepath.Join(root, "missing.yml"), "ls"); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestCLI_ValidationErrors(t *testing.T) {
	root := isolate(t)
	tests := []struct {
		name string
		args []string
	}{
		{"no bucket", []string{"--provider", "local", "--local-root", root, "ls"}},
		{"unknown provider", []string{"--provider", "ftp", "--bucket", "b", "ls"}},
		{"delegated without policy", []string{"--provider", "s3", "--bucket", "b", "--delegated", "ls"}},
		{"bad part size", localArgs(root, "b", "--part-size", "8XB", "ls")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := execute(t, tc.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestCLI_Version(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version.Get().Short() {
		t.Errorf("version printed %q", out)
	}

	out, err = execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{"azure", "gcs", "local", "memory", "s3"} {
		if !strings.Contains(out, p) {
			t.Errorf("expected provider %s in %q", p, out)
		}
	}
}

func TestFormatFromName(t *testing.T) {
	tests := map[string]string{
		"a.csv":     "csv",
		"b.XLSX":    "excel",
		"c.parquet": "parquet",
		"d.yml":     "yaml",
		"e.yaml":    "yaml",
		"f.json":    "json",
		"g.bin":     "raw",
		"no-ext":    "raw",
		"dir.csv/x": "raw",
	}
	for name, want := range tests {
		if got := formatFromName(name); got != want {
			t.Errorf("formatFromName(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	isolate(t)
	opts := &globalOptions{}
	cmd := &cobra.Command{Use: "test"}
	opts.register(cmd)
	err := cmd.ParseFlags([]string{
		"--provider", "s3", "--bucket", "data", "--region", "eu-west-1",
		"--part-size", "8MiB", "--concurrency", "3", "--endpoint", "http://localhost:9000", "-v",
	})
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	s := cfg.Storage
	if s.Provider != "s3" || s.Bucket != "data" || s.AWS.Region != "eu-west-1" {
		t.Errorf("unexpected storage config %+v", s)
	}
	if s.Transfer.PartSize != 8<<20 || s.Transfer.Concurrency != 3 {
		t.Errorf("unexpected transfer config %+v", s.Transfer)
	}
	if s.AWS.Endpoint != "http://localhost:9000" || s.GCP.Endpoint != "http://localhost:9000" {
		t.Errorf("endpoint not applied: %q %q", s.AWS.Endpoint, s.GCP.Endpoint)
	}
	if cfg.Logging.Level != "debug" || cfg.Name != appName {
		t.Errorf("unexpected service config %+v", cfg.ServiceConfig)
	}
}

func TestLoadConfig_QuietByDefault(t *testing.T) {
	isolate(t)
	opts := &globalOptions{}
	cmd := &cobra.Command{Use: "test"}
	opts.register(cmd)
	if err := cmd.ParseFlags([]string{"--provider", "memory", "--bucket", "b"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected warn level without -v, got %q", cfg.Logging.Level)
	}
	if cfg.Telemetry.Endpoint != "" {
		t.Errorf("telemetry should be off by default, got %q", cfg.Telemetry.Endpoint)
	}
}
