package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const shapesSource = `package lib

// <summary>Shape is a plane figure.</summary>
type Shape interface {
	// <summary>Area returns the area.</summary>
	Area() float64
}

// <summary>Base holds shared state.</summary>
type Base struct{}

// Square is a shape with equal sides.
type Square struct {
	Base
	Side float64
}

// <inheritdoc/>
func (s Square) Area() float64 { return s.Side * s.Side }
`

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "lib"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "lib", "shapes.go"), []byte(shapesSource), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile, rootDir, logLevel = "", "", ""
	resolveYAML, resolveTree, showJSON, checkVerbose = false, false, false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestResolveCommand(t *testing.T) {
	dir := writeProject(t)

	out, err := run(t, "-d", dir, "resolve", "M:lib.Square.Area")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	var got struct {
		ID      string `json:"id"`
		Summary []struct {
			Kind  string `json:"kind"`
			Value string `json:"value"`
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.ID != "M:lib.Square.Area" || len(got.Summary) != 1 || got.Summary[0].Value != "Area returns the area." {
		t.Errorf("resolve output = %s", out)
	}

	out, err = run(t, "-d", dir, "resolve", "--yaml", "T:lib.Shape")
	if err != nil {
		t.Fatalf("resolve --yaml failed: %v", err)
	}
	if !strings.Contains(out, "id: T:lib.Shape") || !strings.Contains(out, "value: Shape is a plane figure.") {
		t.Errorf("resolve --yaml output = %s", out)
	}

	out, err = run(t, "-d", dir, "resolve", "--tree", "M:lib.Square.Area")
	if err != nil {
		t.Fatalf("resolve --tree failed: %v", err)
	}
	want := "M:lib.Shape.Area\n└─ summary\n\nM:lib.Square.Area\n└> M:lib.Shape.Area\n"
	if out != want {
		t.Errorf("resolve --tree output =\n%s\nwant\n%s", out, want)
	}
}

func TestIndexAndShow(t *testing.T) {
	dir := writeProject(t)

	if _, err := run(t, "-d", dir, "index"); err != nil {
		t.Fatalf("index failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".refdocs", "docs.db")); err != nil {
		t.Fatalf("docs.db not created: %v", err)
	}

	out, err := run(t, "-d", dir, "show", "T:lib.Square")
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	want := "T:lib.Square\n\n  Summary:\n    Square is a shape with equal sides.\n"
	if out != want {
		t.Errorf("show output =\n%q\nwant\n%q", out, want)
	}

	if _, err := run(t, "-d", dir, "show", "T:lib.Missing"); err == nil {
		t.Error("show of unknown id succeeded")
	}

	// A second run reuses the store.
	if _, err := run(t, "-d", dir, "index"); err != nil {
		t.Fatalf("second index failed: %v", err)
	}
}

func TestCheckCommand(t *testing.T) {
	dir := writeProject(t)

	out, err := run(t, "-d", dir, "check")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out, "0 errors") {
		t.Errorf("check output = %q", out)
	}

	broken := "package lib\n\n// <summary>Broken\nfunc Broken() {}\n"
	if err := os.WriteFile(filepath.Join(dir, "lib", "broken.go"), []byte(broken), 0644); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, "-d", dir, "check", "-v")
	if err == nil {
		t.Fatal("check succeeded with a malformed comment")
	}
	if !strings.Contains(out, "M:lib.Broken: error [malformed_comment]") {
		t.Errorf("check -v output = %q", out)
	}
}
