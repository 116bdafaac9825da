package batch

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ziadkadry99/vizlab/internal/export"
	"github.com/ziadkadry99/vizlab/internal/progress"
	"github.com/ziadkadry99/vizlab/internal/render"
)

type fakeRenderer struct {
	themes []render.Theme
}

func (f *fakeRenderer) Name() string { return "fake" }

func (f *fakeRenderer) Render(ctx context.Context, id, source string, cfg render.LibraryConfig) (string, error) {
	f.themes = append(f.themes, cfg.Theme)
	if !strings.HasPrefix(source, "graph") {
		return "", &render.SyntaxError{Message: "Parse error on line 1"}
	}
	return `<svg xmlns="http://www.w3.org/2000/svg" width="30" height="10"><rect width="30" height="10" fill="#ff0000"/></svg>`, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.mmd"), "graph TD")
	writeFile(t, filepath.Join(dir, "docs", "b.mermaid"), "graph TD")
	writeFile(t, filepath.Join(dir, "docs", "deep", "c.mmd"), "graph TD")
	writeFile(t, filepath.Join(dir, "docs", "notes.txt"), "not a diagram")
	writeFile(t, filepath.Join(dir, "node_modules", "x.mmd"), "graph TD")
	writeFile(t, filepath.Join(dir, "docs", "draft.mmd"), "graph TD")

	tests := []struct {
		name    string
		args    []string
		exclude []string
		want    []string
	}{
		{
			name: "directory",
			args: []string{dir},
			want: []string{"a.mmd", "docs/b.mermaid", "docs/deep/c.mmd", "docs/draft.mmd"},
		},
		{
			name: "doublestar glob",
			args: []string{filepath.Join(dir, "docs", "**", "*.mmd")},
			want: []string{"docs/deep/c.mmd", "docs/draft.mmd"},
		},
		{
			name:    "exclude by base name",
			args:    []string{dir},
			exclude: []string{"draft.*"},
			want:    []string{"a.mmd", "docs/b.mermaid", "docs/deep/c.mmd"},
		},
		{
			name: "explicit file with any extension",
			args: []string{filepath.Join(dir, "docs", "notes.txt")},
			want: []string{"docs/notes.txt"},
		},
		{
			name: "duplicates collapse",
			args: []string{filepath.Join(dir, "a.mmd"), filepath.Join(dir, "*.mmd")},
			want: []string{"a.mmd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.args, tt.exclude)
			if err != nil {
				t.Fatalf("Expand: %v", err)
			}
			var rel []string
			for _, g := range got {
				r, _ := filepath.Rel(dir, g)
				rel = append(rel, filepath.ToSlash(r))
			}
			if strings.Join(rel, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", rel, tt.want)
			}
		})
	}
}

func TestExpandNoMatch(t *testing.T) {
	_, err := Expand([]string{filepath.Join(t.TempDir(), "*.mmd")}, nil)
	if err == nil {
		t.Fatal("expected error for pattern with no matches")
	}
}

func TestRunSVG(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.mmd")
	bad := filepath.Join(dir, "bad.mmd")
	empty := filepath.Join(dir, "empty.mmd")
	writeFile(t, good, "graph TD; A-->B;")
	writeFile(t, bad, "nonsense")
	writeFile(t, empty, "  \n")

	r := &fakeRenderer{}
	var log bytes.Buffer
	opts := render.DefaultOptions()
	opts.Theme = render.ThemeForest

	results, err := Run(context.Background(), r, Job{
		Files:   []string{bad, empty, good},
		Format:  FormatSVG,
		Options: opts,
	}, &progress.CIReporter{Out: &log})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if s := Summarize(results); s.Rendered != 1 || s.Failed != 2 {
		t.Errorf("summary = %+v, want 1 rendered, 2 failed", s)
	}

	var syn *render.SyntaxError
	if !errors.As(results[0].Err, &syn) {
		t.Errorf("bad.mmd error = %v, want SyntaxError", results[0].Err)
	}
	if results[1].Err == nil {
		t.Error("empty.mmd should fail")
	}

	data, err := os.ReadFile(filepath.Join(dir, "good.svg"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.HasPrefix(string(data), "<svg") {
		t.Errorf("output = %q", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.svg")); !os.IsNotExist(err) {
		t.Error("no output should be written for a failed render")
	}

	for _, th := range r.themes {
		if th != render.ThemeForest {
			t.Errorf("rendered with theme %q, want forest", th)
		}
	}
	if !strings.Contains(log.String(), "[3/3] good.mmd") {
		t.Errorf("progress log = %q", log.String())
	}
}

func TestRunPNGIntoOutDir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "flow.mmd")
	writeFile(t, src, "graph LR; X-->Y;")
	out := filepath.Join(dir, "out")

	results, err := Run(context.Background(), &fakeRenderer{}, Job{
		Files:   []string{src},
		Format:  FormatPNG,
		OutDir:  out,
		Options: render.DefaultOptions(),
		PNG:     export.PNGOptions{Scale: 3},
	}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results[0].Err != nil {
		t.Fatalf("render failed: %v", results[0].Err)
	}
	if results[0].Output != filepath.Join(out, "flow.png") {
		t.Errorf("output = %q", results[0].Output)
	}

	f, err := os.Open(results[0].Output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 90 || b.Dy() != 30 {
		t.Errorf("size = %dx%d, want 90x30", b.Dx(), b.Dy())
	}
}

func TestRunOutDirNameConflict(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a", "flow.mmd")
	second := filepath.Join(dir, "b", "flow.mmd")
	writeFile(t, first, "graph LR; X-->Y;")
	writeFile(t, second, "graph TD; P-->Q;")
	out := filepath.Join(dir, "out")

	r := &fakeRenderer{}
	results, err := Run(context.Background(), r, Job{
		Files:   []string{first, second},
		Format:  FormatSVG,
		OutDir:  out,
		Options: render.DefaultOptions(),
	}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if results[0].Err != nil {
		t.Errorf("first source failed: %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, ErrOutputConflict) {
		t.Errorf("second source err = %v, want ErrOutputConflict", results[1].Err)
	}
	if !strings.Contains(results[1].Err.Error(), first) {
		t.Errorf("conflict error should name the first source: %v", results[1].Err)
	}
	if s := Summarize(results); s.Rendered != 1 || s.Failed != 1 {
		t.Errorf("summary = %+v, want 1 rendered, 1 failed", s)
	}
	if len(r.themes) != 1 {
		t.Errorf("renderer called %d times, want 1", len(r.themes))
	}
}

func TestRunRejectsInvalidJob(t *testing.T) {
	tests := []struct {
		name string
		job  Job
	}{
		{"format", Job{Format: "gif", Options: render.DefaultOptions()}},
		{"theme", Job{Format: FormatSVG, Options: render.Options{Theme: "sepia", FontFamily: "Inter"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Run(context.Background(), &fakeRenderer{}, tt.job, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mmd")
	writeFile(t, src, "graph TD")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := Run(ctx, &fakeRenderer{}, Job{Files: []string{src}, Format: FormatSVG, Options: render.DefaultOptions()}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestOutputPath(t *testing.T) {
	if got := outputPath(filepath.Join("docs", "a.mmd"), "", FormatSVG); got != filepath.Join("docs", "a.svg") {
		t.Errorf("got %q", got)
	}
	if got := outputPath(filepath.Join("docs", "a.mermaid"), "out", FormatPNG); got != filepath.Join("out", "a.png") {
		t.Errorf("got %q", got)
	}
}
