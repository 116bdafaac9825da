// Package batch renders many Mermaid source files to SVG or PNG in one run.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ziadkadry99/vizlab/internal/export"
	"github.com/ziadkadry99/vizlab/internal/progress"
	"github.com/ziadkadry99/vizlab/internal/render"
)

// Format is the output file type.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ErrOutputConflict is recorded for a source whose output path was already
// claimed by an earlier source in the same run.
var ErrOutputConflict = errors.New("batch: output path conflict")

// Job describes one batch run.
type Job struct {
	Files   []string
	Format  Format
	OutDir  string // empty writes each output next to its source
	Options render.Options
	PNG     export.PNGOptions
}

// Result is the outcome for a single source file.
type Result struct {
	Input  string
	Output string
	Err    error
}

// Summary counts the results of a run.
type Summary struct {
	Rendered int
	Failed   int
}

// Summarize counts successes and failures.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
		} else {
			s.Rendered++
		}
	}
	return s
}

// Run renders every file in the job sequentially. A failure on one file is
// recorded in its Result and does not stop the run; only a cancelled context
// or an invalid job aborts early. Sources that map to the same output path
// (same base name with OutDir set) are rendered once; later ones fail with
// ErrOutputConflict instead of overwriting.
func Run(ctx context.Context, r render.Renderer, job Job, rep progress.Reporter) ([]Result, error) {
	if job.Format != FormatSVG && job.Format != FormatPNG {
		return nil, fmt.Errorf("batch: unsupported format %q", job.Format)
	}
	if err := job.Options.Validate(); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	if rep == nil {
		rep = progress.Nop{}
	}
	if job.OutDir != "" {
		if err := os.MkdirAll(job.OutDir, 0755); err != nil {
			return nil, fmt.Errorf("batch: create output dir: %w", err)
		}
	}

	cfg := job.Options.Config()
	results := make([]Result, 0, len(job.Files))
	// written maps each output path to the source that claimed it first.
	written := make(map[string]string, len(job.Files))

	rep.Start(len(job.Files))
	defer rep.Finish()

	for i, file := range job.Files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		rep.Update(i+1, filepath.Base(file))

		res := Result{Input: file, Output: outputPath(file, job.OutDir, job.Format)}
		key := filepath.Clean(res.Output)
		if first, ok := written[key]; ok {
			res.Err = fmt.Errorf("%w: %s is already the output of %s", ErrOutputConflict, res.Output, first)
		} else {
			written[key] = file
			res.Err = renderFile(ctx, r, cfg, job, file, res.Output)
		}
		if res.Err != nil {
			log.Printf("batch: %s: %v", file, res.Err)
		}
		results = append(results, res)
	}

	return results, nil
}

func renderFile(ctx context.Context, r render.Renderer, cfg render.LibraryConfig, job Job, in, out string) error {
	src, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if strings.TrimSpace(string(src)) == "" {
		return errors.New("empty source")
	}

	svg, err := r.Render(ctx, render.NewRenderID(), string(src), cfg)
	if err != nil {
		return err
	}

	var d export.Download
	switch job.Format {
	case FormatPNG:
		d, err = export.PNG(svg, job.PNG)
	default:
		d, err = export.SVG(svg)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(out, d.Data, 0644); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// outputPath swaps the source extension for the format's and places the
// file in outDir when given.
func outputPath(in, outDir string, f Format) string {
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)) + "." + string(f)
	if outDir == "" {
		return filepath.Join(filepath.Dir(in), base)
	}
	return filepath.Join(outDir, base)
}
