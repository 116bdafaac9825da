package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/vizlab/internal/batch"
	"github.com/ziadkadry99/vizlab/internal/progress"
	"github.com/ziadkadry99/vizlab/internal/render"
)

var (
	renderFormat     string
	renderOutDir     string
	renderTheme      string
	renderFont       string
	renderScale      float64
	renderBackground string
	renderExclude    []string
)

var renderCmd = &cobra.Command{
	Use:   "render <file|dir|glob>...",
	Short: "Render Mermaid files to SVG or PNG",
	Long: `Renders each Mermaid source to an image next to it, or into --out.
Arguments may be files, directories (searched for .mmd and .mermaid files)
or glob patterns with ** support, e.g. 'docs/**/*.mmd'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		files, err := batch.Expand(args, renderExclude)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no Mermaid files found")
		}

		opts := cfg.DiagramOptions()
		if renderTheme != "" {
			opts.Theme = render.Theme(renderTheme)
		}
		if renderFont != "" {
			opts.FontFamily = renderFont
		}
		pngOpts := pngOptionsFromConfig(cfg)
		if cmd.Flags().Changed("scale") {
			pngOpts.Scale = renderScale
		}
		if renderBackground != "" {
			pngOpts.Background = renderBackground
		}

		results, err := batch.Run(cmd.Context(), createRendererFromConfig(cfg), batch.Job{
			Files:   files,
			Format:  batch.Format(renderFormat),
			OutDir:  renderOutDir,
			Options: opts,
			PNG:     pngOpts,
		}, progress.NewReporter())
		if err != nil {
			return err
		}

		ok := color.New(color.FgGreen).SprintFunc()
		bad := color.New(color.FgRed).SprintFunc()
		for _, r := range results {
			if r.Err != nil {
				fmt.Fprintf(os.Stderr, "%s %s: %v\n", bad("✗"), r.Input, r.Err)
				continue
			}
			fmt.Printf("%s %s -> %s\n", ok("✓"), r.Input, r.Output)
		}

		sum := batch.Summarize(results)
		fmt.Printf("\nRendered %d of %d diagram(s)\n", sum.Rendered, len(results))
		if sum.Failed > 0 {
			return fmt.Errorf("%d diagram(s) failed to render", sum.Failed)
		}
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "svg", "output format: svg or png")
	renderCmd.Flags().StringVarP(&renderOutDir, "out", "o", "", "output directory (default: next to each source)")
	renderCmd.Flags().StringVar(&renderTheme, "theme", "", "diagram theme (overrides diagram.theme)")
	renderCmd.Flags().StringVar(&renderFont, "font", "", "font family (overrides diagram.font_family)")
	renderCmd.Flags().Float64Var(&renderScale, "scale", 2, "PNG scale factor (overrides export.png_scale)")
	renderCmd.Flags().StringVar(&renderBackground, "background", "", "PNG background colour (overrides export.background)")
	renderCmd.Flags().StringSliceVar(&renderExclude, "exclude", nil, "glob patterns to skip")
	rootCmd.AddCommand(renderCmd)
}
