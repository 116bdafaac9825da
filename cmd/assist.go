package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/vizlab/internal/assist"
	"github.com/ziadkadry99/vizlab/internal/config"
)

var generateOut string

var generateCmd = &cobra.Command{
	Use:   "generate <description>",
	Short: "Generate Mermaid code from a description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := assistantForCLI()
		if err != nil {
			return err
		}

		out, err := a.Generate(cmd.Context(), assist.GenerateInput{Description: strings.Join(args, " ")})
		if err != nil {
			return cliFlowError("Generation", err)
		}

		if generateOut != "" {
			if err := os.WriteFile(generateOut, []byte(out.Code+"\n"), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", generateOut, err)
			}
			fmt.Fprintf(os.Stderr, "%s %s\n", color.GreenString("Diagram written to"), generateOut)
			return nil
		}
		fmt.Println(out.Code)
		return nil
	},
}

var repairWrite bool

var repairCmd = &cobra.Command{
	Use:   "repair [file]",
	Short: "Fix syntax errors in Mermaid code",
	Long:  `Repairs the Mermaid code in the given file, or read from stdin. The repaired code goes to stdout unless --write is set.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := readSource(args)
		if err != nil {
			return err
		}
		a, err := assistantForCLI()
		if err != nil {
			return err
		}

		out, err := a.Repair(cmd.Context(), assist.RepairInput{Code: code})
		status := assist.RepairStatus(out, err)
		printStatus(status)
		if err != nil {
			return cliFlowError("Repair", err)
		}

		if repairWrite && len(args) == 1 {
			if err := os.WriteFile(args[0], []byte(out.RepairedCode+"\n"), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", args[0], err)
			}
			return nil
		}
		fmt.Println(out.RepairedCode)
		return nil
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest [file]",
	Short: "Suggest completions for partial Mermaid code",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix, err := readSource(args)
		if err != nil {
			return err
		}
		a, err := assistantForCLI()
		if err != nil {
			return err
		}

		out, err := a.Suggest(cmd.Context(), assist.SuggestInput{CodePrefix: prefix})
		if err != nil {
			return cliFlowError("Suggestion", err)
		}
		if len(out.Suggestions) == 0 {
			fmt.Fprintln(os.Stderr, "No suggestions.")
			return nil
		}

		header := color.New(color.FgCyan, color.Bold).SprintFunc()
		for i, s := range out.Suggestions {
			fmt.Printf("%s\n%s\n\n", header(fmt.Sprintf("--- Suggestion %d ---", i+1)), s)
		}
		return nil
	},
}

func assistantForCLI() (*assist.Assistant, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := createAssistantFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w\nSet %s or choose another provider with `vizlab init`", err, config.APIKeyEnvVar(cfg.Provider))
	}
	return a, nil
}

// readSource reads the file named by args[0], or stdin when no file is given.
func readSource(args []string) (string, error) {
	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return "", fmt.Errorf("reading source: %w", err)
	}
	return string(data), nil
}

func printStatus(s assist.Status) {
	var c *color.Color
	switch s.Kind {
	case assist.StatusSuccess:
		c = color.New(color.FgGreen)
	case assist.StatusError:
		c = color.New(color.FgRed)
	default:
		c = color.New(color.FgBlue)
	}
	c.Fprintln(os.Stderr, s.Message)
}

func cliFlowError(what string, err error) error {
	if errors.Is(err, assist.ErrEmptyInput) {
		return fmt.Errorf("%s: the input is empty", strings.ToLower(what))
	}
	return fmt.Errorf("%s failed: %w", what, err)
}

func init() {
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "write the diagram to this file")
	repairCmd.Flags().BoolVarP(&repairWrite, "write", "w", false, "overwrite the input file with the repaired code")
	rootCmd.AddCommand(generateCmd, repairCmd, suggestCmd)
}
