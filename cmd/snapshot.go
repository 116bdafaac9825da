package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/vizlab/internal/db"
	"github.com/ziadkadry99/vizlab/internal/snapshot"
)

var snapshotOut string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage the locally saved diagram",
	Long:  `Reads and writes the diagram the editor saves locally, so it can be seeded from or exported to a file.`,
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save [file]",
	Short: "Save a Mermaid file (or stdin) as the local diagram",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readSource(args)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("nothing to save: the diagram is empty")
		}

		store, closeDB, err := openSnapshotStore()
		if err != nil {
			return err
		}
		defer closeDB()

		if err := store.SaveText(cmd.Context(), text); err != nil {
			return err
		}
		color.Green("Diagram Saved")
		return nil
	},
}

var snapshotLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Print the locally saved diagram",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeDB, err := openSnapshotStore()
		if err != nil {
			return err
		}
		defer closeDB()

		snap, err := store.Load(cmd.Context())
		if errors.Is(err, snapshot.ErrNoSnapshot) {
			return fmt.Errorf("no diagram found in local storage")
		}
		if err != nil {
			return err
		}

		if snapshotOut != "" {
			return os.WriteFile(snapshotOut, []byte(snap.Text), 0644)
		}
		fmt.Print(snap.Text)
		if !strings.HasSuffix(snap.Text, "\n") {
			fmt.Println()
		}
		return nil
	},
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved diagram options and save time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeDB, err := openSnapshotStore()
		if err != nil {
			return err
		}
		defer closeDB()

		opts, err := store.LoadOptions(cmd.Context())
		if err != nil {
			return err
		}

		label := color.New(color.Bold).SprintFunc()
		fmt.Printf("%s %s\n", label("Theme:"), opts.Theme)
		fmt.Printf("%s %s\n", label("Font family:"), opts.FontFamily)
		fmt.Printf("%s %t\n", label("Flowchart max width:"), opts.FlowchartUseMaxWidth)

		snap, err := store.Load(cmd.Context())
		switch {
		case errors.Is(err, snapshot.ErrNoSnapshot):
			fmt.Printf("%s none\n", label("Diagram:"))
		case err != nil:
			return err
		default:
			lines := strings.Count(strings.TrimRight(snap.Text, "\n"), "\n") + 1
			fmt.Printf("%s %d line(s), saved %s\n", label("Diagram:"), lines, snap.SavedAt.Local().Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func openSnapshotStore() (*snapshot.Store, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	database, err := db.OpenDir(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return snapshot.NewStore(database, cfg.DiagramOptions()), func() { database.Close() }, nil
}

func init() {
	snapshotLoadCmd.Flags().StringVarP(&snapshotOut, "out", "o", "", "write the diagram to this file")
	snapshotCmd.AddCommand(snapshotSaveCmd, snapshotLoadCmd, snapshotShowCmd)
	rootCmd.AddCommand(snapshotCmd)
}
