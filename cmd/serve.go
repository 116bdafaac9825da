package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/vizlab/internal/db"
	"github.com/ziadkadry99/vizlab/internal/editor"
	"github.com/ziadkadry99/vizlab/internal/render"
	"github.com/ziadkadry99/vizlab/internal/server"
	"github.com/ziadkadry99/vizlab/internal/snapshot"
	"github.com/ziadkadry99/vizlab/internal/workspace"
)

var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the diagram editor web server",
	Long: `Starts the editor web server. Open the printed address in a browser to
edit a Mermaid diagram with live rendering, AI generation, repair and
suggestions, local save/load and SVG/PNG export.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}

		database, err := db.OpenDir(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		assistant, err := createAssistantFromConfig(cfg)
		if err != nil {
			// The editor still works without AI; the AI actions report it.
			fmt.Fprintf(os.Stderr, "Warning: AI features disabled: %v\n", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		renderer := createRendererFromConfig(cfg)
		canvas := render.NewCanvas(ctx, renderer, time.Duration(cfg.Editor.SettleMS)*time.Millisecond)
		store := snapshot.NewStore(database, cfg.DiagramOptions())

		ws, err := workspace.New(ctx, workspace.Config{
			Canvas:    canvas,
			Store:     store,
			Assistant: assistant,
			Debounce:  time.Duration(cfg.Editor.DebounceMS) * time.Millisecond,
			PNGScale:  cfg.Export.PNGScale,
		})
		if err != nil {
			return fmt.Errorf("creating workspace: %w", err)
		}
		defer ws.Close()

		srv := server.New(server.Config{
			Host:     serveHost,
			Port:     cfg.Server.Port,
			AllowAll: cfg.Server.AllowAllOrigins,
		}, database)
		editor.New(ws, cfg.Export.Background).RegisterRoutes(srv.Router())

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		host := serveHost
		if host == "" {
			host = "localhost"
		}
		fmt.Fprintf(os.Stderr, "vizlab %s editor on http://%s:%d\n", Version, host, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", database.Path())
		fmt.Fprintf(os.Stderr, "  Renderer: %s\n", renderer.Name())
		if assistant != nil {
			fmt.Fprintf(os.Stderr, "  AI provider: %s (%s)\n", cfg.Provider, cfg.Model)
		}

		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 9002, "port to listen on (overrides server.port)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "interface to bind (default all)")
	rootCmd.AddCommand(serveCmd)
}
