package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/lifeos/internal/app"
	"github.com/dori/lifeos/internal/board"
	"github.com/dori/lifeos/internal/config"
	"github.com/dori/lifeos/internal/db"
	"github.com/dori/lifeos/internal/logging"
	"github.com/dori/lifeos/internal/server"
	"github.com/dori/lifeos/internal/ui"
	"github.com/dori/lifeos/internal/ui/theme"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
)

// options holds the flags shared by every command
type options struct {
	configPath string
	mode       string
	theme      string
	remote     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "lifeos",
		Short:         "A kanban board for your tasks, grouped by status or priority",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return runTUI(cfg)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&opts.remote, "remote", "", "lifeos server URL; empty uses the local database")
	root.Flags().StringVar(&opts.mode, "mode", "", "grouping mode (status, priority)")
	root.Flags().StringVar(&opts.theme, "theme", "", "theme (nord, dracula, gruvbox, catppuccin)")

	root.AddCommand(
		newAddCmd(opts),
		newServeCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return root
}

// load reads the config file and applies flags set on the command line
func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("remote") {
		cfg.RemoteURL = o.remote
	}
	if flags.Changed("mode") {
		cfg.GroupingMode = o.mode
	}
	if flags.Changed("theme") {
		cfg.Theme = o.theme
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runTUI(cfg *config.Config) error {
	// The terminal belongs to the UI, so the board logs to a file
	logger, closeLog, err := logging.OpenFile(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closeLog()

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	if t, ok := theme.ByName(cfg.Theme); ok {
		theme.SetTheme(t)
	}

	mode, err := board.ParseMode(cfg.GroupingMode)
	if err != nil {
		return err
	}
	root := ui.NewRootModel(application, mode)
	defer func() {
		if err := root.Close(); err != nil {
			logger.Warn("moves still in flight at exit; they will be resent", "error", err)
		}
	}()

	p := tea.NewProgram(
		root,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	logger.Info("board started", "version", version, "mode", mode, "backend", application.Backend())
	_, err = p.Run()
	return err
}

func newServeCmd(opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local database over HTTP for remote boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			logger, err := logging.New(os.Stderr, cfg.Log.Level)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}
			store, err := db.Open(cfg.DBPath, db.WithLogger(logger))
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(store, server.Options{
				Addr:           cfg.Server.Addr,
				AllowedOrigins: cfg.Server.AllowedOrigins,
				Logger:         logger,
			})
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func newConfigCmd(opts *options) *cobra.Command {
	var force bool

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if err := config.WriteDefault(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}
	cmd.AddCommand(initCmd)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lifeos v%s\n", version)
		},
	}
}
