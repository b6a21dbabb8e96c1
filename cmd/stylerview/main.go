package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"geostyle/internal/config"
	"geostyle/internal/logging"
	"geostyle/internal/tui"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		cfgPath string
		demo    bool
		watch   bool
		npot    bool
	)
	cmd := &cobra.Command{
		Use:   "stylerview [file]",
		Short: "Preview symbolizers over vector files in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if cfgPath != "" {
				var err error
				if cfg, err = config.Load(cfgPath); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("watch") {
				cfg.Watch = watch
			}
			if cmd.Flags().Changed("npot") {
				cfg.Texture.NPOT = npot
			}
			closeLog, err := setupLogging(cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			opts := tui.Options{Config: cfg, Demo: demo || len(args) == 0}
			if len(args) == 1 {
				opts.Path = args[0]
			}
			m := tui.New(opts)
			defer m.Close()
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
			return err
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "TOML config file")
	cmd.Flags().BoolVar(&demo, "demo", false, "add the synthetic textured coverage")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the file when it changes")
	cmd.Flags().BoolVar(&npot, "npot", false, "allow non power of two textures")
	cmd.AddCommand(initCmd())
	return cmd
}

// initCmd writes the default configuration.
func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "stylerview.toml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s exists, use --force to overwrite", path)
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

// setupLogging sends logs to the configured file; the terminal belongs to
// the viewer.
func setupLogging(cfg config.Config) (func(), error) {
	if cfg.Log.File == "" {
		return func() {}, nil
	}
	lvl, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl})))
	return func() {
		logging.SetLogger(nil)
		f.Close()
	}, nil
}
