package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/zvenigorodok/internal/infrastructure/config"
	"github.com/GriffinCanCode/zvenigorodok/internal/infrastructure/logging"
	"github.com/GriffinCanCode/zvenigorodok/internal/ssr"
)

// Options stores global CLI options shared between commands.
type Options struct {
	Port    string
	Dir     string
	EnvFile string

	cfg    *config.Config
	logger *logging.Logger
}

// Execute builds the root command, runs it with args and returns any error.
func Execute(args []string) error {
	cmd := newRootCommand(&Options{})
	cmd.SetArgs(args)
	return cmd.Execute()
}

func newRootCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Server-side rendering backend",
		Long:          "server renders the client's SSR bundle for every page request and serves static assets and the reviews API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.bootstrap(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.Port, "port", "p", "8080", "Port for the application")
	cmd.PersistentFlags().StringVarP(&opts.Dir, "dir", "d", "./client/dist", "Frontend dist directory")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "Optional dotenv file loaded before the environment")

	cmd.AddCommand(
		newServeCommand(opts),
		newRenderCommand(opts),
	)

	return cmd
}

// bootstrap loads configuration, builds the logger and initialises the
// render platform. It runs once per process.
func (o *Options) bootstrap(cmd *cobra.Command) error {
	if err := godotenv.Load(o.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", o.EnvFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flag := cmd.Flag("port"); flag != nil && flag.Changed {
		cfg.Server.Port = o.Port
	}
	if flag := cmd.Flag("dir"); flag != nil && flag.Changed {
		cfg.Server.ClientDir = o.Dir
	}
	o.cfg = cfg
	o.logger = logging.FromLevel(cfg.Logging.Level, cfg.Logging.Development)

	if err := ssr.Initialize(
		ssr.WithMaxCallStackSize(cfg.Render.MaxCallStack),
		ssr.WithConsoleLogger(o.logger.Logger),
	); err != nil {
		return fmt.Errorf("initialize render platform: %w", err)
	}
	return nil
}
