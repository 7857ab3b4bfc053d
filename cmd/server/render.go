package main

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/zvenigorodok/internal/ssr"
)

// newRenderCommand creates the "render" subcommand that renders one page of
// the bundle to stdout.
func newRenderCommand(opts *Options) *cobra.Command {
	var (
		location    string
		contextJSON string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one page of the SSR bundle to stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := ssr.NewPageParams(location)
			if contextJSON != "" {
				if err := sonic.UnmarshalString(contextJSON, &params.Context); err != nil {
					return fmt.Errorf("parse --context: %w", err)
				}
			}
			encoded, err := params.Encode()
			if err != nil {
				return err
			}

			bundle, err := ssr.LoadBundle(opts.cfg.Server.ClientDir, opts.cfg.Render.Entrypoint)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if timeout := opts.cfg.Render.Timeout; timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			html, err := ssr.OneShotRender(ctx, bundle.Source(), encoded)
			if err != nil {
				return fmt.Errorf("render %s: %w", location, err)
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), html)
			return err
		},
	}

	cmd.Flags().StringVar(&location, "location", "/", "Request URI passed to the render functions")
	cmd.Flags().StringVar(&contextJSON, "context", "", "JSON object passed as the render context")

	return cmd
}
