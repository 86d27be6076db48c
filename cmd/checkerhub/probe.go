package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/djlord-it/checkerhub/internal/workspace"
)

const defaultProbeTimeout = 30 * time.Second

func newProbeCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Check that CLUSTER_ID and NOTEBOOK_PATH exist in the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return withCode(exitInvalidConfig, err)
			}

			prober, err := workspace.NewProber(cfg.WorkspaceURL(), cfg.Token, log)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			report, err := prober.Probe(ctx, cfg.ClusterID, cfg.NotebookPath)
			if err != nil {
				return fmt.Errorf("probe failed: %w", err)
			}

			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", defaultProbeTimeout, "overall timeout for workspace API calls")
	return cmd
}
