// Package healthcmder provides the health command for probing a running
// FlexPolicy API server.
package healthcmder

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/checkeredai/flexpolicy/pkg/apiclient"
	"github.com/checkeredai/flexpolicy/pkg/cliui"
	"github.com/checkeredai/flexpolicy/pkg/config"
)

type healthCommander struct {
	apiTarget string
}

const healthLongDesc string = `Check that a FlexPolicy API server is up and answering.

Examples:
  flexpolicy health
  flexpolicy health --api-target http://localhost:8000`

const healthShortDesc string = "Check FlexPolicy API server health"

func NewHealthCmd() *cobra.Command {
	cmder := &healthCommander{}

	cmd := &cobra.Command{
		Use:   "health",
		Short: healthShortDesc,
		Long:  healthLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("api-target") {
				cmder.apiTarget = cfg.Client.APITarget
			}
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.apiTarget, "api-target", "a", defaults.Client.APITarget, "FlexPolicy API server URL")

	return cmd
}

func (c *healthCommander) run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := apiclient.NewClient(c.apiTarget)

	fmt.Println()
	err := cliui.Step(os.Stdout, fmt.Sprintf("Checking %s", c.apiTarget), func() error {
		return client.Health(ctx)
	})
	fmt.Println()

	return err
}
