// Package itemscmder provides the items command for the demo item store
// exposed by the FlexPolicy API.
package itemscmder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/checkeredai/flexpolicy/pkg/apiclient"
	"github.com/checkeredai/flexpolicy/pkg/cliui"
	"github.com/checkeredai/flexpolicy/pkg/config"
)

const itemsLongDesc string = `Work with the demo item store exposed by the FlexPolicy API.

Examples:
  flexpolicy items add "severance clause"`

const itemsShortDesc string = "Work with the demo item store"

func NewItemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: itemsShortDesc,
		Long:  itemsLongDesc,
	}

	cmd.AddCommand(newAddCmd())

	return cmd
}

type addCommander struct {
	apiTarget string
}

const addShortDesc string = "Add a demo item"

func newAddCmd() *cobra.Command {
	cmder := &addCommander{}

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: addShortDesc,
		Args:  cobra.MinimumNArgs(1),
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
		RunE: func(_ *cobra.Command, args []string) error {
			return cmder.run(strings.Join(args, " "))
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.apiTarget, "api-target", "a", defaults.Client.APITarget, "FlexPolicy API server URL")

	return cmd
}

func (c *addCommander) run(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	item, err := apiclient.NewClient(c.apiTarget).AddItem(ctx, name)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s Added %s %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(item.Name),
		cliui.DimStyle.Render(fmt.Sprintf("(%s)", item.ID)),
	)

	return nil
}
