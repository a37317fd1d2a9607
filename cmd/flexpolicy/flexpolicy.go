// Package flexpolicycmder
package flexpolicycmder

import (
	configcmder "github.com/checkeredai/flexpolicy/cmd/flexpolicy/config"
	draftcmder "github.com/checkeredai/flexpolicy/cmd/flexpolicy/draft"
	healthcmder "github.com/checkeredai/flexpolicy/cmd/flexpolicy/health"
	itemscmder "github.com/checkeredai/flexpolicy/cmd/flexpolicy/items"
	servecmder "github.com/checkeredai/flexpolicy/cmd/flexpolicy/serve"
	"github.com/spf13/cobra"
)

const flexpolicyLongDesc string = `FlexPolicy drafts Ontario employment policy text from short prompts.

Stream a draft from the API:
  flexpolicy draft "overtime policy for retail staff"

Run the backend:
  flexpolicy serve         Run the FlexPolicy API server`

const flexpolicyShortDesc string = "FlexPolicy - employment policy drafting"

func NewFlexPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flexpolicy",
		Short: flexpolicyShortDesc,
		Long:  flexpolicyLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory containing the .flexpolicy/ config (default: auto-detect)")

	// Add subcommands
	cmd.AddCommand(draftcmder.NewDraftCmd())
	cmd.AddCommand(healthcmder.NewHealthCmd())
	cmd.AddCommand(itemscmder.NewItemsCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())

	return cmd
}
