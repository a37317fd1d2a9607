// Package configcmder provides the config command for managing persistent
// flexpolicy configuration stored in the .flexpolicy/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent flexpolicy configuration.

Configuration is stored as config.toml in the .flexpolicy/ directory and
provides default values for command flags. CLI flags always take
precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  api.listen, client.api_target,
  openai.base_url, openai.api_key, openai.model,
  storage.postgres_dsn, draft.timeout_seconds

Use subcommands to get, set, or list configuration values:
  flexpolicy config set <key> <value>    Set a configuration value
  flexpolicy config get <key>            Get a configuration value
  flexpolicy config list                 List all configuration values

Examples:
  flexpolicy config set openai.model gpt-4o-mini
  flexpolicy config set client.api_target http://localhost:8000
  flexpolicy config get openai.model
  flexpolicy config list`

const configShortDesc string = "Manage persistent flexpolicy configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
