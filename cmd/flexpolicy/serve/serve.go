// Package servecmder provides the serve command for running the
// FlexPolicy API server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/checkeredai/flexpolicy/api"
	"github.com/checkeredai/flexpolicy/pkg/completion/openai"
	"github.com/checkeredai/flexpolicy/pkg/config"
	"github.com/checkeredai/flexpolicy/pkg/items"
	"github.com/checkeredai/flexpolicy/pkg/items/inmemory"
	"github.com/checkeredai/flexpolicy/pkg/items/postgres"
	"github.com/checkeredai/flexpolicy/pkg/logger"
)

type serveCommander struct {
	listen      string
	postgresDSN string
	debug       bool

	logger *zap.Logger
}

const serveLongDesc string = `Run the FlexPolicy API server.

The server exposes the draft streaming endpoint backed by the configured
OpenAI-compatible completion provider, plus the health probe and the
demo item store. Items are kept in Postgres when storage.postgres_dsn is
configured, in memory otherwise.

Configuration comes from flags, FLEXPOLICY_* environment variables, and
the .flexpolicy/config.toml file, in that order of precedence.

Examples:
  flexpolicy serve
  flexpolicy serve --listen :8000
  FLEXPOLICY_OPENAI_API_KEY=sk-... flexpolicy serve`

const serveShortDesc string = "Run the FlexPolicy API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("initializing config: %w", err)
			}

			if !cmd.Flags().Changed("listen") {
				cmder.listen = v.GetString("api.listen")
			}
			if !cmd.Flags().Changed("postgres") {
				cmder.postgresDSN = v.GetString("storage.postgres_dsn")
			}

			return cmder.run(
				v.GetString("openai.base_url"),
				v.GetString("openai.api_key"),
				v.GetString("openai.model"),
			)
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", defaults.API.Listen, "Address for the API server to listen on")
	cmd.Flags().StringVarP(&cmder.postgresDSN, "postgres", "p", "", "Postgres connection string (default: in-memory item store)")

	return cmd
}

func (c *serveCommander) run(openaiBaseURL, openaiAPIKey, openaiModel string) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	store, err := c.newItemStore()
	if err != nil {
		return err
	}
	defer store.Close()

	completer := openai.New(openaiBaseURL, openaiAPIKey, openaiModel,
		openai.WithLogger(c.logger),
	)

	c.logger.Info("using completion provider",
		zap.String("base_url", openaiBaseURL),
		zap.String("model", openaiModel),
		zap.Bool("api_key_set", openaiAPIKey != ""),
	)

	server := api.NewServer(api.Config{ListenAddr: c.listen}, store, completer, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}

func (c *serveCommander) newItemStore() (items.Store, error) {
	if c.postgresDSN != "" {
		store, err := postgres.NewStore(context.Background(), c.postgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		c.logger.Info("using Postgres item store")
		return store, nil
	}

	c.logger.Info("using in-memory item store")
	return inmemory.NewStore(), nil
}
