// Package draftcmder provides the draft command for streaming a policy
// draft from the FlexPolicy API.
package draftcmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/checkeredai/flexpolicy/pkg/cliui"
	"github.com/checkeredai/flexpolicy/pkg/config"
	"github.com/checkeredai/flexpolicy/pkg/draft"
	"github.com/checkeredai/flexpolicy/pkg/logger"
)

var assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("draft> ")

type draftCommander struct {
	apiTarget      string
	timeoutSeconds int
	render         bool
	debug          bool

	logger *zap.Logger
}

const draftLongDesc string = `Stream an employment policy draft from the FlexPolicy API.

The prompt is sent to the API's draft endpoint and tokens are printed
as they arrive. Ctrl+C stops the stream cleanly; the --timeout flag
bounds the whole session.

Rate-limit rejections from the drafting backend are reported in-band,
so a stream can end with a quota message after partial output.

Examples:
  flexpolicy draft "overtime policy for retail staff"
  flexpolicy draft --render "termination notice requirements"
  flexpolicy draft --timeout 30 "vacation pay accrual"`

const draftShortDesc string = "Stream a policy draft from the FlexPolicy API"

func NewDraftCmd() *cobra.Command {
	cmder := &draftCommander{}

	cmd := &cobra.Command{
		Use:   "draft <prompt>",
		Short: draftShortDesc,
		Long:  draftLongDesc,
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
			if !cmd.Flags().Changed("timeout") {
				cmder.timeoutSeconds = cfg.Draft.TimeoutSeconds
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(strings.Join(args, " "))
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.apiTarget, "api-target", "a", defaults.Client.APITarget, "FlexPolicy API server URL")
	cmd.Flags().IntVarP(&cmder.timeoutSeconds, "timeout", "t", defaults.Draft.TimeoutSeconds, "Session timeout in seconds")
	cmd.Flags().BoolVarP(&cmder.render, "render", "r", false, "Render the finished draft as markdown instead of streaming tokens")

	return cmd
}

func (c *draftCommander) run(prompt string) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	client := draft.NewClient(c.apiTarget, draft.WithLogger(c.logger))

	var (
		mu      sync.Mutex
		full    strings.Builder
		failure string
	)

	if !c.render {
		fmt.Print(assistantPrompt)
	}

	session := client.Stream(context.Background(), draft.Request{Prompt: prompt},
		func(token string) {
			mu.Lock()
			full.WriteString(token)
			mu.Unlock()
			if !c.render {
				fmt.Print(token)
			}
		},
		func(msg string) {
			mu.Lock()
			failure = msg
			mu.Unlock()
		},
	)

	// Bound the whole session; the timer fires the same cancel handle
	// Ctrl+C uses.
	if c.timeoutSeconds > 0 {
		timer := time.AfterFunc(time.Duration(c.timeoutSeconds)*time.Second, session.Cancel)
		defer timer.Stop()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			session.Cancel()
		case <-session.Done():
		}
	}()

	final := session.Wait()
	if !c.render {
		fmt.Println()
	}

	switch final {
	case draft.StateCompleted:
		if c.render {
			rendered, err := cliui.RenderMarkdown(full.String())
			if err != nil {
				c.logger.Debug("markdown rendering failed", zap.Error(err))
				fmt.Println(full.String())
				return nil
			}
			fmt.Print(rendered)
		}
		return nil
	case draft.StateCancelled:
		fmt.Printf("  %s\n", cliui.DimStyle.Render("draft stopped"))
		return nil
	default:
		return errors.New(failure)
	}
}
