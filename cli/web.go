// ABOUTME: Web and TUI subcommands
// ABOUTME: Serves the dashboard and JSON API, or opens the interactive insight browser
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JFernandez0524/leadgen/chat"
	"github.com/JFernandez0524/leadgen/tui"
	"github.com/JFernandez0524/leadgen/web"
)

func newWebCmd(o *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Start the web dashboard and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("port") {
				port = a.cfg.Web.Port
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			advisor, err := o.newAdvisor(ctx, a)
			if err != nil {
				return err
			}
			srv, err := web.NewServer(a.engine, a.executor,
				web.WithAdvisor(advisor),
				web.WithLogger(a.log),
				web.WithTimeout(a.cfg.RequestTimeout),
				web.WithClock(o.now))
			if err != nil {
				return fmt.Errorf("failed to create web server: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Starting web server at http://localhost:%d\n", port)
			return srv.Start(ctx, port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on (default from web.port)")
	return cmd
}

func newTUICmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive insight browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open()
			if err != nil {
				return err
			}

			m := tui.NewModel(a.engine, a.executor).WithTimeout(a.cfg.RequestTimeout)
			p := tea.NewProgram(m, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("TUI failed: %w", err)
			}
			return nil
		},
	}
}

// newAdvisor builds the chat advisor. Without an API key only the shortcut actions work.
func (o *rootOptions) newAdvisor(ctx context.Context, a *app) (*chat.Advisor, error) {
	var completer chat.Completer
	if a.cfg.LLM.APIKey != "" {
		c, err := chat.NewGenAICompleter(ctx, a.cfg.LLM.APIKey, a.cfg.LLM.Model)
		if err != nil {
			return nil, err
		}
		completer = c
	} else {
		a.log.Debug("no llm.api_key configured, chat replies disabled")
	}

	return chat.NewAdvisor(a.engine, a.executor, completer,
		chat.Profile{Name: a.cfg.Business.Name, ServiceType: a.cfg.Business.ServiceType},
		chat.WithSampling(a.cfg.LLM.MaxTokens, a.cfg.LLM.Temperature),
		chat.WithClock(o.now),
		chat.WithLogger(a.log.With(zap.String("component", "advisor"))),
	), nil
}
