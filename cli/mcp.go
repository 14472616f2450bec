// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server on stdio for assistant integrations
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/JFernandez0524/leadgen/handlers"
)

func newMCPCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `Start the leadgen MCP (Model Context Protocol) server on stdio.

Tools: analyze_business, execute_insight, get_kpis, business_summary,
list_automation_runs, add_lead, list_leads, record_payment, complete_payment,
list_payments, add_opportunity, list_opportunities.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open()
			if err != nil {
				return err
			}

			server := handlers.NewServer(handlers.Deps{
				Backend:  a.backend,
				Engine:   a.engine,
				Executor: a.executor,
				Now:      o.now,
			}, o.version)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			a.log.Info("starting MCP server")
			if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
				return fmt.Errorf("MCP server failed: %w", err)
			}
			return nil
		},
	}
}
