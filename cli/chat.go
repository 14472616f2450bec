// ABOUTME: Chat CLI command
// ABOUTME: Asks the business advisor a question and renders the markdown reply with glamour
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/JFernandez0524/leadgen/chat"
)

func newChatCmd(o *rootOptions) *cobra.Command {
	var analyze, raw bool
	var execute string

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask the business advisor about your leads, payments and jobs",
		Long: `Ask the business advisor a question. The current insights are sent as
context. Requires llm.api_key (or LEADGEN_LLM_API_KEY) for free-form questions.

  leadgen chat "Which customers should I call today?"
  leadgen chat --analyze
  leadgen chat --execute overdue_payments`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := chat.Request{Message: strings.Join(args, " ")}
			switch {
			case analyze && execute != "":
				return fmt.Errorf("--analyze and --execute are mutually exclusive")
			case analyze:
				req.Action = chat.ActionAnalyze
			case execute != "":
				req.Action = chat.ActionExecute
				req.Message = execute
			}

			a, err := o.open()
			if err != nil {
				return err
			}
			ctx, cancel := o.timeoutContext(cmd)
			defer cancel()

			advisor, err := o.newAdvisor(ctx, a)
			if err != nil {
				return err
			}
			resp, err := advisor.Respond(ctx, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, render(resp.Reply, raw))
			if resp.SuggestsAutomation && resp.ActionTaken == "" {
				fmt.Fprintln(out, "Tip: run `leadgen chat --execute <kind>` to apply an automated remedy.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&analyze, "analyze", false, "Print the business health summary")
	cmd.Flags().StringVar(&execute, "execute", "", "Run the automation for an insight kind")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the reply without markdown rendering")
	return cmd
}

// render formats markdown for the terminal, falling back to plain text.
func render(text string, raw bool) string {
	if raw {
		return text
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return out
}
