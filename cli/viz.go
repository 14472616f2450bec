// ABOUTME: Visualization CLI commands
// ABOUTME: Prints the terminal dashboard and renders the pipeline graph as DOT or SVG
package cli

import (
	"fmt"
	"os"

	"github.com/goccy/go-graphviz"
	"github.com/spf13/cobra"

	"github.com/JFernandez0524/leadgen/insights"
	"github.com/JFernandez0524/leadgen/viz"
)

func newVizCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viz",
		Short: "Dashboards and graphs",
	}
	cmd.AddCommand(newVizDashboardCmd(o), newVizPipelineCmd(o))
	return cmd
}

func newVizDashboardCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the KPI and pipeline dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open()
			if err != nil {
				return err
			}
			ctx, cancel := o.timeoutContext(cmd)
			defer cancel()

			snap, err := a.engine.Snapshot(ctx)
			if err != nil {
				return err
			}
			now := o.now()
			found := insights.Evaluate(snap, now, a.engine.Thresholds())
			stats := viz.GenerateDashboardStats(snap, found, now, a.engine.Thresholds())

			fmt.Fprint(cmd.OutOrStdout(), viz.RenderDashboard(stats))
			return nil
		},
	}
}

func newVizPipelineCmd(o *rootOptions) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Render the opportunity pipeline graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var gf graphviz.Format
			switch format {
			case "dot":
				gf = graphviz.XDOT
			case "svg":
				gf = graphviz.SVG
			default:
				return fmt.Errorf("unknown format %q (want dot or svg)", format)
			}

			a, err := o.open()
			if err != nil {
				return err
			}
			ctx, cancel := o.timeoutContext(cmd)
			defer cancel()

			snap, err := a.engine.Snapshot(ctx)
			if err != nil {
				return err
			}
			graph, err := viz.GeneratePipelineGraph(ctx, snap.Opportunities, gf)
			if err != nil {
				return err
			}

			if output != "" {
				return os.WriteFile(output, graph, 0644)
			}
			_, err = cmd.OutOrStdout().Write(graph)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "dot", "Output format: dot or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}
