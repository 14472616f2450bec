// ABOUTME: Charm sync CLI commands
// ABOUTME: Links this device, shows local record counts and forces a sync with the charm server
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JFernandez0524/leadgen/charm"
)

func newSyncCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Manage Charm cloud sync for the charm backend",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "link",
			Short: "Show how to link this device to your charm account",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return o.withCharm(func(c *charm.Client) error { return charm.Link(cmd.OutOrStdout(), c) })
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show sync status and record counts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return o.withCharm(func(c *charm.Client) error { return charm.Status(cmd.OutOrStdout(), c) })
			},
		},
		newSyncNowCmd(o),
		newSyncWipeCmd(o),
	)
	return cmd
}

func newSyncNowCmd(o *rootOptions) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "now",
		Short: "Push and pull changes now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withCharm(func(c *charm.Client) error { return charm.SyncNow(cmd.OutOrStdout(), c, verbose) })
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print record counts after syncing")
	return cmd
}

func newSyncWipeCmd(o *rootOptions) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete every leadgen record from the local charm database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withCharm(func(c *charm.Client) error { return charm.Wipe(cmd.OutOrStdout(), c, confirm) })
		},
	}
	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm the wipe")
	return cmd
}

// withCharm runs fn against the charm client, reusing the open backend when it is charm.
func (o *rootOptions) withCharm(fn func(*charm.Client) error) error {
	if o.app != nil {
		if cs, ok := o.app.backend.(*charm.Store); ok {
			return fn(cs.Client())
		}
	}
	c, err := charm.NewClient(o.cfg.Charm.WithDefaults())
	if err != nil {
		return fmt.Errorf("failed to open charm client: %w", err)
	}
	defer func() { _ = c.Close() }()
	return fn(c)
}
