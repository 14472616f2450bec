// ABOUTME: Sync operations behind the `leadgen sync` commands
// ABOUTME: Charm uses SSH key auth so there is no login or logout step

package charm

import (
	"fmt"
	"io"
)

// Link verifies the device can reach the charm server and prints the account ID.
func Link(w io.Writer, c *Client) error {
	cfg := c.Config()
	fmt.Fprintf(w, "Linking to Charm Cloud (%s)...\n\n", cfg.Host)
	fmt.Fprintln(w, "Charm uses SSH key authentication.")

	if err := c.Sync(); err != nil {
		return fmt.Errorf("link failed: %w", err)
	}

	id, err := c.ID()
	if err != nil {
		fmt.Fprintln(w, "✓ Device linked (ID unavailable)")
	} else {
		fmt.Fprintf(w, "✓ Linked to account: %s\n", id)
	}
	fmt.Fprintf(w, "✓ Auto-sync: %v\n", cfg.AutoSync)
	return nil
}

// Status prints the sync configuration and how many records are stored locally.
func Status(w io.Writer, c *Client) error {
	cfg := c.Config()
	fmt.Fprintln(w, "Charm Sync Status")
	fmt.Fprintln(w, "─────────────────")
	fmt.Fprintf(w, "Server:    %s\n", cfg.Host)
	fmt.Fprintf(w, "Auto-sync: %v\n", cfg.AutoSync)

	if !c.remote {
		fmt.Fprintln(w, "\nStatus: Local only")
	} else if id, err := c.ID(); err != nil {
		fmt.Fprintln(w, "\nStatus: Not connected")
	} else {
		fmt.Fprintln(w, "\nStatus: Connected to Charm Cloud")
		fmt.Fprintf(w, "ID:        %s\n", id)
	}

	for _, prefix := range []string{"leads/", "payments/", "opportunities/", runsPrefix} {
		keys, err := c.KeysWithPrefix([]byte(prefix))
		if err != nil {
			return fmt.Errorf("failed to count keys: %w", err)
		}
		fmt.Fprintf(w, "%-16s %d\n", prefix[:len(prefix)-1]+":", len(keys))
	}
	return nil
}

// SyncNow performs an immediate sync.
func SyncNow(w io.Writer, c *Client, verbose bool) error {
	if verbose {
		fmt.Fprintln(w, "Syncing with server...")
	}
	if err := c.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	if verbose {
		fmt.Fprintln(w, "✓ Sync complete")
	} else {
		fmt.Fprintln(w, "✓ Synced")
	}
	return nil
}

// Wipe resets the KV store. Nothing is deleted unless confirm is set.
func Wipe(w io.Writer, c *Client, confirm bool) error {
	if !confirm {
		fmt.Fprintln(w, "WARNING: This will delete ALL local data!")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "To confirm, run:")
		fmt.Fprintln(w, "  leadgen sync wipe --confirm")
		return nil
	}

	if err := c.Reset(); err != nil {
		return fmt.Errorf("failed to reset KV store: %w", err)
	}
	fmt.Fprintln(w, "✓ All data wiped")
	return nil
}
