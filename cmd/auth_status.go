package cmd

import (
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// authStatusCmd represents the auth status command.
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored authentication status",
	Long: `Show the stored credential for the configured organization and
client: whether a token exists, when it expires, and whether a refresh
token is available for silent renewal.

This only inspects local state; it does not contact Okta.`,
	Args: cobra.NoArgs,
	RunE: runAuthStatus,
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(authConfigPath)
	if err != nil {
		return err
	}

	manager, err := newManager(cfg, nil)
	if err != nil {
		return err
	}

	authPrintln("Okta Organization")
	authPrint("  Org URL:   %s\n", cfg.OrgURL)
	authPrint("  Client:    %s\n", cfg.ClientID)
	authPrint("  Strategy:  %s\n", manager.Identity().Strategy())

	record := manager.Current()
	if record == nil {
		authPrint("  Status:    %s\n", text.FgYellow.Sprint("Not authenticated"))
		authPrint("             Run: oktamcp auth login\n")
		return nil
	}

	now := time.Now()
	if record.Valid(now) {
		authPrint("  Status:    %s\n", text.FgGreen.Sprint("Authenticated"))
	} else {
		authPrint("  Status:    %s\n", text.FgYellow.Sprint("Token expired"))
	}
	if !record.ExpiresAt.IsZero() {
		authPrint("  Expires:   %s\n", formatExpiryWithDirection(record.ExpiresAt, now))
	}
	if record.RefreshToken != "" {
		authPrint("  Refresh:   %s\n", text.FgGreen.Sprint("Available"))
	} else {
		authPrint("  Refresh:   %s\n", text.FgYellow.Sprint("Not available (re-auth required on expiry)"))
	}
	if scopes := record.Scopes(); len(scopes) > 0 {
		authPrint("  Scopes:    %s\n", strings.Join(scopes, " "))
	}

	return nil
}

// formatExpiryWithDirection renders an expiry timestamp with a relative
// "in 57m" or "47m ago" suffix.
func formatExpiryWithDirection(expiresAt, now time.Time) string {
	stamp := expiresAt.Format(time.RFC1123)
	delta := expiresAt.Sub(now).Round(time.Minute)
	if delta >= 0 {
		return stamp + " (in " + delta.String() + ")"
	}
	return stamp + " (" + (-delta).String() + " ago)"
}
