package cmd

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"oktamcp/internal/auth"
)

// authLoginCmd represents the auth login command.
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate to Okta and store the token",
	Long: `Authenticate to the configured Okta organization.

With only a client ID configured this runs the OAuth device authorization
grant: a verification URL and user code are printed, and the command waits
until the grant is approved in a browser. With a private key configured it
performs a private-key-JWT client credentials exchange instead, with no
interaction required.

The resulting token is stored in the platform token store and reused by
'oktamcp serve'.

Examples:
  oktamcp auth login                   # Authenticate with configured credentials
  oktamcp auth login --config cfg.yaml # Use a specific configuration file`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(authConfigPath)
	if err != nil {
		return err
	}

	var s *spinner.Spinner
	prompt := func(session *auth.DeviceSession) {
		authPrintln()
		authPrintln("To authenticate, open the verification page and enter the code:")
		authPrintln()
		authPrint("  URL:  %s\n", session.VerificationURI)
		authPrint("  Code: %s\n", session.UserCode)
		if session.VerificationURIComplete != "" {
			authPrintln()
			authPrint("  Or open directly: %s\n", session.VerificationURIComplete)
		}
		authPrintln()

		if !authQuiet {
			s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			s.Suffix = " Waiting for authorization..."
			s.Start()
		}
	}

	manager, err := newManager(cfg, prompt)
	if err != nil {
		return err
	}

	record, err := manager.Authenticate(cmd.Context())
	if s != nil {
		s.Stop()
	}
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	authPrint("Authenticated to %s\n", cfg.OrgURL)
	if !record.ExpiresAt.IsZero() {
		authPrint("Token expires %s\n", record.ExpiresAt.Format(time.RFC1123))
	}
	return nil
}
