package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"oktamcp/internal/mcpserver"
	"oktamcp/internal/okta"
	"oktamcp/pkg/logging"
)

// serveConfigPath points at an optional YAML configuration file. The OKTA_*
// environment always overrides values from the file.
var serveConfigPath string

// serveLazyAuth skips the eager authentication at startup. The first tool
// call that needs a token triggers the flow instead, which is awkward for
// the device grant but fine for headless private-key-JWT setups.
var serveLazyAuth bool

// serveClearTokens removes the stored credential when the server shuts down.
// Useful on shared machines where tokens should not outlive the session.
var serveClearTokens bool

// serveCmd starts the MCP server on stdio.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Okta MCP server on stdio",
	Long: `Starts the MCP server, speaking the protocol on stdin/stdout.

Authentication happens eagerly at startup so that an interactive device
grant prompt appears before the MCP host starts issuing tool calls.
For the device grant a verification URL and user code are printed to
stderr; complete the verification in a browser to proceed.

Configuration comes from the OKTA_* environment, optionally layered on
top of a YAML file given via --config:

  OKTA_ORG_URL      Okta organization URL (required)
  OKTA_CLIENT_ID    OAuth client ID (required)
  OKTA_SCOPES       Extra scopes, space separated
  OKTA_PRIVATE_KEY  PEM private key, enables private-key-JWT
  OKTA_KEY_ID       Key ID for the JWT header (with OKTA_PRIVATE_KEY)
  OKTA_LOG_LEVEL    DEBUG, INFO, WARN or ERROR
  OKTA_LOG_FILE     Also log to this file`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return err
	}

	manager, err := newManager(cfg, stderrDevicePrompt)
	if err != nil {
		return err
	}
	if serveClearTokens {
		defer func() {
			logging.Info("serve", "clearing stored tokens on exit")
			manager.Logout()
		}()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if !serveLazyAuth {
		if _, err := manager.Token(ctx); err != nil {
			return fmt.Errorf("startup authentication failed: %w", err)
		}
		logging.Info("serve", "authenticated to %s", cfg.OrgURL)
	}

	client := okta.NewClient(manager, rootCmd.Version)
	server := mcpserver.New(client, rootCmd.Version)
	return server.Start(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to a YAML configuration file")
	serveCmd.Flags().BoolVar(&serveLazyAuth, "lazy-auth", false, "Defer authentication until the first tool call")
	serveCmd.Flags().BoolVar(&serveClearTokens, "clear-tokens-on-exit", false, "Remove stored tokens when the server exits")
}
