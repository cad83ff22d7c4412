package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	authConfigPath string
	authQuiet      bool
)

// authCmd represents the auth command group.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication against Okta",
	Long: `Manage authentication for the oktamcp server.

The auth command group provides subcommands to login, logout and check
the stored credential, outside of a running MCP session. Tokens acquired
here are shared with 'oktamcp serve' through the platform token store.

Examples:
  oktamcp auth login                   # Authenticate and store a token
  oktamcp auth status                  # Show the stored credential
  oktamcp auth logout                  # Clear the stored credential`,
}

// authPrint prints output only if the --quiet flag is not set.
func authPrint(format string, args ...interface{}) {
	if !authQuiet {
		fmt.Printf(format, args...)
	}
}

// authPrintln prints a line only if the --quiet flag is not set.
func authPrintln(a ...interface{}) {
	if !authQuiet {
		fmt.Println(a...)
	}
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)

	authCmd.PersistentFlags().StringVar(&authConfigPath, "config", "", "Path to a YAML configuration file")
	authCmd.PersistentFlags().BoolVarP(&authQuiet, "quiet", "q", false, "Suppress non-essential output")
}
