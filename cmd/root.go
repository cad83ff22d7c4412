package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"oktamcp/internal/auth"
)

// Exit codes for CLI commands. These follow common conventions so that
// wrapper scripts can distinguish auth problems from general failures.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates authentication is required but not available.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates the OAuth flow failed.
	ExitCodeAuthFailed = 3
)

// rootCmd represents the base command for the oktamcp application.
var rootCmd = &cobra.Command{
	Use:   "oktamcp",
	Short: "MCP server for Okta organization administration",
	Long: `oktamcp exposes an Okta organization's admin API as MCP tools
over stdio, so AI assistants can inspect and manage users, groups,
applications, policies and the system log.

Authentication against Okta uses either the OAuth 2.0 device
authorization grant (interactive) or private-key-JWT client
credentials (headless), selected automatically from the configured
credential material.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This is called from the main package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "oktamcp version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if errors.Is(err, auth.ErrReauthenticationRequired) {
		return ExitCodeAuthRequired
	}
	if errors.Is(err, auth.ErrDeviceAccessDenied) || errors.Is(err, auth.ErrDeviceSessionExpired) {
		return ExitCodeAuthFailed
	}
	if errors.Is(err, auth.ErrRenewalFailed) {
		return ExitCodeAuthFailed
	}

	var exchangeErr *auth.ExchangeError
	if errors.As(err, &exchangeErr) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
