package cmd

import (
	"github.com/spf13/cobra"
)

// authLogoutCmd represents the auth logout command.
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored authentication token",
	Long: `Clear the stored OAuth token for the configured organization and
client. The next login or serve will authenticate from scratch.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogout,
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(authConfigPath)
	if err != nil {
		return err
	}

	manager, err := newManager(cfg, nil)
	if err != nil {
		return err
	}

	manager.Logout()
	authPrint("Logged out from %s\n", cfg.OrgURL)
	return nil
}
