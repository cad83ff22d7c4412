package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"oktamcp/internal/auth"
	"oktamcp/internal/config"
	"oktamcp/pkg/logging"
)

// loadConfig reads the configuration file (if any) plus the OKTA_* environment
// and initializes logging from the result. Log output goes to stderr: stdout
// belongs to the MCP stdio transport.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if cfg.LogFile != "" {
		if err := logging.InitWithFile(level, os.Stderr, cfg.LogFile); err != nil {
			return nil, err
		}
	} else {
		logging.Init(level, os.Stderr)
	}

	return cfg, nil
}

// newManager resolves the configured credentials into a client identity and
// builds the token lifecycle manager on top of the platform token store.
// The device prompt writes to stderr so an interactive serve session still
// keeps stdout clean for the protocol.
func newManager(cfg *config.Config, prompt auth.PromptFunc) (*auth.Manager, error) {
	identity, err := auth.Resolve(cfg.Credentials())
	if err != nil {
		return nil, fmt.Errorf("invalid Okta configuration: %w", err)
	}

	store := auth.OpenStore(slog.Default())

	return auth.NewManager(identity, store, auth.WithDevicePrompt(prompt)), nil
}

// stderrDevicePrompt renders the device grant user code and verification URI
// on stderr.
func stderrDevicePrompt(session *auth.DeviceSession) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "To authenticate, open the verification page and enter the code:")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "  URL:  %s\n", session.VerificationURI)
	fmt.Fprintf(os.Stderr, "  Code: %s\n", session.UserCode)
	if session.VerificationURIComplete != "" {
		fmt.Fprintln(os.Stderr)
		fmt.Fprintf(os.Stderr, "  Or open directly: %s\n", session.VerificationURIComplete)
	}
	fmt.Fprintln(os.Stderr)
}
