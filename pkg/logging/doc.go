// Package logging provides a structured logging system for oktamcp with unified
// log handling and flexible output routing.
//
// This package implements a logging system built on Go's standard slog package,
// providing consistent logging behavior with structured output and level filtering.
//
// # Architecture
//
// The logging system is built around these core concepts:
//
// ## Log Levels
//   - **Debug**: Detailed information for debugging and development
//   - **Info**: General informational messages about application operation
//   - **Warn**: Warning messages that indicate potential issues
//   - **Error**: Error messages for failures and exceptional conditions
//
// ## Structured Logging
// All log entries include:
//   - Timestamp
//   - Log level (Debug, Info, Warn, Error)
//   - Subsystem identifier for categorization
//   - Message content with optional formatting
//   - Optional error information
//
// # Usage Examples
//
// ## Initialization
//
//	import "oktamcp/pkg/logging"
//
//	// Initialize with Info level logging to stderr
//	logging.Init(logging.LevelInfo, os.Stderr)
//
//	// Log messages
//	logging.Info("Auth", "Token renewed for %s", orgURL)
//	logging.Debug("Okta", "GET %s returned %d", path, status)
//	logging.Warn("Store", "Secure backend unavailable, using in-memory store")
//	logging.Error("Server", err, "Tool call failed")
//
// ## Log File Output
//
//	// Mirror log output into a file alongside the primary writer
//	if err := logging.InitWithFile(logging.LevelDebug, os.Stderr, "/tmp/oktamcp.log"); err != nil {
//		// fall back to stderr-only logging
//	}
//
// # Subsystem Organization
//
// Logs are organized by subsystem to enable filtering and categorization:
//
//   - **Auth**: Token lifecycle, device grant negotiation, and credential exchange
//   - **Store**: Token persistence and keyring access
//   - **Okta**: Okta management API requests and pagination
//   - **Server**: MCP server lifecycle and tool dispatch
//   - **Config**: Configuration loading and validation
//
// # Output Routing
//
// The serve command runs the MCP server over stdio, so stdout belongs to the
// protocol transport. All log output must go to stderr (or a file) to avoid
// corrupting the MCP message stream.
//
// # Integration with slog
//
// The logging system integrates with Go's standard slog package:
//   - Uses slog.Handler implementations for output formatting
//   - Converts custom LogLevel to slog.Level for compatibility
//   - Installs itself as the slog default so library code logs consistently
package logging
