// Package logging provides structured logging for the email-sender operator.
//
// The package wraps Go's standard slog with a small printf-style API keyed by
// subsystem, so every log line carries a subsystem attribute that log
// aggregation can filter on.
//
// # Log Levels
//   - **Debug**: Detailed information for debugging and development
//   - **Info**: General informational messages about operator operation
//   - **Warn**: Warning messages that indicate potential issues
//   - **Error**: Error messages for failures and exceptional conditions
//
// # Usage
//
//	import "emailsender/pkg/logging"
//
//	// Initialize with Info level logging to stdout
//	logging.Init(logging.LevelInfo, os.Stdout)
//
//	logging.Info("Bootstrap", "Operator starting up")
//	logging.Debug("Config", "Loaded configuration from %s", configPath)
//	logging.Error("EmailReconciler", err, "Failed to patch status")
//
// # Subsystem Organization
//
//   - **Bootstrap**: Process initialization and startup
//   - **Config**: Configuration loading and validation
//   - **Cluster**: Cluster API client operations
//   - **Controller**: Event dispatch, queueing and retries
//   - **SenderConfigReconciler**: EmailSenderConfig event handling
//   - **EmailReconciler**: Email event handling and delivery outcomes
//
// # Controller-Runtime Integration
//
// Init wires the controller-runtime logger to the same slog handler, so
// informer and cache internals log through the operator's stream instead of
// warning about an uninitialized logger.
package logging
