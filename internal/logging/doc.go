// Package logging provides structured logging for rokuctl.
//
// This package wraps a zap logger with package-level helpers so that the
// discovery core, the locator and the control client can log without passing
// a logger around.
//
// # Log Levels
//
//   - Debug: raw datagrams (hex and ascii dumps), socket setup
//   - Info: matched devices, control requests and responses
//   - Warn: unparseable replies, discovery windows that ended without a match
//   - Error: socket failures
//
// # Configuration
//
// Logging is silent unless a level is given, either through --log-level or the
// ROKUCTL_LOG_LEVEL environment variable:
//
//	if err := logging.Initialize(level); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// Output goes to stderr in zap's console format so that command output on
// stdout stays scriptable.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use once Initialize has
// returned.
package logging
