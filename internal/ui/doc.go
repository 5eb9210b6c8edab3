// Package ui renders rokuctl's terminal output with Lipgloss.
//
// Components follow a "run once and exit" pattern: a Header before network
// work, a Result box after it, and a device table for scans. Nothing here
// reads input.
//
// Logging is controlled separately via ROKUCTL_LOG_LEVEL. When it is unset,
// zap is silent and only this package's output reaches the terminal.
package ui
