// Package internal documents the calendar client internals.
//
// The internal tree is organized by responsibility:
// - calendar: typed client for the events REST API
// - config: configuration loading and logger setup
// - metrics, telemetry: request metrics and tracing transports
// - sanitize: terminal-safe rendering of server-supplied text
//
// Code in internal/ is not meant for external import.
package internal
