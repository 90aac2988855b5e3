// Package cli implements the command-line interface for titulos-monitor.
//
// The root command loads configuration from the environment (optionally seeded from a
// .env file), applies flag overrides, and wires the checker, notifiers, metrics, ops
// endpoint and scheduler together. It runs until SIGINT or SIGTERM, then sends the
// shutdown message and exits cleanly.
package cli
