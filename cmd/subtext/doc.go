// Package main hosts the subtext CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into caption
// processing runs, catalog inspection, subtitle cleanup, and configuration
// scaffolding. It centralizes configuration resolution, the process lock,
// and logger setup so subcommands stay declarative; the heavy lifting lives
// in the internal packages.
package main
