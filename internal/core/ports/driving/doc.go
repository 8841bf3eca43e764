// Package driving provides interfaces for external actors (primary/inbound
// ports): the CLI commands and the review TUI drive the core through these.
package driving
