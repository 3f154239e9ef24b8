// Package cli implements the adminctl command-line interface.
//
// Commands are Cobra commands registered on rootCmd from init functions.
// Each command loads config in the root's PersistentPreRunE, then talks to
// the admin API through the process-wide client from api.Default.
//
// # Command Structure
//
//	adminctl dashboard               - Live metrics dashboard
//	adminctl metrics                 - One-shot metrics snapshot
//	adminctl users [list|browse|...] - Manage users
//	adminctl orgs [list|browse|...]  - Manage organizations
//	adminctl config [init|set|show|path]
//	adminctl stub-server             - Serve a seeded fake admin API
//
// # Output
//
// Every command that prints data honours --json, which wraps the result in
// a JSONEnvelope. Errors returned from RunE are rendered once by Execute,
// either as the structured errors.Error text or as a JSON envelope.
//
// # Full-screen commands
//
// Commands annotated with annotationFullScreen run a Bubble Tea program on
// the alternate screen. Their logs go to a file (log.file, or
// logger.DefaultLogFile) so they never draw over the UI.
package cli
