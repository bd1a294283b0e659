// Package cli provides the interactive StillAlive command-line client.
//
// It wires configuration, the local store, the sync manager, and an
// interactive REPL that works fully offline. Typical flow: open the device
// database, start background auto-sync, and execute user commands.
//
// Key features:
//   - Daily check-in with optional note and mood
//   - List check-ins by month and show streak statistics
//   - Manage remembered contacts (add, list, delete, birthdays)
//   - Sync with the authority and resolve conflicts manually
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
