// Package cli provides the interactive Minbar command-line client.
//
// It wires configuration, local storage, the backend gateway, the session
// manager, the content cache, and an interactive REPL. Typical flow: restore
// the previous session, start a background connectivity watcher, and execute
// user commands.
//
// Key features:
//   - Login / Register / Logout against the hosted backend
//   - List / Show / Add / Edit / Delete content entries
//   - Import entries from JSON or CSV files
//   - Export entries and collections to XLSX or PDF
//   - Manage local collections and the notification feed
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
