// Package cli provides the interactive journal command-line client.
//
// It wires configuration, the local cache database, the remote backend and
// the journal services into a REPL. Typical flow: restore or prompt for a
// session, start the connectivity watcher and the auto cleanup loop, then
// execute user commands until exit.
//
// Key features:
//   - Cached reads with forced refresh and gap-only smart sync
//   - Writing dated entries and topics, deleting records
//   - Retention settings, manual cleanup and a confirmed full wipe
//   - Cache statistics and process metrics
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
