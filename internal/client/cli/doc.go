// Package cli provides the interactive point-of-sale client shell.
//
// It wires configuration, the local session database, the session store and
// the authenticated API client, then runs a small REPL. A persisted session
// is resumed on start and re-validated with the backend.
//
// Key features:
//   - Login / Logout / WhoAmI / Status
//   - Raw authenticated GET and POST against any backend path
//   - A notice when the backend ends the session (refresh failed)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
