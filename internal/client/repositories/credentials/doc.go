// Package credentials persists the session credentials (access token,
// refresh token, serialized user) in the client's SQLite database.
//
// The repository is built over dbx.DBTX, so the same code runs against a
// *sql.DB or inside a transaction opened with dbx.WithTx.
package credentials
