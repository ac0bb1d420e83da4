// Package session holds the client's single authentication session: the
// access token, the optional refresh token and the signed-in user.
//
// # Lifecycle
//
// A Store starts empty, is hydrated once from durable storage, and is then
// changed only by three transitions:
//
//   - Establish   : sign in (or re-affirm); replaces every field.
//   - RotateTokens: adopt a refreshed token pair; the user is untouched.
//   - Terminate   : sign out; clears memory and storage.
//
// Each transition writes storage in one transaction before it returns, so
// a restart resumes exactly the last committed session.
//
// # Readers
//
// Snapshot, IsAuthenticated and User give a consistent read-only view.
// Subscribe delivers a Snapshot after each transition, which is what UI
// code uses for gating.
package session
