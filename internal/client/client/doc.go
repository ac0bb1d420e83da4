// Package client is the authenticated REST client of the POS backend.
//
// # Overview
//
// The package provides:
//  1. The collaborator contract (Client) with Do, Login, Logout,
//     FetchCurrentUser and a read-only SessionView.
//  2. HTTPClient, which attaches "Authorization: Bearer <token>", detects an
//     expired access token (HTTP 401), refreshes it once through a shared
//     single-flight call, retries the original request once, and ends the
//     session when recovery is impossible.
//  3. Request[T], a JSON-decoding wrapper over Do.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) for the
//     SQLite file that backs the session store.
//
// # Request life cycle
//
//	ISSUE ──2xx / non-401──▶ done
//	  │401
//	  ▼
//	REFRESHING ──no refresh token / refresh failed──▶ session terminated, original 401 returned
//	  │rotated
//	  ▼
//	RETRY_ISSUE ──any result (a second 401 included)──▶ done
//
// # Error Handling
//
// Transport failures are *NetworkError (errors.Is(err, ErrUnavailable)).
// Non-2xx answers are *HTTPError; 401/403 also match ErrUnauthorized.
// The client never navigates: after a 401 callers check
// Session().IsAuthenticated() and send the user to sign-in.
//
// # Concurrency
//
// HTTPClient is safe for concurrent use. Cancelling a caller's context never
// starts a refresh and never ends the session.
package client
