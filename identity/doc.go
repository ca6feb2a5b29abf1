// Package identity is the thin request layer to the backend identity and
// social REST service. The gateway core makes exactly two calls against it:
// credential verification during the auth handshake and friends-list
// retrieval for presence fan-out.
//
// All calls carry a fixed 10 second timeout. A timeout or transport failure
// is reported as an ordinary error and must be treated by callers exactly
// like an explicit negative response from the backend.
package identity
