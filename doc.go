// Package donate provides the authentication and payment-webhook core for a
// donation/campaign platform: request identity resolution, durable session
// lifecycle, and admin privilege grants.
//
// Identity resolution:
//   - Resolver walks an ordered list of authentication strategies. Each
//     strategy returns a typed Outcome (success, skip, hard fail) so the
//     "prefer bearer tokens, fall back to session cookies" policy is explicit
//     and reviewable rather than buried in control flow.
//   - BearerStrategy re-verifies identity-provider tokens per request against
//     a TokenVerifier (see provider/jwks). Verification failures skip to the
//     next strategy; only total failure yields ErrUnauthenticated.
//   - SessionStrategy maps an opaque cookie value to a store-backed Session.
//     Expired sessions behave exactly like missing ones.
//
// Sessions:
//   - SessionStore owns the sessions table. Identifiers are 32 bytes of
//     crypto/rand entropy, base64url encoded. Create, Get, and Delete all hit
//     durable storage; there is no in-process cache to invalidate.
//
// Admin grants:
//   - AdminGate is the single path that can set the admin attribute on a
//     user. It re-verifies the raw requester token instead of trusting a
//     previously resolved Principal, and its requester-authorization policy
//     is configurable via GatePolicy.
//
// Webhook ingestion lives in the webhook subpackage; identity-provider token
// verification lives in provider/jwks.
package donate
