// Package jwks verifies identity-provider bearer tokens against a
// remote JWK Set.
//
// Use this package with donate.NewDefaultResolver (or a BearerStrategy)
// to accept provider-issued tokens while preserving session fallback
// behavior.
package jwks
