// Package idp defines the contract between the Crux client and the external
// identity provider that owns accounts, credentials and one-time codes.
//
// # Overview
//
// Provider is transport-agnostic. Two implementations live in subpackages:
//   - cognito: AWS Cognito user pools, the production provider.
//   - local:   a SQLite-backed provider for development and offline demos.
//
// Authenticate returns a tagged AuthResult: either Tokens (signed in) or a
// Challenge (a next step such as an SMS MFA code). A challenge is not an error.
//
// # Error Handling
//
// Provider failures are reported as *Error values that wrap one of the
// sentinel errors below, so callers can match with errors.Is and still show
// the provider's own wording through Message.
package idp
