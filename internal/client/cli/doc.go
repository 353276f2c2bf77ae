// Package cli provides the interactive Crux command-line client.
//
// It wires configuration, the local vault database, the identity provider
// and an interactive REPL. Typical flow: sign up, type the code sent by SMS,
// sign in (answering an MFA code when asked), then manage nominees and
// settings.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL and App.codeScreen for details.
package cli
