// Package session holds the authentication state shared by every screen of
// the client: the signed-in user, the loading flag and the last error.
//
// All credential operations go through *Session. Only one of them runs at a
// time; a call made while another is in flight returns a Busy result and
// never reaches the identity provider. Operations report a tagged Result so
// callers can tell a required next step (an MFA challenge) from a failure.
//
// Signout bumps an internal epoch. Provider responses that arrive for an
// operation started before the sign-out are dropped without touching state.
package session
