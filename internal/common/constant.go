// Package common contains shared constants, sentinel errors and small helpers
// used across the Crux client packages.
package common

const (
	// CodeLength is the number of digits in a verification or MFA code.
	CodeLength = 6

	// ResendCooldownSeconds gates the "resend code" action after a code was sent.
	ResendCooldownSeconds = 29

	// DefaultRole is assigned to every self-registered account.
	DefaultRole = "user"
)
