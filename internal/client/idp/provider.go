package idp

import (
	"context"
	"fmt"
)

// Provider is the identity provider client contract.
//
// All methods must honor context cancellation/timeouts. Implementations
// must be safe for concurrent use.
type Provider interface {
	SignUp(ctx context.Context, identity string, secret []byte, attrs Attributes) error
	Authenticate(ctx context.Context, identity string, secret []byte) (*AuthResult, error)
	ConfirmRegistration(ctx context.Context, identity, code string) error
	ResendConfirmationCode(ctx context.Context, identity string) error
	SendMFACode(ctx context.Context, identity, code string) (*Tokens, error)
	ForgotPassword(ctx context.Context, identity string) error
	ConfirmPassword(ctx context.Context, identity, code string, newSecret []byte) error
	SignOut(ctx context.Context, tokens *Tokens) error
}

// Tokens is the token set issued on a successful authentication.
type Tokens struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int32
}

// ChallengeKind names the next step the provider requires.
type ChallengeKind string

const (
	ChallengeSMSMFA           ChallengeKind = "SMS_MFA"
	ChallengeSoftwareTokenMFA ChallengeKind = "SOFTWARE_TOKEN_MFA"
)

// Challenge is returned instead of Tokens when a second factor is required.
// Destination is a masked hint such as "+*******4567" when the provider
// discloses one.
type Challenge struct {
	Kind        ChallengeKind
	Destination string
}

// AuthResult carries exactly one of Tokens or Challenge.
type AuthResult struct {
	Tokens    *Tokens
	Challenge *Challenge
}

// Validate reports a malformed result, which is a provider bug.
func (r *AuthResult) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: empty authentication result", ErrInvalidParameter)
	}
	if (r.Tokens == nil) == (r.Challenge == nil) {
		return fmt.Errorf("%w: authentication result must carry tokens or a challenge", ErrInvalidParameter)
	}
	return nil
}

// Attribute names sent on sign-up and read back from the ID token.
const (
	AttrName        = "name"
	AttrEmail       = "email"
	AttrPhoneNumber = "phone_number"
	AttrFirstName   = "custom:first_name"
	AttrLastName    = "custom:last_name"
	AttrRole        = "custom:role"
)

// Attributes is the user attribute set sent with SignUp.
type Attributes map[string]string
