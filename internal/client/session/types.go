package session

import (
	"strings"

	"github.com/dmitrijs2005/crux/internal/client/idp"
	"github.com/dmitrijs2005/crux/internal/common"
)

// Outcome tags a Result.
type Outcome int

const (
	Success Outcome = iota
	Challenge
	Failure
	Busy
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Challenge:
		return "challenge"
	case Failure:
		return "failure"
	case Busy:
		return "busy"
	default:
		return "unknown"
	}
}

// Result is what every credential operation returns. Message is the
// user-facing error for Failure and Busy. Err is the provider error behind a
// Failure, if any, and common.ErrorBusy for Busy. Challenge is set for Challenge.
type Result struct {
	Outcome   Outcome
	Message   string
	Err       error
	Challenge *idp.Challenge
}

// OK reports plain success.
func (r Result) OK() bool {
	return r.Outcome == Success
}

// AuthUser is the signed-in identity decoded from the provider's ID token.
type AuthUser struct {
	ID        string `json:"id"`
	Identity  string `json:"identity"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

func userFromPayload(identity string, p *idp.TokenPayload) *AuthUser {
	return &AuthUser{
		ID:        p.Subject,
		Identity:  identity,
		Email:     p.Email,
		Name:      p.Name,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Role:      p.Role,
	}
}

// SignUpData is the registration form. Phone is E.164 ("+15551234567").
type SignUpData struct {
	FirstName string `validate:"required,max=64"`
	LastName  string `validate:"required,max=64"`
	Email     string `validate:"required,email"`
	Phone     string `validate:"required,e164"`
	Password  string `validate:"required,min=8,max=256"`
}

func (d SignUpData) attributes() idp.Attributes {
	return idp.Attributes{
		idp.AttrName:        strings.TrimSpace(d.FirstName + " " + d.LastName),
		idp.AttrFirstName:   d.FirstName,
		idp.AttrLastName:    d.LastName,
		idp.AttrRole:        common.DefaultRole,
		idp.AttrPhoneNumber: d.Phone,
		idp.AttrEmail:       d.Email,
	}
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	User          *AuthUser
	Authenticated bool
	Loading       bool
	Error         string
	Challenge     *idp.Challenge
	Identity      string
}
