package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/crux/internal/client/flow"
	"github.com/dmitrijs2005/crux/internal/client/session"
	"github.com/dmitrijs2005/crux/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// Signup prompts for the registration form, submits it and, on success,
// opens the code screen for the phone number.
func (a *App) Signup(ctx context.Context) error {
	a.Navigate(flow.RouteSignup)

	var d session.SignUpData
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"First name", &d.FirstName},
		{"Last name", &d.LastName},
		{"Email", &d.Email},
		{"Phone number (e.g. +15551234567)", &d.Phone},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	d.Password = string(password)

	c := a.newController()
	if err := a.report(c.Register(ctx, d), ""); err != nil {
		c.Close()
		return err
	}
	printlnFn(fmt.Sprintf("We sent a %d-digit code to %s", a.config.CodeLength, d.Phone))
	return a.codeScreen(ctx, c)
}

// Verify opens the code screen for a registration that is waiting for its
// code. identifier is a phone number or a verify route.
func (a *App) Verify(ctx context.Context, identifier string) error {
	if id, ok := flow.Route(identifier).VerifyIdentifier(); ok {
		identifier = id
	}
	c := a.newController()
	c.Enter(identifier, flow.ModeSignup)
	a.Navigate(flow.VerifyRoute(identifier))
	return a.codeScreen(ctx, c)
}

// Signin prompts for credentials. When the provider asks for an MFA code
// the code screen opens in MFA mode.
func (a *App) Signin(ctx context.Context) error {
	a.Navigate(flow.RouteSignin)

	prompt := "Email"
	last := a.session.State().Identity
	if last != "" {
		prompt = fmt.Sprintf("Email [%s]", last)
	}
	identifier, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if identifier == "" {
		identifier = last
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.session.Signin(ctx, identifier, string(password))
	switch res.Outcome {
	case session.Success:
		a.Navigate(flow.RouteHome)
		a.greet()
		return nil
	case session.Challenge:
		dest := res.Challenge.Destination
		if dest == "" {
			dest = "your phone"
		}
		printlnFn("Enter the code sent to " + dest)
		c := a.newController()
		c.Enter(identifier, flow.ModeMFA)
		a.Navigate(flow.VerifyRoute(identifier))
		if err := a.codeScreen(ctx, c); err != nil {
			return err
		}
		if !a.isLoggedIn() {
			return errors.New("sign-in not completed")
		}
		a.greet()
		return nil
	default:
		return a.report(res, "")
	}
}

// Forgot sends a reset code and sets the new password.
func (a *App) Forgot(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	if err := a.report(a.session.ForgotPassword(ctx, identifier), "A reset code was sent"); err != nil {
		return err
	}

	code, err := getSimpleText(a.reader, "Reset code", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.session.ConfirmPassword(ctx, identifier, code, string(password))
	return a.report(res, "Password changed, sign in with the new one")
}

// Signout clears the session. The provider is told in the background.
func (a *App) Signout(ctx context.Context) error {
	a.session.Signout(ctx)
	a.Navigate(flow.RouteSignin)
	printlnFn("Signed out")
	return nil
}

// Whoami prints the signed-in profile.
func (a *App) Whoami(_ context.Context) error {
	st := a.session.State()
	if !st.Authenticated || st.User == nil {
		printlnFn("Not signed in")
		return nil
	}
	u := st.User
	printlnFn(fmt.Sprintf("%s <%s>", u.Name, u.Email))
	printlnFn("Role: " + u.Role)
	printlnFn("User ID: " + u.ID)
	return nil
}

func (a *App) greet() {
	if u := a.session.State().User; u != nil {
		name := u.FirstName
		if name == "" {
			name = u.Email
		}
		printlnFn("Welcome, " + name)
	}
}
