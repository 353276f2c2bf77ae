package cli

import (
	"context"
	"fmt"
)

// getStatus is the REPL prompt decoration: the current route and identity.
func (a *App) getStatus() string {
	s := string(a.route)
	if st := a.session.State(); st.Authenticated && st.User != nil {
		s = s + " " + st.User.Email
	}
	return fmt.Sprintf("(%s)", s)
}

// Root greets the user, restores the last identity from the vault and runs
// the REPL.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to Crux CLI (type 'help' for commands)")

	u, err := a.session.Restore(ctx)
	if err != nil {
		a.logger.Warn(ctx, "failed to restore profile", "error", err)
	}
	if u != nil {
		printlnFn(fmt.Sprintf("Last signed in as %s, type 'signin' to continue", u.Identity))
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
