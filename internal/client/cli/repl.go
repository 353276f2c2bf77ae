package cli

import (
	"bufio"
	"context"
	"fmt"

	"github.com/dmitrijs2005/crux/internal/flagx"
)

// printlnFn and printFn are test seams for user-facing output. In tests,
// replace them with stubs.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Verify(ctx context.Context, identifier string) error
	Signin(ctx context.Context) error
	Forgot(ctx context.Context) error
	Signout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Nominees(ctx context.Context, args []string) error
	Settings(ctx context.Context, args []string) error
}

const (
	helpSignedOut = "Available commands: signup, verify <phone>, signin, forgot, exit"
	helpSignedIn  = "Available commands: whoami, nominees [add <email> <relationship> | remove <email>], settings [toggle <name>], signout, exit"
)

// runREPL starts a simple read–eval–print loop for the Crux CLI.
//
// It reads a line from reader, splits it into arguments (quotes
// group words), and dispatches to methods on 'a'. Unknown commands are
// reported back to the user. The loop exits on EOF or when the user types
// "exit" or "quit". Commands prompt for more input on the same reader.
//
//	Signed out:
//	  - help              show available commands
//	  - signup            create an account and confirm the SMS code
//	  - verify <phone>    type a registration code received earlier
//	  - signin            authenticate, with an MFA code when asked
//	  - forgot            reset a forgotten password
//	  - exit | quit       leave the program
//
//	Signed in:
//	  - whoami            show the signed-in profile
//	  - nominees ...      list, add or remove nominees
//	  - settings ...      show or toggle settings
//	  - signout           sign out
//
// Errors returned by command handlers are ignored here; handlers print their
// own messages. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printFn(fmt.Sprintf("crux %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		args, err := flagx.Split(line)
		if err != nil {
			printlnFn(err.Error())
			continue
		}
		if len(args) == 0 {
			continue
		}
		cmd, args := args[0], args[1:]

		if signedInOnly(cmd) && !a.isLoggedIn() {
			printlnFn("Sign in first")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "signup":
			_ = a.Signup(ctx)

		case "verify":
			if len(args) != 1 {
				printlnFn("Usage: verify <phone>")
				continue
			}
			_ = a.Verify(ctx, args[0])

		case "signin", "login":
			_ = a.Signin(ctx)

		case "forgot":
			_ = a.Forgot(ctx)

		case "signout", "logout":
			_ = a.Signout(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "nominees":
			_ = a.Nominees(ctx, args)

		case "settings":
			_ = a.Settings(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func signedInOnly(cmd string) bool {
	switch cmd {
	case "whoami", "nominees", "settings", "signout", "logout":
		return true
	}
	return false
}
