// Package flow sequences the verification screen: registration, code entry,
// confirmation, and the resend cooldown.
//
// The controller drives a session.Session but never signs in by itself.
// After a confirmed sign-up it routes to RouteAllSet; after a verified MFA
// code it routes to RouteHome.
package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/crux/internal/client/codeentry"
	"github.com/dmitrijs2005/crux/internal/client/idp"
	"github.com/dmitrijs2005/crux/internal/client/session"
	"github.com/dmitrijs2005/crux/internal/client/timer"
	"github.com/dmitrijs2005/crux/internal/common"
	"github.com/dmitrijs2005/crux/internal/logging"
)

type Stage int

const (
	Registering Stage = iota
	CodeEntry
	Confirming
	Authenticated
	Failed
)

func (s Stage) String() string {
	switch s {
	case Registering:
		return "registering"
	case CodeEntry:
		return "code_entry"
	case Confirming:
		return "confirming"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Mode picks what a completed code confirms.
type Mode int

const (
	ModeSignup Mode = iota
	ModeMFA
)

// Auth is the part of *session.Session the controller uses.
type Auth interface {
	Signup(ctx context.Context, d session.SignUpData) session.Result
	ConfirmSignup(ctx context.Context, identifier, code string) session.Result
	VerifyMFA(ctx context.Context, identifier, code string) session.Result
	ResendConfirmationCode(ctx context.Context, identifier string) session.Result
	Loading() bool
}

const (
	msgResendWait        = "You can request a new code in %d seconds"
	msgResendUnavailable = "A new code cannot be requested now"
	msgNotAccepting      = "The code cannot be changed now"
)

type Options struct {
	CodeLength int
	// Cooldown is the resend countdown in seconds.
	Cooldown  int
	Scheduler timer.Scheduler
	Logger    logging.Logger
	// OnTick is called after each countdown tick.
	OnTick func(left int)
}

// Snapshot is a copy of the controller state for rendering.
type Snapshot struct {
	Stage      Stage
	Mode       Mode
	Identifier string
	Cells      []string
	Focus      int
	TimeLeft   int
	Error      string
	CanResend  bool
	InFlight   bool
}

type Controller struct {
	auth   Auth
	nav    Navigator
	logger logging.Logger

	mu         sync.Mutex
	stage      Stage
	mode       Mode
	identifier string
	entry      *codeentry.Entry
	countdown  *timer.Countdown
	cooldown   int
	errMsg     string
	inflight   bool
	closed     bool
}

func New(auth Auth, nav Navigator, opts Options) *Controller {
	if opts.Cooldown <= 0 {
		opts.Cooldown = common.ResendCooldownSeconds
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	c := &Controller{
		auth:      auth,
		nav:       nav,
		logger:    opts.Logger.With("module", "flow"),
		stage:     Registering,
		entry:     codeentry.New(opts.CodeLength),
		countdown: timer.New(opts.Scheduler),
		cooldown:  opts.Cooldown,
	}
	if opts.OnTick != nil {
		c.countdown.OnTick(opts.OnTick)
	}
	return c
}

// Register submits the sign-up form. On success the controller enters code
// entry for the phone number and navigates to its verify route.
func (c *Controller) Register(ctx context.Context, d session.SignUpData) session.Result {
	c.mu.Lock()
	if c.closed || c.stage != Registering {
		c.mu.Unlock()
		return reject(msgNotAccepting)
	}
	if c.inflight {
		c.mu.Unlock()
		return busy()
	}
	c.inflight = true
	c.mu.Unlock()

	res := c.auth.Signup(ctx, d)

	c.mu.Lock()
	c.inflight = false
	if c.closed {
		c.mu.Unlock()
		return res
	}
	if !res.OK() {
		c.errMsg = res.Message
		c.mu.Unlock()
		return res
	}
	c.enter(d.Phone, ModeSignup)
	c.mu.Unlock()

	c.logger.Info(ctx, "registration submitted", "identity", d.Email)
	c.nav.Navigate(VerifyRoute(d.Phone))
	return res
}

// Enter opens code entry for identifier directly, as when the verify route
// is opened from a link or after a sign-in challenge.
func (c *Controller) Enter(identifier string, mode Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.enter(identifier, mode)
}

func (c *Controller) enter(identifier string, mode Mode) {
	c.identifier = identifier
	c.mode = mode
	c.stage = CodeEntry
	c.errMsg = ""
	c.entry.Clear()
	c.countdown.Start(c.cooldown)
}

// Type applies text typed into cell i. A completed code is submitted at
// once; the returned Result is the confirmation outcome. ok is false when
// nothing was submitted.
func (c *Controller) Type(ctx context.Context, i int, text string) (session.Result, bool) {
	c.mu.Lock()
	if !c.accepting() {
		c.mu.Unlock()
		return session.Result{}, false
	}
	code, complete := c.entry.Input(i, text)
	if !complete {
		c.mu.Unlock()
		return session.Result{}, false
	}
	return c.submit(ctx, code), true
}

// Backspace handles delete pressed in cell i.
func (c *Controller) Backspace(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accepting() {
		c.entry.Backspace(i)
	}
}

// Clear empties the cells, as after a wrong code, so the next completed
// code is submitted again.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accepting() {
		c.entry.Clear()
	}
}

// Submit re-sends the current code after a failed attempt. It is a no-op
// unless every cell is filled.
func (c *Controller) Submit(ctx context.Context) (session.Result, bool) {
	c.mu.Lock()
	if !c.accepting() || !c.entry.Complete() {
		c.mu.Unlock()
		return session.Result{}, false
	}
	return c.submit(ctx, c.entry.Code()), true
}

// submit is entered with mu held and releases it.
func (c *Controller) submit(ctx context.Context, code string) session.Result {
	c.stage = Confirming
	c.inflight = true
	c.errMsg = ""
	identifier, mode := c.identifier, c.mode
	c.mu.Unlock()

	var res session.Result
	if mode == ModeMFA {
		res = c.auth.VerifyMFA(ctx, identifier, code)
	} else {
		res = c.auth.ConfirmSignup(ctx, identifier, code)
	}

	c.mu.Lock()
	c.inflight = false
	if c.closed {
		c.mu.Unlock()
		c.logger.Debug(ctx, "late confirmation result ignored", "identity", identifier)
		return res
	}

	var next Route
	switch {
	case res.OK():
		c.stage = Authenticated
		c.countdown.Stop()
		next = RouteAllSet
		if mode == ModeMFA {
			next = RouteHome
		}
	case terminal(res.Err):
		c.stage = Failed
		c.errMsg = res.Message
		c.countdown.Stop()
	default:
		c.stage = CodeEntry
		c.errMsg = res.Message
	}
	c.mu.Unlock()

	if next != "" {
		c.logger.Info(ctx, "code confirmed", "identity", identifier)
		c.nav.Navigate(next)
	} else {
		c.logger.Debug(ctx, "code rejected", "identity", identifier, "error", res.Message)
	}
	return res
}

// Resend asks for a new registration code. It is refused without calling
// the provider while the countdown runs, while any call is in flight, and in
// MFA mode. An accepted resend always clears the cells and restarts the
// countdown, whatever the provider answers.
func (c *Controller) Resend(ctx context.Context) session.Result {
	c.mu.Lock()
	if c.closed || c.mode != ModeSignup {
		c.mu.Unlock()
		return reject(msgResendUnavailable)
	}
	if c.inflight || c.auth.Loading() {
		c.mu.Unlock()
		return busy()
	}
	if c.stage != CodeEntry {
		c.mu.Unlock()
		return reject(msgResendUnavailable)
	}
	if left := c.countdown.TimeLeft(); left > 0 {
		c.mu.Unlock()
		return reject(fmt.Sprintf(msgResendWait, left))
	}
	c.inflight = true
	identifier := c.identifier
	c.mu.Unlock()

	res := c.auth.ResendConfirmationCode(ctx, identifier)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight = false
	if c.closed {
		return res
	}
	c.entry.Clear()
	c.countdown.Reset(c.cooldown)
	c.errMsg = res.Message
	c.logger.Info(ctx, "code resent", "identity", identifier, "ok", res.OK())
	return res
}

// Close stops the countdown. Results of calls still in flight are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.countdown.Stop()
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	left := c.countdown.TimeLeft()
	return Snapshot{
		Stage:      c.stage,
		Mode:       c.mode,
		Identifier: c.identifier,
		Cells:      c.entry.Cells(),
		Focus:      c.entry.Focus(),
		TimeLeft:   left,
		Error:      c.errMsg,
		InFlight:   c.inflight,
		CanResend: !c.closed && c.stage == CodeEntry && c.mode == ModeSignup &&
			left == 0 && !c.inflight && !c.auth.Loading(),
	}
}

// accepting must be called with mu held.
func (c *Controller) accepting() bool {
	return !c.closed && !c.inflight && c.stage == CodeEntry
}

// terminal failures cannot be fixed by another code: the account is unknown
// or no longer accepts this confirmation.
func terminal(err error) bool {
	return errors.Is(err, idp.ErrUserNotFound) || errors.Is(err, idp.ErrNotAuthorized)
}

func busy() session.Result {
	return session.Result{Outcome: session.Busy, Message: "Another request is in progress, please wait", Err: common.ErrorBusy}
}

func reject(msg string) session.Result {
	return session.Result{Outcome: session.Failure, Message: msg}
}
