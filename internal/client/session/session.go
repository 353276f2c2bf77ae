package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/crux/internal/client/idp"
	"github.com/dmitrijs2005/crux/internal/common"
	"github.com/dmitrijs2005/crux/internal/logging"
)

const (
	msgBusy       = "Another request is in progress, please wait"
	msgSignedOut  = "Signed out while the request was in progress"
	msgCodeFormat = "Enter the %d-digit code"
)

const defaultSignOutTimeout = 10 * time.Second

type Option func(*Session)

// WithProfileStore caches the profile of the signed-in user.
func WithProfileStore(p ProfileStore) Option {
	return func(s *Session) { s.profiles = p }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithCodeLength sets the number of digits a code must have.
func WithCodeLength(n int) Option {
	return func(s *Session) { s.codeLength = n }
}

// WithSignOutTimeout bounds the background provider sign-out.
func WithSignOutTimeout(d time.Duration) Option {
	return func(s *Session) { s.signOutTimeout = d }
}

// Session is safe for concurrent use.
type Session struct {
	provider       idp.Provider
	profiles       ProfileStore
	logger         logging.Logger
	signOutTimeout time.Duration
	codeLength     int

	mu            sync.Mutex
	user          *AuthUser
	tokens        *idp.Tokens
	authenticated bool
	loading       bool
	errMsg        string
	challenge     *idp.Challenge
	identity      string
	epoch         uint64

	background sync.WaitGroup
}

func New(provider idp.Provider, opts ...Option) *Session {
	s := &Session{
		provider:       provider,
		logger:         logging.Discard(),
		signOutTimeout: defaultSignOutTimeout,
		codeLength:     common.CodeLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("module", "session")
	return s
}

// Signup registers a new account. Success does not sign the user in.
func (s *Session) Signup(ctx context.Context, d SignUpData) Result {
	epoch, ok := s.begin()
	if !ok {
		return busy()
	}
	if err := validate.Struct(d); err != nil {
		return s.reject(epoch, validationMessage(err))
	}

	secret := []byte(d.Password)
	defer common.WipeByteArray(secret)

	if err := s.provider.SignUp(ctx, d.Email, secret, d.attributes()); err != nil {
		return s.fail(ctx, epoch, "signup", d.Email, err)
	}
	s.logger.Info(ctx, "signed up", "identity", d.Email)
	return s.succeed(epoch, func() { s.identity = d.Email })
}

// ConfirmSignup submits the registration code. The session stays signed out.
func (s *Session) ConfirmSignup(ctx context.Context, identifier, code string) Result {
	epoch, ok := s.begin()
	if !ok {
		return busy()
	}
	if !s.validCode(code) {
		return s.reject(epoch, fmt.Sprintf(msgCodeFormat, s.codeLength))
	}
	if err := s.provider.ConfirmRegistration(ctx, identifier, code); err != nil {
		return s.fail(ctx, epoch, "confirm signup", identifier, err)
	}
	s.logger.Info(ctx, "registration confirmed", "identity", identifier)
	return s.succeed(epoch, nil)
}

// Signin authenticates with a password. When the provider asks for a second
// factor the result is a Challenge and Error stays empty.
func (s *Session) Signin(ctx context.Context, identifier, password string) Result {
	epoch, ok := s.begin()
	if !ok {
		return busy()
	}

	secret := []byte(password)
	defer common.WipeByteArray(secret)

	res, err := s.provider.Authenticate(ctx, identifier, secret)
	if err != nil {
		return s.fail(ctx, epoch, "signin", identifier, err)
	}
	if err := res.Validate(); err != nil {
		return s.fail(ctx, epoch, "signin", identifier, err)
	}

	if c := res.Challenge; c != nil {
		s.logger.Info(ctx, "challenge required", "identity", identifier, "kind", c.Kind)
		applied := s.finish(epoch, func() {
			s.user, s.tokens, s.authenticated = nil, nil, false
			s.challenge = c
			s.identity = identifier
		})
		if !applied {
			return stale()
		}
		return Result{Outcome: Challenge, Challenge: c}
	}
	return s.establish(ctx, epoch, identifier, res.Tokens)
}

// VerifyMFA answers the pending challenge. Same contract as Signin.
func (s *Session) VerifyMFA(ctx context.Context, identifier, code string) Result {
	epoch, ok := s.begin()
	if !ok {
		return busy()
	}
	if !s.validCode(code) {
		return s.reject(epoch, fmt.Sprintf(msgCodeFormat, s.codeLength))
	}
	tokens, err := s.provider.SendMFACode(ctx, identifier, code)
	if err != nil {
		return s.fail(ctx, epoch, "verify mfa", identifier, err)
	}
	return s.establish(ctx, epoch, identifier, tokens)
}

// ResendConfirmationCode asks for a new registration code. A failure only
// lands in Error.
func (s *Session) ResendConfirmationCode(ctx context.Context, identifier string) Result {
	epoch, ok := s.begin()
	if !ok {
		return busy()
	}
	if err := s.provider.ResendConfirmationCode(ctx, identifier); err != nil {
		return s.fail(ctx, epoch, "resend code", identifier, err)
	}
	return s.succeed(epoch, nil)
}

// ForgotPassword starts a password reset; the code goes to the user's
// verified contact.
func (s *Session) ForgotPassword(ctx context.Context, identifier string) Result {
	epoch, ok := s.begin()
	if !ok {
		return busy()
	}
	if err := s.provider.ForgotPassword(ctx, identifier); err != nil {
		return s.fail(ctx, epoch, "forgot password", identifier, err)
	}
	return s.succeed(epoch, func() { s.identity = identifier })
}

// ConfirmPassword sets a new password using the reset code.
func (s *Session) ConfirmPassword(ctx context.Context, identifier, code, newPassword string) Result {
	epoch, ok := s.begin()
	if !ok {
		return busy()
	}
	if !s.validCode(code) {
		return s.reject(epoch, fmt.Sprintf(msgCodeFormat, s.codeLength))
	}
	if err := validate.Var(newPassword, "required,min=8,max=256"); err != nil {
		return s.reject(epoch, "Password must be at least 8 characters")
	}

	secret := []byte(newPassword)
	defer common.WipeByteArray(secret)

	if err := s.provider.ConfirmPassword(ctx, identifier, code, secret); err != nil {
		return s.fail(ctx, epoch, "confirm password", identifier, err)
	}
	s.logger.Info(ctx, "password reset", "identity", identifier)
	return s.succeed(epoch, nil)
}

// Signout clears the session at once. The provider sign-out runs in the
// background and its failure is only logged. Results of calls still in
// flight are discarded.
func (s *Session) Signout(ctx context.Context) {
	s.mu.Lock()
	tokens := s.tokens
	s.user, s.tokens = nil, nil
	s.authenticated = false
	s.challenge = nil
	s.identity = ""
	s.errMsg = ""
	s.epoch++
	s.mu.Unlock()

	if s.profiles != nil {
		if err := s.profiles.Clear(ctx); err != nil {
			s.logger.Warn(ctx, "failed to clear cached profile", "error", err)
		}
	}

	if tokens == nil {
		return
	}
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.signOutTimeout)
		defer cancel()
		if err := s.provider.SignOut(ctx, tokens); err != nil {
			s.logger.Warn(ctx, "provider sign-out failed", "error", err)
			return
		}
		s.logger.Debug(ctx, "provider sign-out done")
	}()
}

// Wait blocks until background sign-outs finish.
func (s *Session) Wait() {
	s.background.Wait()
}

// Restore loads the cached profile so prompts can offer the last identity.
// It does not sign the user in: tokens are never cached.
func (s *Session) Restore(ctx context.Context) (*AuthUser, error) {
	if s.profiles == nil {
		return nil, nil
	}
	u, err := s.profiles.Load(ctx)
	if err != nil || u == nil {
		return nil, err
	}

	s.mu.Lock()
	if s.identity == "" {
		s.identity = u.Identity
	}
	s.mu.Unlock()
	return u, nil
}

// State returns a copy of the current state.
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Authenticated: s.authenticated,
		Loading:       s.loading,
		Error:         s.errMsg,
		Identity:      s.identity,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	if s.challenge != nil {
		c := *s.challenge
		snap.Challenge = &c
	}
	return snap
}

// Loading reports whether a credential operation is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Session) establish(ctx context.Context, epoch uint64, identifier string, tokens *idp.Tokens) Result {
	if tokens == nil {
		err := fmt.Errorf("%w: empty token set", idp.ErrInvalidParameter)
		return s.fail(ctx, epoch, "establish session", identifier, err)
	}
	payload, err := idp.DecodeIDToken(tokens.IDToken)
	if err != nil {
		return s.fail(ctx, epoch, "decode id token", identifier, err)
	}
	u := userFromPayload(identifier, payload)

	applied := s.finish(epoch, func() {
		s.user = u
		s.tokens = tokens
		s.authenticated = true
		s.challenge = nil
		s.identity = identifier
	})
	if !applied {
		return stale()
	}
	s.logger.Info(ctx, "signed in", "identity", identifier, "user_id", u.ID)

	if s.profiles != nil {
		if err := s.profiles.Save(ctx, u); err != nil {
			s.logger.Warn(ctx, "failed to cache profile", "error", err)
		}
	}
	return Result{Outcome: Success}
}

// begin takes the loading flag. It fails when another operation holds it.
func (s *Session) begin() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return 0, false
	}
	s.loading = true
	s.errMsg = ""
	return s.epoch, true
}

// finish releases the loading flag and applies fn unless a sign-out
// happened since begin.
func (s *Session) finish(epoch uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if epoch != s.epoch {
		return false
	}
	if fn != nil {
		fn()
	}
	return true
}

func (s *Session) succeed(epoch uint64, fn func()) Result {
	if !s.finish(epoch, fn) {
		return stale()
	}
	return Result{Outcome: Success}
}

func (s *Session) reject(epoch uint64, msg string) Result {
	if !s.finish(epoch, func() { s.errMsg = msg }) {
		return stale()
	}
	return Result{Outcome: Failure, Message: msg}
}

func (s *Session) fail(ctx context.Context, epoch uint64, op, identifier string, err error) Result {
	s.logger.Warn(ctx, op+" failed", "identity", identifier, "error", err)
	msg := idp.Message(err)
	if !s.finish(epoch, func() { s.errMsg = msg }) {
		return stale()
	}
	return Result{Outcome: Failure, Message: msg, Err: err}
}

func busy() Result {
	return Result{Outcome: Busy, Message: msgBusy, Err: common.ErrorBusy}
}

func stale() Result {
	return Result{Outcome: Failure, Message: msgSignedOut}
}

func (s *Session) validCode(code string) bool {
	return len(code) == s.codeLength && common.IsDigits(code)
}
