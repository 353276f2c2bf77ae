// Package local implements idp.Provider against a SQLite database on the
// user's machine. It behaves like a Cognito user pool closely enough for the
// client flows to be exercised end to end without AWS: accounts need a
// confirmation code before sign-in, codes expire and burn after repeated
// wrong attempts, resends are throttled, and MFA-enabled users receive an
// SMS_MFA challenge. Codes are delivered through an sms.Sender.
package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/crux/internal/client/idp"
	"github.com/dmitrijs2005/crux/internal/client/idp/local/migrations"
	"github.com/dmitrijs2005/crux/internal/client/sms"
	"github.com/dmitrijs2005/crux/internal/common"
	"github.com/dmitrijs2005/crux/internal/cryptox"
	"github.com/dmitrijs2005/crux/internal/dbx"
	"github.com/dmitrijs2005/crux/internal/logging"
)

// Provider messages mirror the wording Cognito uses for the same failures.
const (
	msgUserExists      = "User already exists"
	msgBadCredentials  = "Incorrect username or password."
	msgNotConfirmed    = "User is not confirmed."
	msgUserNotFound    = "Username/client id combination not found."
	msgAlreadyConfirm  = "User cannot be confirmed. Current status is CONFIRMED"
	msgCodeMismatch    = "Invalid verification code provided, please try again."
	msgCodeExpired     = "Invalid code provided, please request a code again."
	msgAttemptLimit    = "Attempt limit exceeded, please try after some time."
	msgPasswordPolicy  = "Password did not conform with policy: Password not long enough"
	msgNoMFAInProgress = "Invalid session for the user, session is expired."
)

// Options tunes code lifetimes and throttling. Zero values take defaults.
type Options struct {
	Secret         []byte
	TokenTTL       time.Duration
	SignupCodeTTL  time.Duration
	MFACodeTTL     time.Duration
	ResetCodeTTL   time.Duration
	ResendCooldown time.Duration
	MaxAttempts    int
	CodeLength     int
	Now            func() time.Time
}

func (o *Options) applyDefaults() {
	if len(o.Secret) == 0 {
		o.Secret = common.GenerateRandByteArray(32)
	}
	if o.TokenTTL == 0 {
		o.TokenTTL = time.Hour
	}
	if o.SignupCodeTTL == 0 {
		o.SignupCodeTTL = 24 * time.Hour
	}
	if o.MFACodeTTL == 0 {
		o.MFACodeTTL = 3 * time.Minute
	}
	if o.ResetCodeTTL == 0 {
		o.ResetCodeTTL = time.Hour
	}
	if o.ResendCooldown == 0 {
		o.ResendCooldown = common.ResendCooldownSeconds * time.Second
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = 5
	}
	if o.CodeLength == 0 {
		o.CodeLength = common.CodeLength
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

var validate = validator.New()

type Provider struct {
	db     *sql.DB
	sender sms.Sender
	logger logging.Logger
	opts   Options

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// Open opens (and migrates) the provider database at path. Without
// opts.Secret the key is kept in the database, so codes and tokens stay
// valid across restarts.
func Open(ctx context.Context, path string, sender sms.Sender, logger logging.Logger, opts Options) (*Provider, error) {
	db, err := dbx.Open(ctx, path, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("local idp: %w", err)
	}
	if len(opts.Secret) == 0 {
		secret, err := newStore(db).signingKey(ctx, "default", func() []byte {
			return common.GenerateRandByteArray(32)
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("local idp: %w", err)
		}
		opts.Secret = secret
	}
	return New(db, sender, logger, opts), nil
}

// New builds a provider on an already migrated database.
func New(db *sql.DB, sender sms.Sender, logger logging.Logger, opts Options) *Provider {
	opts.applyDefaults()
	if logger == nil {
		logger = logging.Discard()
	}
	return &Provider{
		db:       db,
		sender:   sender,
		logger:   logger.With("module", "local_idp"),
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Close releases the database.
func (p *Provider) Close() error {
	return p.db.Close()
}

func (p *Provider) store() *store {
	return newStore(p.db)
}

func (p *Provider) SignUp(ctx context.Context, identity string, secret []byte, attrs idp.Attributes) error {
	if err := validate.Var(identity, "required"); err != nil {
		return idp.NewError(idp.ErrInvalidParameter, "Username cannot be empty", err)
	}
	if err := checkPassword(secret); err != nil {
		return err
	}

	salt := cryptox.NewSalt()
	u := &user{
		ID:        uuid.NewString(),
		Username:  identity,
		Email:     attrs[idp.AttrEmail],
		Phone:     attrs[idp.AttrPhoneNumber],
		Name:      attrs[idp.AttrName],
		FirstName: attrs[idp.AttrFirstName],
		LastName:  attrs[idp.AttrLastName],
		Role:      attrs[idp.AttrRole],
		Salt:      salt,
		Verifier:  cryptox.PasswordVerifier(secret, salt),
		CreatedAt: p.opts.Now(),
	}
	if u.Role == "" {
		u.Role = common.DefaultRole
	}

	var plain string
	err := dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		s := newStore(tx)
		exists, err := s.exists(ctx, u.Username, u.Phone)
		if err != nil {
			return err
		}
		if exists {
			return idp.NewError(idp.ErrUserExists, msgUserExists, nil)
		}
		if err := s.createUser(ctx, u); err != nil {
			return err
		}
		plain, err = p.issueCode(ctx, s, u.ID, CodeSignup, p.opts.SignupCodeTTL)
		return err
	})
	if err != nil {
		return wrapInternal(err)
	}

	p.allowResend(u.ID)
	p.logger.Info(ctx, "user registered", "identity", identity)
	return p.deliver(ctx, u, CodeSignup, plain)
}

func (p *Provider) ConfirmRegistration(ctx context.Context, identity, code string) error {
	u, err := p.lookup(ctx, identity, idp.ErrUserNotFound, msgUserNotFound)
	if err != nil {
		return err
	}
	if u.Confirmed {
		return idp.NewError(idp.ErrNotAuthorized, msgAlreadyConfirm, nil)
	}
	if err := p.consumeCode(ctx, u.ID, CodeSignup, code); err != nil {
		return err
	}
	if err := p.store().setConfirmed(ctx, u.ID); err != nil {
		return wrapInternal(err)
	}
	p.logger.Info(ctx, "user confirmed", "identity", identity)
	return nil
}

func (p *Provider) ResendConfirmationCode(ctx context.Context, identity string) error {
	u, err := p.lookup(ctx, identity, idp.ErrUserNotFound, msgUserNotFound)
	if err != nil {
		return err
	}
	if u.Confirmed {
		return idp.NewError(idp.ErrInvalidParameter, "User is already confirmed.", nil)
	}
	if !p.allowResend(u.ID) {
		return idp.NewError(idp.ErrLimitExceeded, msgAttemptLimit, nil)
	}

	plain, err := p.issueCode(ctx, p.store(), u.ID, CodeSignup, p.opts.SignupCodeTTL)
	if err != nil {
		return wrapInternal(err)
	}
	return p.deliver(ctx, u, CodeSignup, plain)
}

func (p *Provider) Authenticate(ctx context.Context, identity string, secret []byte) (*idp.AuthResult, error) {
	u, err := p.lookup(ctx, identity, idp.ErrNotAuthorized, msgBadCredentials)
	if err != nil {
		return nil, err
	}
	if !cryptox.CheckPassword(secret, u.Salt, u.Verifier) {
		return nil, idp.NewError(idp.ErrNotAuthorized, msgBadCredentials, nil)
	}
	if !u.Confirmed {
		return nil, idp.NewError(idp.ErrUserNotConfirmed, msgNotConfirmed, nil)
	}

	if u.MFAEnabled {
		plain, err := p.issueCode(ctx, p.store(), u.ID, CodeMFA, p.opts.MFACodeTTL)
		if err != nil {
			return nil, wrapInternal(err)
		}
		if err := p.deliver(ctx, u, CodeMFA, plain); err != nil {
			return nil, err
		}
		return &idp.AuthResult{Challenge: &idp.Challenge{
			Kind:        idp.ChallengeSMSMFA,
			Destination: maskDestination(destination(u)),
		}}, nil
	}

	tokens, err := p.issueTokens(u)
	if err != nil {
		return nil, wrapInternal(err)
	}
	p.logger.Info(ctx, "user signed in", "identity", identity)
	return &idp.AuthResult{Tokens: tokens}, nil
}

func (p *Provider) SendMFACode(ctx context.Context, identity, code string) (*idp.Tokens, error) {
	u, err := p.lookup(ctx, identity, idp.ErrNotAuthorized, msgNoMFAInProgress)
	if err != nil {
		return nil, err
	}
	if err := p.consumeCode(ctx, u.ID, CodeMFA, code); err != nil {
		if errors.Is(err, idp.ErrExpiredCode) {
			return nil, idp.NewError(idp.ErrNotAuthorized, msgNoMFAInProgress, err)
		}
		return nil, err
	}
	tokens, err := p.issueTokens(u)
	if err != nil {
		return nil, wrapInternal(err)
	}
	p.logger.Info(ctx, "user signed in with mfa", "identity", identity)
	return tokens, nil
}

func (p *Provider) ForgotPassword(ctx context.Context, identity string) error {
	u, err := p.lookup(ctx, identity, idp.ErrUserNotFound, msgUserNotFound)
	if err != nil {
		return err
	}
	plain, err := p.issueCode(ctx, p.store(), u.ID, CodeReset, p.opts.ResetCodeTTL)
	if err != nil {
		return wrapInternal(err)
	}
	return p.deliver(ctx, u, CodeReset, plain)
}

func (p *Provider) ConfirmPassword(ctx context.Context, identity, code string, newSecret []byte) error {
	u, err := p.lookup(ctx, identity, idp.ErrUserNotFound, msgUserNotFound)
	if err != nil {
		return err
	}
	if err := checkPassword(newSecret); err != nil {
		return err
	}
	if err := p.consumeCode(ctx, u.ID, CodeReset, code); err != nil {
		return err
	}
	salt := cryptox.NewSalt()
	if err := p.store().setPassword(ctx, u.ID, salt, cryptox.PasswordVerifier(newSecret, salt)); err != nil {
		return wrapInternal(err)
	}
	p.logger.Info(ctx, "password reset", "identity", identity)
	return nil
}

// SignOut is a no-op: local tokens are stateless and simply expire.
func (p *Provider) SignOut(ctx context.Context, tokens *idp.Tokens) error {
	p.logger.Debug(ctx, "sign out")
	return nil
}

// SetMFA turns the SMS second factor on or off for identity.
func (p *Provider) SetMFA(ctx context.Context, identity string, enabled bool) error {
	u, err := p.lookup(ctx, identity, idp.ErrUserNotFound, msgUserNotFound)
	if err != nil {
		return err
	}
	if err := p.store().setMFA(ctx, u.ID, enabled); err != nil {
		return wrapInternal(err)
	}
	return nil
}

func (p *Provider) lookup(ctx context.Context, identity string, missing error, msg string) (*user, error) {
	u, err := p.store().findUser(ctx, identity)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, idp.NewError(missing, msg, nil)
	}
	if err != nil {
		return nil, wrapInternal(err)
	}
	return u, nil
}

// issueCode replaces any pending code of kind with a fresh one and returns
// the plain value for delivery.
func (p *Provider) issueCode(ctx context.Context, s *store, userID string, kind CodeKind, ttl time.Duration) (string, error) {
	plain, err := common.GenerateNumericCode(p.opts.CodeLength)
	if err != nil {
		return "", err
	}
	c := &code{
		UserID:    userID,
		Kind:      kind,
		Hash:      cryptox.HashCode(p.opts.Secret, plain),
		ExpiresAt: p.opts.Now().Add(ttl),
	}
	if err := s.putCode(ctx, c); err != nil {
		return "", err
	}
	return plain, nil
}

// consumeCode checks plain against the pending code of kind. A match deletes
// the code; a miss counts an attempt and burns the code at MaxAttempts.
// The read and the write share one transaction so concurrent guesses are
// counted one by one.
func (p *Provider) consumeCode(ctx context.Context, userID string, kind CodeKind, plain string) error {
	// verdict is the caller-facing result; the transaction still commits
	// the attempt bookkeeping when it is a rejection.
	var verdict error
	err := dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		s := newStore(tx)
		c, err := s.getCode(ctx, userID, kind)
		if errors.Is(err, common.ErrorNotFound) {
			verdict = idp.NewError(idp.ErrExpiredCode, msgCodeExpired, nil)
			return nil
		}
		if err != nil {
			return err
		}

		if !p.opts.Now().Before(c.ExpiresAt) {
			verdict = idp.NewError(idp.ErrExpiredCode, msgCodeExpired, nil)
			return s.deleteCode(ctx, userID, kind)
		}

		if !cryptox.CheckCode(p.opts.Secret, plain, c.Hash) {
			if c.Attempts+1 >= p.opts.MaxAttempts {
				verdict = idp.NewError(idp.ErrLimitExceeded, msgAttemptLimit, nil)
				return s.deleteCode(ctx, userID, kind)
			}
			verdict = idp.NewError(idp.ErrCodeMismatch, msgCodeMismatch, nil)
			return s.incrementAttempts(ctx, userID, kind)
		}

		return s.deleteCode(ctx, userID, kind)
	})
	if err != nil {
		return wrapInternal(err)
	}
	return verdict
}

// allowResend takes a token from the per-user bucket. The bucket refills one
// token per ResendCooldown, so the first code (sent at sign-up) starts the
// cooldown as well.
func (p *Provider) allowResend(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	l, ok := p.limiters[userID]
	if !ok {
		l = rate.NewLimiter(rate.Every(p.opts.ResendCooldown), 1)
		p.limiters[userID] = l
	}
	return l.AllowN(p.opts.Now(), 1)
}

func (p *Provider) deliver(ctx context.Context, u *user, kind CodeKind, plain string) error {
	to := destination(u)
	if p.sender == nil || to == "" {
		p.logger.Warn(ctx, "no code destination", "identity", u.Username, "kind", kind)
		return nil
	}
	if err := p.sender.Send(ctx, to, codeMessage(kind, plain)); err != nil {
		p.logger.Error(ctx, "code delivery failed", "identity", u.Username, "kind", kind, "error", err)
		return idp.NewError(idp.ErrUnavailable, "Unable to deliver the verification code.", err)
	}
	p.logger.Debug(ctx, "code sent", "identity", u.Username, "kind", kind, "to", maskDestination(to))
	return nil
}

func checkPassword(secret []byte) error {
	if err := validate.Var(string(secret), "min=8,max=256"); err != nil {
		return idp.NewError(idp.ErrInvalidPassword, msgPasswordPolicy, err)
	}
	return nil
}

func wrapInternal(err error) error {
	var pe *idp.Error
	if errors.As(err, &pe) {
		return err
	}
	return idp.NewError(idp.ErrUnavailable, "", err)
}
