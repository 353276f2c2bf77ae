package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/crux/internal/client/idp"
)

// fakeProvider records arguments and returns preset results. When gate is
// set, Authenticate blocks until it is closed.
type fakeProvider struct {
	mu sync.Mutex

	signUpIdentity string
	signUpSecret   string
	signUpAttrs    idp.Attributes
	signUpErr      error

	confirmIdentity, confirmCode string
	confirmErr                   error

	resendIdentity string
	resendErr      error

	authCalls  atomic.Int32
	authResult *idp.AuthResult
	authErr    error
	entered    chan struct{}
	gate       chan struct{}

	mfaCode   string
	mfaTokens *idp.Tokens
	mfaErr    error

	forgotIdentity string
	forgotErr      error

	resetSecret string
	resetErr    error

	signOuts atomic.Int32
	signOut  chan *idp.Tokens
}

func (f *fakeProvider) SignUp(_ context.Context, identity string, secret []byte, attrs idp.Attributes) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signUpIdentity, f.signUpSecret, f.signUpAttrs = identity, string(secret), attrs
	return f.signUpErr
}

func (f *fakeProvider) Authenticate(_ context.Context, identity string, secret []byte) (*idp.AuthResult, error) {
	f.authCalls.Add(1)
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.authResult, f.authErr
}

func (f *fakeProvider) ConfirmRegistration(_ context.Context, identity, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmIdentity, f.confirmCode = identity, code
	return f.confirmErr
}

func (f *fakeProvider) ResendConfirmationCode(_ context.Context, identity string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resendIdentity = identity
	return f.resendErr
}

func (f *fakeProvider) SendMFACode(_ context.Context, identity, code string) (*idp.Tokens, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mfaCode = code
	return f.mfaTokens, f.mfaErr
}

func (f *fakeProvider) ForgotPassword(_ context.Context, identity string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forgotIdentity = identity
	return f.forgotErr
}

func (f *fakeProvider) ConfirmPassword(_ context.Context, identity, code string, newSecret []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetSecret = string(newSecret)
	return f.resetErr
}

func (f *fakeProvider) SignOut(_ context.Context, tokens *idp.Tokens) error {
	f.signOuts.Add(1)
	if f.signOut != nil {
		f.signOut <- tokens
	}
	return nil
}

func idToken(t *testing.T) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":               "user-1",
		"email":             "ana@x.com",
		"name":              "Ana Lee",
		"custom:first_name": "Ana",
		"custom:last_name":  "Lee",
		"custom:role":       "user",
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func tokens(t *testing.T) *idp.Tokens {
	return &idp.Tokens{IDToken: idToken(t), AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 3600}
}

type memProfiles struct {
	mu      sync.Mutex
	saved   *AuthUser
	cleared int
}

func (m *memProfiles) Save(_ context.Context, u *AuthUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *u
	m.saved = &c
	return nil
}

func (m *memProfiles) Load(context.Context) (*AuthUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved, nil
}

func (m *memProfiles) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = nil
	m.cleared++
	return nil
}
