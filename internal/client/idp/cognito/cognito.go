// Package cognito implements idp.Provider on top of an AWS Cognito user pool
// app client (USER_PASSWORD_AUTH flow, no client secret).
package cognito

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"

	"github.com/dmitrijs2005/crux/internal/client/idp"
	"github.com/dmitrijs2005/crux/internal/logging"
)

// API is the subset of *cognitoidentityprovider.Client the adapter calls.
// Tests substitute a fake.
type API interface {
	SignUp(ctx context.Context, in *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, in *cip.ConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
	ResendConfirmationCode(ctx context.Context, in *cip.ResendConfirmationCodeInput, optFns ...func(*cip.Options)) (*cip.ResendConfirmationCodeOutput, error)
	InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	RespondToAuthChallenge(ctx context.Context, in *cip.RespondToAuthChallengeInput, optFns ...func(*cip.Options)) (*cip.RespondToAuthChallengeOutput, error)
	ForgotPassword(ctx context.Context, in *cip.ForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, in *cip.ConfirmForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error)
	GlobalSignOut(ctx context.Context, in *cip.GlobalSignOutInput, optFns ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error)
}

// Config selects the user pool app client.
type Config struct {
	Region          string
	UserPoolID      string
	ClientID        string
	AccessKeyID     string
	SecretAccessKey string
}

// challenge is a pending MFA step between Authenticate and SendMFACode.
type challenge struct {
	kind    idp.ChallengeKind
	session string
}

type Provider struct {
	api      API
	clientID string
	logger   logging.Logger

	mu      sync.Mutex
	pending map[string]challenge
	// usernames maps the phone number given on sign-up to the username it
	// was registered under, so confirmation can be addressed by phone.
	usernames map[string]string
}

// New loads the AWS configuration for cfg.Region and returns a Provider
// bound to the pool's app client. Static credentials are optional; the
// unauthenticated user-pool operations do not need them.
func New(ctx context.Context, cfg Config, logger logging.Logger) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("cognito: client id is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("cognito: load aws config: %w", err)
	}

	p := NewWithAPI(cip.NewFromConfig(awsCfg), cfg.ClientID, logger)
	p.logger.Info(ctx, "cognito provider ready", "region", cfg.Region, "user_pool", cfg.UserPoolID)
	return p, nil
}

// NewWithAPI wraps an already constructed API client.
func NewWithAPI(api API, clientID string, logger logging.Logger) *Provider {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Provider{
		api:       api,
		clientID:  clientID,
		logger:    logger.With("module", "cognito"),
		pending:   make(map[string]challenge),
		usernames: make(map[string]string),
	}
}

func (p *Provider) SignUp(ctx context.Context, identity string, secret []byte, attrs idp.Attributes) error {
	in := &cip.SignUpInput{
		ClientId:       aws.String(p.clientID),
		Username:       aws.String(identity),
		Password:       aws.String(string(secret)),
		UserAttributes: toAttributeTypes(attrs),
	}
	if _, err := p.api.SignUp(ctx, in); err != nil {
		return mapError(err)
	}
	if phone := attrs[idp.AttrPhoneNumber]; phone != "" && phone != identity {
		p.mu.Lock()
		p.usernames[phone] = identity
		p.mu.Unlock()
	}
	return nil
}

func (p *Provider) ConfirmRegistration(ctx context.Context, identity, code string) error {
	in := &cip.ConfirmSignUpInput{
		ClientId:         aws.String(p.clientID),
		Username:         aws.String(p.username(identity)),
		ConfirmationCode: aws.String(code),
	}
	if _, err := p.api.ConfirmSignUp(ctx, in); err != nil {
		return mapError(err)
	}
	return nil
}

func (p *Provider) ResendConfirmationCode(ctx context.Context, identity string) error {
	in := &cip.ResendConfirmationCodeInput{
		ClientId: aws.String(p.clientID),
		Username: aws.String(p.username(identity)),
	}
	if _, err := p.api.ResendConfirmationCode(ctx, in); err != nil {
		return mapError(err)
	}
	return nil
}

func (p *Provider) Authenticate(ctx context.Context, identity string, secret []byte) (*idp.AuthResult, error) {
	in := &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"USERNAME": identity,
			"PASSWORD": string(secret),
		},
	}
	out, err := p.api.InitiateAuth(ctx, in)
	if err != nil {
		return nil, mapError(err)
	}

	if out.AuthenticationResult != nil {
		p.clearChallenge(identity)
		return &idp.AuthResult{Tokens: toTokens(out.AuthenticationResult)}, nil
	}

	kind, ok := supportedChallenge(out.ChallengeName)
	if !ok {
		return nil, idp.NewError(idp.ErrInvalidParameter,
			fmt.Sprintf("Unsupported sign-in challenge %q", out.ChallengeName), nil)
	}

	p.mu.Lock()
	p.pending[identity] = challenge{kind: kind, session: aws.ToString(out.Session)}
	p.mu.Unlock()

	p.logger.Debug(ctx, "challenge required", "identity", identity, "challenge", kind)
	return &idp.AuthResult{Challenge: &idp.Challenge{
		Kind:        kind,
		Destination: out.ChallengeParameters["CODE_DELIVERY_DESTINATION"],
	}}, nil
}

func (p *Provider) SendMFACode(ctx context.Context, identity, code string) (*idp.Tokens, error) {
	p.mu.Lock()
	ch, ok := p.pending[identity]
	p.mu.Unlock()
	if !ok {
		return nil, idp.NewError(idp.ErrNotAuthorized, "No sign-in challenge in progress, please sign in again.", nil)
	}

	responseKey := "SMS_MFA_CODE"
	if ch.kind == idp.ChallengeSoftwareTokenMFA {
		responseKey = "SOFTWARE_TOKEN_MFA_CODE"
	}

	in := &cip.RespondToAuthChallengeInput{
		ChallengeName: types.ChallengeNameType(ch.kind),
		ClientId:      aws.String(p.clientID),
		Session:       aws.String(ch.session),
		ChallengeResponses: map[string]string{
			"USERNAME":  identity,
			responseKey: code,
		},
	}
	out, err := p.api.RespondToAuthChallenge(ctx, in)
	if err != nil {
		return nil, mapError(err)
	}
	if out.AuthenticationResult == nil {
		return nil, idp.NewError(idp.ErrInvalidParameter, "Unexpected additional challenge", nil)
	}

	p.clearChallenge(identity)
	return toTokens(out.AuthenticationResult), nil
}

func (p *Provider) ForgotPassword(ctx context.Context, identity string) error {
	in := &cip.ForgotPasswordInput{
		ClientId: aws.String(p.clientID),
		Username: aws.String(identity),
	}
	if _, err := p.api.ForgotPassword(ctx, in); err != nil {
		return mapError(err)
	}
	return nil
}

func (p *Provider) ConfirmPassword(ctx context.Context, identity, code string, newSecret []byte) error {
	in := &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(p.clientID),
		Username:         aws.String(identity),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(string(newSecret)),
	}
	if _, err := p.api.ConfirmForgotPassword(ctx, in); err != nil {
		return mapError(err)
	}
	return nil
}

// SignOut revokes the tokens issued to this device. A nil token set or one
// without an access token is a no-op.
func (p *Provider) SignOut(ctx context.Context, tokens *idp.Tokens) error {
	if tokens == nil || tokens.AccessToken == "" {
		return nil
	}
	if _, err := p.api.GlobalSignOut(ctx, &cip.GlobalSignOutInput{AccessToken: aws.String(tokens.AccessToken)}); err != nil {
		return mapError(err)
	}
	return nil
}

// username resolves a phone number registered by this provider to its
// pool username. Anything else is passed through as is.
func (p *Provider) username(identity string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if u, ok := p.usernames[identity]; ok {
		return u
	}
	return identity
}

func (p *Provider) clearChallenge(identity string) {
	p.mu.Lock()
	delete(p.pending, identity)
	p.mu.Unlock()
}

func supportedChallenge(name types.ChallengeNameType) (idp.ChallengeKind, bool) {
	switch name {
	case types.ChallengeNameTypeSmsMfa:
		return idp.ChallengeSMSMFA, true
	case types.ChallengeNameTypeSoftwareTokenMfa:
		return idp.ChallengeSoftwareTokenMFA, true
	default:
		return "", false
	}
}

func toAttributeTypes(attrs idp.Attributes) []types.AttributeType {
	out := make([]types.AttributeType, 0, len(attrs))
	for k, v := range attrs {
		if v == "" {
			continue
		}
		out = append(out, types.AttributeType{Name: aws.String(k), Value: aws.String(v)})
	}
	return out
}

func toTokens(r *types.AuthenticationResultType) *idp.Tokens {
	return &idp.Tokens{
		IDToken:      aws.ToString(r.IdToken),
		AccessToken:  aws.ToString(r.AccessToken),
		RefreshToken: aws.ToString(r.RefreshToken),
		ExpiresIn:    r.ExpiresIn,
	}
}
