package local

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/crux/internal/client/idp"
	"github.com/dmitrijs2005/crux/internal/common"
)

const (
	issuer   = "crux-local"
	audience = "crux-cli"
)

// issueTokens signs HS256 ID and access tokens carrying the same claims a
// Cognito pool would put in them.
func (p *Provider) issueTokens(u *user) (*idp.Tokens, error) {
	now := p.opts.Now()
	exp := now.Add(p.opts.TokenTTL)

	id := jwt.MapClaims{
		"iss":             issuer,
		"aud":             audience,
		"sub":             u.ID,
		"iat":             now.Unix(),
		"exp":             exp.Unix(),
		"token_use":       "id",
		idp.AttrEmail:     u.Email,
		idp.AttrName:      u.Name,
		idp.AttrFirstName: u.FirstName,
		idp.AttrLastName:  u.LastName,
		idp.AttrRole:      u.Role,
	}
	if u.Phone != "" {
		id[idp.AttrPhoneNumber] = u.Phone
	}

	access := jwt.MapClaims{
		"iss":       issuer,
		"sub":       u.ID,
		"iat":       now.Unix(),
		"exp":       exp.Unix(),
		"token_use": "access",
		"username":  u.Username,
	}

	idToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, id).SignedString(p.opts.Secret)
	if err != nil {
		return nil, err
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, access).SignedString(p.opts.Secret)
	if err != nil {
		return nil, err
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, err
	}

	return &idp.Tokens{
		IDToken:      idToken,
		AccessToken:  accessToken,
		RefreshToken: refresh,
		ExpiresIn:    int32(p.opts.TokenTTL / time.Second),
	}, nil
}
