package idp

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-key"))
	require.NoError(t, err)
	return s
}

func TestDecodeIDToken_CustomClaims(t *testing.T) {
	tok := signed(t, jwt.MapClaims{
		"sub":               "3f2c",
		"email":             "ana@x.com",
		"name":              "Ana Lee",
		"custom:first_name": "Ana",
		"custom:last_name":  "Lee",
		"custom:role":       "user",
	})

	p, err := DecodeIDToken(tok)
	require.NoError(t, err)
	assert.Equal(t, &TokenPayload{
		Subject: "3f2c", Email: "ana@x.com", Name: "Ana Lee",
		FirstName: "Ana", LastName: "Lee", Role: "user",
	}, p)
}

func TestDecodeIDToken_FallsBackToStandardNameClaims(t *testing.T) {
	tok := signed(t, jwt.MapClaims{
		"sub":         "3f2c",
		"given_name":  "Ana",
		"family_name": "Lee",
	})

	p, err := DecodeIDToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.FirstName)
	assert.Equal(t, "Lee", p.LastName)
	assert.Empty(t, p.Role)
}

func TestDecodeIDToken_Errors(t *testing.T) {
	_, err := DecodeIDToken("not-a-token")
	require.ErrorIs(t, err, ErrMalformedToken)

	_, err = DecodeIDToken(signed(t, jwt.MapClaims{"email": "ana@x.com"}))
	require.ErrorIs(t, err, ErrMalformedToken)
}
