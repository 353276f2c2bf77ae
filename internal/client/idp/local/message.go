package local

import (
	"fmt"
	"strings"
)

func codeMessage(kind CodeKind, plain string) string {
	switch kind {
	case CodeMFA:
		return fmt.Sprintf("Your Crux sign-in code is %s", plain)
	case CodeReset:
		return fmt.Sprintf("Your Crux password reset code is %s", plain)
	default:
		return fmt.Sprintf("Your Crux verification code is %s", plain)
	}
}

// destination prefers the phone number.
func destination(u *user) string {
	if u.Phone != "" {
		return u.Phone
	}
	return u.Email
}

// maskDestination keeps the last four characters of a phone number, or the
// first character and domain of an email: "+*******4567", "a***@x.com".
func maskDestination(to string) string {
	if at := strings.IndexByte(to, '@'); at > 0 {
		return to[:1] + "***" + to[at:]
	}
	if len(to) <= 4 {
		return to
	}
	prefix := ""
	body := to
	if strings.HasPrefix(to, "+") {
		prefix, body = "+", to[1:]
	}
	if len(body) <= 4 {
		return to
	}
	return prefix + strings.Repeat("*", len(body)-4) + body[len(body)-4:]
}
