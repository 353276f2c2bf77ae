package flow

import (
	"net/url"
	"strings"
)

// Route is a screen path. Parameters are path segments.
type Route string

const (
	RouteSignin   Route = "/"
	RouteSignup   Route = "/signup"
	RouteAllSet   Route = "/allset"
	RouteHome     Route = "/home"
	RouteNominees Route = "/nominees"
	RouteSettings Route = "/settings"

	verifyPrefix = "/verify/"
)

// VerifyRoute is the code entry screen for identifier.
func VerifyRoute(identifier string) Route {
	return Route(verifyPrefix + url.PathEscape(identifier))
}

// VerifyIdentifier extracts the identifier from a VerifyRoute.
func (r Route) VerifyIdentifier() (string, bool) {
	rest, ok := strings.CutPrefix(string(r), verifyPrefix)
	if !ok || rest == "" {
		return "", false
	}
	id, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return id, true
}

// Navigator switches screens.
type Navigator interface {
	Navigate(r Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(r Route)

func (f NavigatorFunc) Navigate(r Route) { f(r) }
