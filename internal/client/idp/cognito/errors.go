package cognito

import (
	"errors"

	"github.com/aws/smithy-go"

	"github.com/dmitrijs2005/crux/internal/client/idp"
)

// mapError translates Cognito API exceptions into idp sentinels, keeping the
// provider's message for the user. Anything that is not an API error (DNS,
// TLS, timeouts) is reported as idp.ErrUnavailable.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return idp.NewError(idp.ErrUnavailable, "", err)
	}

	var kind error
	switch ae.ErrorCode() {
	case "UsernameExistsException", "AliasExistsException":
		kind = idp.ErrUserExists
	case "UserNotFoundException":
		kind = idp.ErrUserNotFound
	case "UserNotConfirmedException":
		kind = idp.ErrUserNotConfirmed
	case "NotAuthorizedException":
		kind = idp.ErrNotAuthorized
	case "CodeMismatchException":
		kind = idp.ErrCodeMismatch
	case "ExpiredCodeException":
		kind = idp.ErrExpiredCode
	case "LimitExceededException", "TooManyRequestsException", "TooManyFailedAttemptsException":
		kind = idp.ErrLimitExceeded
	case "InvalidPasswordException":
		kind = idp.ErrInvalidPassword
	case "InternalErrorException":
		kind = idp.ErrUnavailable
	default:
		kind = idp.ErrInvalidParameter
	}
	return idp.NewError(kind, ae.ErrorMessage(), err)
}
