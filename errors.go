package rolesync

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeGatewayUnavailable = "GATEWAY_UNAVAILABLE"
	TextCodeGatewayProtocol    = "GATEWAY_PROTOCOL"
	TextCodeNotAuthorized      = "NOT_AUTHORIZED"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
)

// MsgGatewayLoginFailed is the user-facing message for gateway outages; it
// deliberately reveals nothing about the gateway itself.
const MsgGatewayLoginFailed = "Login failed at gateway, please retry after some time."

// MsgInvalidLogin is the standard message for rejected credentials.
const MsgInvalidLogin = "Invalid login. Please try again."

// ErrGatewayUnavailable is returned when the authorization gateway cannot be
// reached or answers with a non-200 status.
var ErrGatewayUnavailable = goerrors.New("authorization gateway unavailable", goerrors.CategoryOperation).
	WithTextCode(TextCodeGatewayUnavailable).
	WithCode(goerrors.CodeInternal)

// ErrGatewayProtocol is returned when the gateway answered 200 but the body
// could not be parsed. Callers treat it like an outage; it carries a distinct
// text code so operators can tell the two apart.
var ErrGatewayProtocol = goerrors.New("authorization gateway returned an unparseable response", goerrors.CategoryOperation).
	WithTextCode(TextCodeGatewayProtocol).
	WithCode(goerrors.CodeInternal)

// ErrNotAuthorized is returned when the gateway is reachable but reports no
// usable role for the user.
var ErrNotAuthorized = goerrors.New("user holds no authorized role", goerrors.CategoryAuth).
	WithTextCode(TextCodeNotAuthorized).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned for expired session tokens.
var ErrTokenExpired = goerrors.New("session token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for session tokens that fail to parse or
// validate.
var ErrTokenMalformed = goerrors.New("session token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// IsGatewayUnavailable checks for gateway outage rejections.
func IsGatewayUnavailable(err error) bool {
	return hasTextCode(err, TextCodeGatewayUnavailable)
}

// IsGatewayProtocol checks for unparseable gateway responses.
func IsGatewayProtocol(err error) bool {
	return hasTextCode(err, TextCodeGatewayProtocol)
}

// IsNotAuthorized checks for "no usable role" rejections.
func IsNotAuthorized(err error) bool {
	return hasTextCode(err, TextCodeNotAuthorized)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}

	return false
}
