package failure

import (
	"errors"
	"net/http"
)

// Kind tags a Failure so callers can branch on the business reason instead of the HTTP code.
type Kind string

const (
	KindBadRequest       Kind = "bad_request"
	KindValidation       Kind = "validation"
	KindUnauthorized     Kind = "unauthorized"
	KindForbidden        Kind = "forbidden"
	KindNotFound         Kind = "not_found"
	KindConflict         Kind = "conflict"
	KindInternal         Kind = "internal"
	KindUnimplemented    Kind = "unimplemented"
	KindGateway          Kind = "gateway"
	KindIneligibleBidder Kind = "ineligible_bidder"
	KindBidTooLow        Kind = "bid_too_low"
	KindAlreadyClosed    Kind = "already_closed"
	KindNotAuthorized    Kind = "not_authorized"
	KindAlreadyReleased  Kind = "already_released"
	KindPartialFailure   Kind = "partial_failure"
)

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
type Failure struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

var InvalidPageParam = &Failure{Code: http.StatusBadRequest, Kind: KindBadRequest, Message: "invalid page parameter"}
var InvalidLimitParam = &Failure{Code: http.StatusBadRequest, Kind: KindBadRequest, Message: "invalid limit parameter"}
var ForbiddenError = &Failure{Code: http.StatusForbidden, Kind: KindForbidden, Message: "You don't have the required permissions"}
var ResourceRestrictedError = &Failure{Code: http.StatusForbidden, Kind: KindForbidden, Message: "You don't have permission to access this resource"}

// Error returns the error code and message in a formatted string.
func (e *Failure) Error() string {
	return e.Message
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Kind:    KindBadRequest,
			Message: err.Error(),
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Kind:    KindBadRequest,
		Message: msg,
	}
}

// Validation reports input rejected by field rules. Never retried automatically.
func Validation(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Kind:    KindValidation,
		Message: msg,
	}
}

// Unauthorized returns a new Failure with code for unauthorized requests.
func Unauthorized(msg string) error {
	return &Failure{
		Code:    http.StatusUnauthorized,
		Kind:    KindUnauthorized,
		Message: msg,
	}
}

// InternalError returns a new Failure with code for internal error and message derived from an error interface.
func InternalError(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusInternalServerError,
			Kind:    KindInternal,
			Message: err.Error(),
		}
	}

	return nil
}

// Unimplemented returns a new Failure with code for unimplemented method.
func Unimplemented(methodName string) error {
	return &Failure{
		Code:    http.StatusNotImplemented,
		Kind:    KindUnimplemented,
		Message: methodName,
	}
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(entityName string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: entityName,
	}
}

// Conflict returns a new Failure with code for conflict situations.
func Conflict(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Kind:    KindConflict,
		Message: message,
	}
}

func Forbidden(msg string) error {
	return &Failure{
		Code:    http.StatusForbidden,
		Kind:    KindForbidden,
		Message: msg,
	}
}

// Gateway reports a payment gateway failure. The user may retry the whole capture.
func Gateway(msg string) error {
	return &Failure{
		Code:    http.StatusBadGateway,
		Kind:    KindGateway,
		Message: msg,
	}
}

func IneligibleBidder(msg string) error {
	return &Failure{
		Code:    http.StatusForbidden,
		Kind:    KindIneligibleBidder,
		Message: msg,
	}
}

func BidTooLow(msg string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Kind:    KindBidTooLow,
		Message: msg,
	}
}

func AlreadyClosed(msg string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Kind:    KindAlreadyClosed,
		Message: msg,
	}
}

func NotAuthorized(msg string) error {
	return &Failure{
		Code:    http.StatusForbidden,
		Kind:    KindNotAuthorized,
		Message: msg,
	}
}

// AlreadyReleased guards escrow release idempotency; callers treat it as a no-op.
func AlreadyReleased(msg string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Kind:    KindAlreadyReleased,
		Message: msg,
	}
}

// PartialFailure means the gateway accepted a charge that could not be persisted locally.
func PartialFailure(msg string) error {
	return &Failure{
		Code:    http.StatusInternalServerError,
		Kind:    KindPartialFailure,
		Message: msg,
	}
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetKind returns the kind of an error interface, KindInternal for untagged errors.
func GetKind(err error) Kind {
	var fail *Failure
	if errors.As(err, &fail) && fail.Kind != "" {
		return fail.Kind
	}

	return KindInternal
}

// IsKind reports whether err (or anything it wraps) is a Failure of the given kind.
func IsKind(err error, kind Kind) bool {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Kind == kind
	}

	return false
}
