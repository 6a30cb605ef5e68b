package auth3p

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeEmailRequired     = "auth3p_email_required"
	TextCodeAlreadyRegistered = "auth3p_already_registered"
	TextCodeNoActiveAccount   = "auth3p_no_active_account"
	TextCodeTokenNotFound     = "auth3p_token_not_found"
	TextCodeProfileRejected   = "auth3p_profile_rejected"
	TextCodeUnknownVendor     = "auth3p_unknown_vendor"
	TextCodeVendorReported    = "auth3p_vendor_reported_error"
	TextCodeAssertionMissing  = "auth3p_assertion_missing"
	TextCodeAssertionRejected = "auth3p_assertion_rejected"
)

// ErrEmailRequired is returned when registration input carries no email.
var ErrEmailRequired = errors.New("email is required", errors.CategoryValidation).
	WithTextCode(TextCodeEmailRequired).
	WithCode(errors.CodeBadRequest)

// ErrAlreadyRegistered is returned when the vendor subject already maps to a user.
var ErrAlreadyRegistered = errors.New("subject already registered", errors.CategoryValidation).
	WithTextCode(TextCodeAlreadyRegistered).
	WithCode(errors.CodeBadRequest)

// ErrNoActiveAccount is returned on login when no active user matches the subject.
var ErrNoActiveAccount = errors.New("no active account for subject", errors.CategoryAuth).
	WithTextCode(TextCodeNoActiveAccount).
	WithCode(errors.CodeUnauthorized)

// ErrTokenNotFound is returned when a bearer value matches no stored token.
var ErrTokenNotFound = errors.New("bearer token not found", errors.CategoryAuth).
	WithTextCode(TextCodeTokenNotFound).
	WithCode(errors.CodeForbidden)

// ErrProfileRejected is returned when the embedding application's user
// constructor refuses the supplied profile.
var ErrProfileRejected = errors.New("profile construction rejected", errors.CategoryInternal).
	WithTextCode(TextCodeProfileRejected).
	WithCode(errors.CodeInternal)

// ErrUnknownVendor is returned for a vendor segment this deployment does not serve.
var ErrUnknownVendor = errors.New("unknown identity vendor", errors.CategoryBadInput).
	WithTextCode(TextCodeUnknownVendor).
	WithCode(errors.CodeBadRequest)

// ErrAssertionMissing is returned when no identity token could be read from
// the request, on either the bearer or the web-form path.
var ErrAssertionMissing = errors.New("identity token missing", errors.CategoryBadInput).
	WithTextCode(TextCodeAssertionMissing).
	WithCode(errors.CodeBadRequest)

// IsUniqueViolationError will check for storage unique-constraint failures.
// Matches the message shapes of the sqlite and postgres drivers.
func IsUniqueViolationError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// VendorReportedError wraps the error string a vendor sent back with its web
// form submission (e.g. user_cancelled_authorize). The reason becomes the
// user-visible message.
func VendorReportedError(reason string) *errors.Error {
	return errors.New(reason, errors.CategoryBadInput).
		WithTextCode(TextCodeVendorReported).
		WithCode(errors.CodeBadRequest)
}
