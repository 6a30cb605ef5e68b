package csrf

import (
	"crypto/subtle"
	"errors"
	"slices"
	"strings"

	"github.com/goliatone/go-router"
)

var (
	ErrTokenMismatch = errors.New("CSRF token mismatch")
	ErrTokenMissing  = errors.New("CSRF token missing")
)

// DefaultCookieName is the cookie half of the double-submit pair.
const DefaultCookieName = "CSRF-TOKEN"

// DefaultHeaderName is the header clients echo the cookie value in.
const DefaultHeaderName = "X-XSRF-TOKEN"

// DefaultFormFieldName is the form field fallback for the echoed value.
const DefaultFormFieldName = "_token"

// Config defines the configuration for the double-submit CSRF middleware.
// The server sets a readable cookie; the client must echo its value back
// in a header or form field on every unsafe request.
type Config struct {
	// Skip defines a function to skip middleware
	Skip func(router.Context) bool

	// CookieName is the cookie holding the expected value
	CookieName string

	// HeaderName is the request header checked for the echoed value
	HeaderName string

	// FormFieldName is the form field checked when the header is absent
	FormFieldName string

	// SafeMethods defines HTTP methods that don't require CSRF protection
	SafeMethods []string

	// ErrorHandler defines the error handler
	ErrorHandler router.ErrorHandler

	// SuccessHandler defines the success handler
	SuccessHandler router.HandlerFunc
}

// New creates a new double-submit CSRF middleware
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := configDefault(config...)

		return func(ctx router.Context) error {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return ctx.Next()
			}

			method := strings.ToUpper(ctx.Method())
			if slices.Contains(cfg.SafeMethods, method) {
				return cfg.SuccessHandler(ctx)
			}

			expected := ctx.Cookies(cfg.CookieName)
			received := ctx.GetString(cfg.HeaderName, "")
			if received == "" {
				received = ctx.FormValue(cfg.FormFieldName)
			}

			if expected == "" || received == "" {
				return cfg.ErrorHandler(ctx, ErrTokenMissing)
			}

			if subtle.ConstantTimeCompare([]byte(received), []byte(expected)) != 1 {
				return cfg.ErrorHandler(ctx, ErrTokenMismatch)
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

// configDefault returns a default config
func configDefault(config ...Config) Config {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}

	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultHeaderName
	}

	if cfg.FormFieldName == "" {
		cfg.FormFieldName = DefaultFormFieldName
	}

	if cfg.SafeMethods == nil {
		cfg.SafeMethods = []string{"GET", "HEAD", "OPTIONS", "TRACE"}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	return cfg
}

func defaultErrorHandler(ctx router.Context, err error) error {
	switch err {
	case ErrTokenMissing:
		return ctx.Status(router.StatusBadRequest).SendString("CSRF token missing")
	case ErrTokenMismatch:
		return ctx.Status(router.StatusForbidden).SendString("CSRF token mismatch")
	default:
		return ctx.Status(router.StatusInternalServerError).SendString("CSRF validation error")
	}
}
