package auth3p

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Claims is the verified output of an identity assertion: the vendor-scoped
// stable subject identifier and, when the vendor shares it, an email.
type Claims struct {
	Subject string `json:"subject"`
	Email   string `json:"email,omitempty"`
}

// AssertionVerifier validates a vendor-signed identity assertion. It is the
// trusted boundary of this package: implementations either return validated
// claims or fail, and their failures propagate to the caller unchanged.
type AssertionVerifier interface {
	Verify(ctx context.Context, assertion string) (*Claims, error)
}

// UserConstructor builds a User from registration input. Embedding
// applications provide their own to control profile shape; returning an
// error rejects the registration with an internal error, matching the
// contract that a constructor refusal is a server-side fault, not bad input.
type UserConstructor func(msg RegisterAccountMessage, email string, apple, google *string) (*User, error)

// Config holds auth options
type Config interface {
	GetVendors() []Vendor
	GetRedirectURL() string
	GetFragmentKey() string
	GetContextKey() string
	GetAuthScheme() string
	GetSecureCookies() bool
}

// SimpleConfig is a plain-struct Config for embedders that do not carry
// their own configuration layer.
type SimpleConfig struct {
	Vendors       []Vendor
	RedirectURL   string
	FragmentKey   string
	ContextKey    string
	AuthScheme    string
	SecureCookies bool
}

func (c SimpleConfig) GetVendors() []Vendor {
	if len(c.Vendors) == 0 {
		return AllVendors()
	}
	return c.Vendors
}

func (c SimpleConfig) GetRedirectURL() string { return c.RedirectURL }

func (c SimpleConfig) GetFragmentKey() string {
	if c.FragmentKey == "" {
		return "token"
	}
	return c.FragmentKey
}

func (c SimpleConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "user"
	}
	return c.ContextKey
}

func (c SimpleConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return "Bearer"
	}
	return c.AuthScheme
}

func (c SimpleConfig) GetSecureCookies() bool { return c.SecureCookies }

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH3P "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH3P "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH3P "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH3P "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
