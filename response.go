package auth3p

import (
	"crypto/rand"
	"encoding/base64"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// Cookie names for the cross-site-request-forgery pair set on every
// successful token response. Both carry the same value within one response;
// the value is regenerated per response.
const (
	XSRFCookieName = "XSRF-TOKEN"
	CSRFCookieName = "CSRF-TOKEN"
)

const csrfEntropyBytes = 16

// GenerateCSRFValue returns the random value shared by the cookie pair.
func GenerateCSRFValue() (string, error) {
	buf := make([]byte, csrfEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read CSRF entropy")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// TokenResponder shapes a successful token outcome as either a 303 redirect
// with the token appended under the configured key, or a plain-text body.
type TokenResponder struct {
	redirectURL   string
	fragmentKey   string
	secureCookies bool
	cookieTTL     time.Duration
	logger        Logger
}

func NewTokenResponder(cfg Config) *TokenResponder {
	return &TokenResponder{
		redirectURL:   cfg.GetRedirectURL(),
		fragmentKey:   cfg.GetFragmentKey(),
		secureCookies: cfg.GetSecureCookies(),
		cookieTTL:     time.Hour * 24,
		logger:        defLogger{},
	}
}

func (r *TokenResponder) WithLogger(logger Logger) *TokenResponder {
	r.logger = logger
	return r
}

// Respond renders the token in the configured mode and attaches the CSRF
// cookie pair.
func (r *TokenResponder) Respond(ctx router.Context, value string) error {
	if err := r.setCSRFPair(ctx); err != nil {
		return err
	}

	if r.redirectURL != "" {
		target := appendQueryParam(r.redirectURL, r.fragmentKey, value)
		r.logger.Debug("token response", "mode", "redirect", "target", r.redirectURL)
		return ctx.Redirect(target, router.StatusSeeOther)
	}

	r.logger.Debug("token response", "mode", "inline")
	return ctx.Status(router.StatusOK).SendString(value)
}

// RespondInline renders the token as a plain-text body regardless of the
// configured mode. Registration responses use it.
func (r *TokenResponder) RespondInline(ctx router.Context, value string) error {
	if err := r.setCSRFPair(ctx); err != nil {
		return err
	}

	r.logger.Debug("token response", "mode", "inline")
	return ctx.Status(router.StatusOK).SendString(value)
}

func (r *TokenResponder) setCSRFPair(ctx router.Context) error {
	value, err := GenerateCSRFValue()
	if err != nil {
		return err
	}

	expires := time.Now().Add(r.cookieTTL)
	for _, name := range []string{XSRFCookieName, CSRFCookieName} {
		// Not HTTPOnly: the client echoes the value back in a header,
		// so script access is the point.
		ctx.Cookie(&router.Cookie{
			Name:     name,
			Value:    value,
			Expires:  expires,
			Secure:   r.secureCookies,
			SameSite: "Lax",
		})
	}

	return nil
}

func appendQueryParam(target, key, value string) string {
	u, err := url.Parse(target)
	if err != nil {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		return target + sep + url.QueryEscape(key) + "=" + url.QueryEscape(value)
	}

	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
