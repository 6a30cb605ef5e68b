package auth3p

import (
	"context"
	"log"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// Vendor JWK set endpoints and issuers, as published by Apple and Google.
const (
	AppleJWKSURL = "https://appleid.apple.com/auth/keys"
	AppleIssuer  = "https://appleid.apple.com"

	GoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
	GoogleIssuer  = "https://accounts.google.com"
)

// JWKSVerifier validates vendor identity tokens against the vendor's
// published JWK set. It implements AssertionVerifier.
type JWKSVerifier struct {
	name         string
	jwks         *keyfunc.JWKS
	issuer       string
	audience     string
	validMethods []string
}

type VerifierOption func(*JWKSVerifier)

// WithIssuer pins the iss claim the assertion must carry.
func WithIssuer(issuer string) VerifierOption {
	return func(v *JWKSVerifier) {
		v.issuer = issuer
	}
}

// WithAudience pins the aud claim, usually the app's client identifier.
func WithAudience(audience string) VerifierOption {
	return func(v *JWKSVerifier) {
		v.audience = audience
	}
}

// WithValidMethods overrides the accepted signing algorithms (default RS256).
func WithValidMethods(methods ...string) VerifierOption {
	return func(v *JWKSVerifier) {
		v.validMethods = methods
	}
}

// NewJWKSVerifier builds a verifier that keeps the remote JWK set refreshed
// in the background.
func NewJWKSVerifier(name, jwksURL string, opts ...VerifierOption) (*JWKSVerifier, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to do a background refresh of %s JWK set: %s", name, err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to fetch JWK set").
			WithMetadata(map[string]any{"vendor": name, "url": jwksURL})
	}

	v := &JWKSVerifier{
		name:         name,
		jwks:         jwks,
		validMethods: []string{"RS256"},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}

	return v, nil
}

// NewAppleVerifier verifies Sign in with Apple identity tokens.
func NewAppleVerifier(clientID string) (*JWKSVerifier, error) {
	return NewJWKSVerifier(VendorApple.String(), AppleJWKSURL,
		WithIssuer(AppleIssuer),
		WithAudience(clientID),
	)
}

// NewGoogleVerifier verifies Google identity tokens.
func NewGoogleVerifier(clientID string) (*JWKSVerifier, error) {
	return NewJWKSVerifier(VendorGoogle.String(), GoogleJWKSURL,
		WithIssuer(GoogleIssuer),
		WithAudience(clientID),
	)
}

type identityTokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Verify validates the assertion signature and registered claims, returning
// the subject/email pair.
func (v *JWKSVerifier) Verify(ctx context.Context, assertion string) (*Claims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods(v.validMethods),
	}
	if v.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		parserOptions = append(parserOptions, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(assertion, &identityTokenClaims{}, v.jwks.Keyfunc, parserOptions...)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryAuth, "identity assertion rejected").
			WithTextCode(TextCodeAssertionRejected).
			WithCode(goerrors.CodeUnauthorized)
	}

	claims, ok := token.Claims.(*identityTokenClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, goerrors.New("identity assertion has no subject", goerrors.CategoryAuth).
			WithTextCode(TextCodeAssertionRejected).
			WithCode(goerrors.CodeUnauthorized)
	}

	return &Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
	}, nil
}

// VerifierFunc adapts a function to the AssertionVerifier interface.
type VerifierFunc func(ctx context.Context, assertion string) (*Claims, error)

func (f VerifierFunc) Verify(ctx context.Context, assertion string) (*Claims, error) {
	return f(ctx, assertion)
}
