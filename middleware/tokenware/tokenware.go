package tokenware

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-auth3p"
	"github.com/goliatone/go-router"
)

var (
	defaultTokenLookup   = "header:" + router.HeaderAuthorization
	ErrTokenNotExtracted = errors.New("missing or malformed bearer token")
)

// UserResolver turns an opaque token value into the account it belongs to.
// *auth3p.TokenMinter satisfies it.
type UserResolver interface {
	Lookup(ctx context.Context, value string) (*auth3p.User, error)
}

type Config struct {
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	Resolver       UserResolver
	ContextKey     string
	TokenLookup    string
	AuthScheme     string

	// ContextEnricher propagates the resolved user to the standard Go
	// context. Defaults to auth3p.WithContext.
	ContextEnricher func(c context.Context, user *auth3p.User) context.Context
}

// New returns a middleware that resolves the bearer token into a user and
// stores it under ContextKey. It never rejects the request: when the token
// is missing, malformed, or unknown the chain continues with no user set.
// Pair it with Guard on routes that require an authenticated caller.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, err := ExtractRawTokenFromContext(ctx, cfg.getExtractors())
			if err != nil || raw == "" {
				return ctx.Next()
			}

			user, err := cfg.Resolver.Lookup(ctx.Context(), raw)
			if err != nil {
				return ctx.Next()
			}

			ctx.Locals(cfg.ContextKey, user)

			if cfg.ContextEnricher != nil {
				ctx.SetContext(cfg.ContextEnricher(ctx.Context(), user))
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

// Protected builds the middleware from an auth3p.Config so the context key
// and auth scheme the embedder configured carry through to token extraction
// and to where Guard looks for the resolved user.
func Protected(cfg auth3p.Config, resolver UserResolver) router.MiddlewareFunc {
	return New(Config{
		Resolver:   resolver,
		ContextKey: cfg.GetContextKey(),
		AuthScheme: cfg.GetAuthScheme(),
	})
}

// Guard rejects requests that New did not resolve to a user.
func Guard(contextKey ...string) router.MiddlewareFunc {
	key := "user"
	if len(contextKey) > 0 && contextKey[0] != "" {
		key = contextKey[0]
	}

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if user, ok := ctx.Locals(key).(*auth3p.User); !ok || user == nil {
				return ctx.Status(router.StatusUnauthorized).SendString("Invalid or expired token")
			}
			return ctx.Next()
		}
	}
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Resolver == nil {
		panic("AUTH: token middleware configuration: Resolver is required.")
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.ContextEnricher == nil {
		cfg.ContextEnricher = auth3p.WithContext
	}

	return cfg
}

func (cfg *Config) getExtractors() []TokenExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func ExtractRawTokenFromContext(ctx router.Context, extractors []TokenExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(ctx)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

func GetExtractors(tokenLookup string, authSchemes ...string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	// header:Authorization,cookie:token,query:token,param:token
	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		case "param":
			extractors = append(extractors, tokenFromParam(parts[1]))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		}
	}

	return extractors
}

type TokenExtractor func(c router.Context) (string, error)

// tokenFromHeader returns a function that extracts the token from the request header.
func tokenFromHeader(header string, authScheme string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		a := c.GetString(header, "")
		authScheme = strings.TrimSpace(authScheme)
		l := len(authScheme)
		if l == 0 {
			if a == "" {
				return "", ErrTokenNotExtracted
			}
			return strings.TrimSpace(a), nil
		}
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrTokenNotExtracted
	}
}

// tokenFromQuery returns a function that extracts the token from the query string.
func tokenFromQuery(param string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Query(param, "")
		if token == "" {
			return "", ErrTokenNotExtracted
		}
		return token, nil
	}
}

// tokenFromParam returns a function that extracts the token from the url param string.
func tokenFromParam(param string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Param(param)
		if token == "" {
			return "", ErrTokenNotExtracted
		}
		return token, nil
	}
}

// tokenFromCookie returns a function that extracts the token from the named cookie.
func tokenFromCookie(name string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrTokenNotExtracted
		}
		return token, nil
	}
}
