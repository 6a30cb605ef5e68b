package auth3p

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/nyaruka/phonenumbers"
)

// RegisterAuthRoutes mounts the login and registration endpoints on the
// given router. Both take the vendor as a path parameter.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {

	controller := NewAuthController(opts...)

	app.
		Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth3p.login")

	app.
		Post(controller.Routes.Register, controller.RegistrationCreate).
		SetName("auth3p.register")
}

type AuthControllerRoutes struct {
	Login    string
	Register string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Verifiers    map[Vendor]AssertionVerifier
	Vendors      map[Vendor]bool
	Resolver     *AccountResolver
	Register     *RegisterAccountHandler
	Responder    *TokenResponder
	Routes       *AuthControllerRoutes
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:    defLogger{},
		Verifiers: map[Vendor]AssertionVerifier{},
		Routes: &AuthControllerRoutes{
			Login:    "/login/:vendor",
			Register: "/register/:vendor",
		},
	}
	c.ErrorHandler = c.handleError

	for _, opt := range opts {
		c = opt(c)
	}

	if len(c.Verifiers) == 0 {
		panic("Missing assertion verifiers in auth controller...")
	}

	if c.Resolver == nil {
		panic("Missing AccountResolver in auth controller...")
	}

	if c.Register == nil {
		panic("Missing RegisterAccountHandler in auth controller...")
	}

	if c.Responder == nil {
		panic("Missing TokenResponder in auth controller...")
	}

	return c
}

// WithConfig narrows the controller to the vendors the embedder enabled.
// Without it every vendor that has a verifier mounted is accepted.
func WithConfig(cfg Config) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Vendors = map[Vendor]bool{}
		for _, vendor := range cfg.GetVendors() {
			c.Vendors[vendor] = true
		}
		return c
	}
}

func WithVerifier(vendor Vendor, verifier AssertionVerifier) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Verifiers[vendor] = verifier
		return c
	}
}

func WithResolver(resolver *AccountResolver) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Resolver = resolver
		return c
	}
}

func WithRegistrar(handler *RegisterAccountHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Register = handler
		return c
	}
}

func WithResponder(responder *TokenResponder) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Responder = responder
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

func WithControllerRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Routes = routes
		return c
	}
}

func WithErrorHandler(handler router.ErrorHandler) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.ErrorHandler = handler
		return c
	}
}

func WithDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

// LoginPost exchanges a vendor identity assertion for an opaque bearer
// token belonging to an already registered, active account.
func (a *AuthController) LoginPost(ctx router.Context) error {
	vendor, verifier, err := a.verifierFor(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	assertion, _, err := a.extractAssertion(ctx, vendor)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	claims, err := verifier.Verify(ctx.Context(), assertion)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if a.Debug {
		a.Logger.Debug("login claims", "vendor", vendor.String(), "claims", print.MaybePrettyJSON(claims))
	}

	value, err := a.Resolver.Resolve(ctx.Context(), vendor, claims.Subject)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return a.Responder.Respond(ctx, value)
}

// RegisterAccountPayload is the optional profile body sent with a
// registration request.
type RegisterAccountPayload struct {
	FirstName string         `form:"first_name" json:"first_name"`
	LastName  string         `form:"last_name" json:"last_name"`
	Email     string         `form:"email" json:"email"`
	Phone     string         `form:"phone_number" json:"phone_number"`
	Metadata  map[string]any `form:"-" json:"metadata"`
}

// Validate will validate the payload
func (r RegisterAccountPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.By(ValidatePhoneNumber)),
	)
}

// ValidatePhoneNumber accepts an empty value or a parseable, valid
// phone number in E.164 or US national format.
func ValidatePhoneNumber(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, "US")
	if err != nil {
		return err
	}

	if !phonenumbers.IsValidNumber(num) {
		return goerrors.New("invalid phone number", goerrors.CategoryValidation)
	}

	return nil
}

// RegistrationCreate verifies the vendor assertion and creates a new
// account, answering with a fresh bearer token in the response body.
func (a *AuthController) RegistrationCreate(ctx router.Context) error {
	vendor, verifier, err := a.verifierFor(ctx)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	assertion, web, err := a.extractAssertion(ctx, vendor)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	claims, err := verifier.Verify(ctx.Context(), assertion)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	payload := new(RegisterAccountPayload)
	if web == nil {
		if err := ctx.Bind(payload); err != nil {
			a.Logger.Error("register account parse payload: ", "error", err)
			return ctx.Status(router.StatusBadRequest).SendString("failed to parse payload")
		}
	} else {
		payload.FirstName = web.FirstName()
		payload.LastName = web.LastName()
		payload.Email = web.User.Email
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register account validate payload: ", "error", err)
		return ctx.Status(router.StatusBadRequest).SendString(err.Error())
	}

	email := claims.Email
	if email == "" {
		email = payload.Email
	}

	msg := RegisterAccountMessage{
		Vendor:    vendor,
		Subject:   claims.Subject,
		Email:     email,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Phone:     payload.Phone,
		Metadata:  payload.Metadata,
	}

	if a.Debug {
		a.Logger.Debug("register account", "vendor", vendor.String(), "message", print.MaybePrettyJSON(msg))
	}

	value, err := a.Register.Execute(ctx.Context(), msg)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return a.Responder.RespondInline(ctx, value)
}

func (a *AuthController) verifierFor(ctx router.Context) (Vendor, AssertionVerifier, error) {
	vendor, err := ParseVendor(ctx.Param("vendor", ""))
	if err != nil {
		return vendor, nil, err
	}

	verifier, ok := a.Verifiers[vendor]
	if !ok || (a.Vendors != nil && !a.Vendors[vendor]) {
		return vendor, nil, goerrors.New("vendor not enabled", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode(TextCodeUnknownVendor).
			WithMetadata(map[string]any{"vendor": vendor.String()})
	}

	return vendor, verifier, nil
}

// extractAssertion pulls the identity assertion out of the request. Apple
// may deliver it through its browser form callback instead of a bearer
// header; when it does, the decoded form is returned alongside so the
// caller can reuse the profile fields it carries.
func (a *AuthController) extractAssertion(ctx router.Context, vendor Vendor) (string, *AppleWebPayload, error) {
	if vendor == VendorApple {
		if ctx.FormValue("id_token") != "" || ctx.FormValue("error") != "" || ctx.FormValue("state") != "" {
			web := new(AppleWebPayload)
			if err := ctx.Bind(web); err != nil {
				return "", nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse form callback").
					WithCode(goerrors.CodeBadRequest)
			}

			assertion, err := web.Assertion()
			if err != nil {
				return "", nil, err
			}

			return assertion, web, nil
		}
	}

	header := ctx.GetString(router.HeaderAuthorization, "")
	assertion := stripAuthScheme(header, "Bearer")
	if assertion == "" {
		return "", nil, ErrAssertionMissing
	}

	return assertion, nil, nil
}

func stripAuthScheme(header, scheme string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}

	prefix := scheme + " "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}

	// wrong or absent scheme counts as no assertion at all
	return ""
}

func (a *AuthController) handleError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	a.Logger.Info(
		"auth request error",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", ctx.OriginalURL(),
	)

	if a.Debug {
		a.Logger.Debug("auth request error detail", "details", print.MaybePrettyJSON(richErr.Metadata))
	}

	return ctx.Status(richErr.Code).SendString(richErr.Message)
}
