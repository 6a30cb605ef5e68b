package auth3p

// Apple's web sign-in flow posts a form back to the redirect endpoint
// instead of sending a typed bearer assertion. These payloads mirror that
// form: a single-use authorization code, the identity token, the state
// echoed from the authorize URL, scoped profile data, and an error field
// which today only carries user_cancelled_authorize.

type AppleWebUserNamePayload struct {
	FirstName string `json:"firstName" form:"firstName"`
	LastName  string `json:"lastName" form:"lastName"`
}

type AppleWebUserPayload struct {
	Name  *AppleWebUserNamePayload `json:"name" form:"name"`
	Email string                   `json:"email" form:"email"`
}

type AppleWebPayload struct {
	// State is the value passed on the authorize URL, echoed back.
	State string `json:"state" form:"state"`

	// Code is a single-use authentication code valid for five minutes.
	Code string `json:"code" form:"code"`

	// IDToken is the JSON web token carrying the user's identity.
	IDToken string `json:"id_token" form:"id_token"`

	// User is the data requested in the scope property.
	User AppleWebUserPayload `json:"user" form:"user"`

	// Error is the vendor-reported error code, when the flow failed.
	Error string `json:"error" form:"error"`
}

// Assertion extracts the identity token to forward to the verifier. A
// vendor-reported error wins over everything else, including a present
// identity token; a form without an identity token is a bad request.
func (p AppleWebPayload) Assertion() (string, error) {
	if p.Error != "" {
		return "", VendorReportedError(p.Error)
	}

	if p.IDToken == "" {
		return "", ErrAssertionMissing
	}

	return p.IDToken, nil
}

// FirstName returns the best-effort first name from the scoped user data.
func (p AppleWebPayload) FirstName() string {
	if p.User.Name != nil {
		return p.User.Name.FirstName
	}
	return ""
}

// LastName returns the best-effort last name from the scoped user data.
func (p AppleWebPayload) LastName() string {
	if p.User.Name != nil {
		return p.User.Name.LastName
	}
	return ""
}
