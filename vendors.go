package auth3p

import "strings"

// Vendor identifies a third-party identity provider.
type Vendor string

const (
	VendorApple  Vendor = "apple"
	VendorGoogle Vendor = "google"
)

// AllVendors lists every vendor this package knows how to dispatch.
func AllVendors() []Vendor {
	return []Vendor{VendorApple, VendorGoogle}
}

// ParseVendor normalizes a route segment into a Vendor.
func ParseVendor(s string) (Vendor, error) {
	switch Vendor(strings.ToLower(strings.TrimSpace(s))) {
	case VendorApple:
		return VendorApple, nil
	case VendorGoogle:
		return VendorGoogle, nil
	default:
		return "", ErrUnknownVendor
	}
}

func (v Vendor) Valid() bool {
	return v == VendorApple || v == VendorGoogle
}

func (v Vendor) String() string {
	return string(v)
}

// subjectColumn is the users column holding this vendor's subject identifier.
func (v Vendor) subjectColumn() string {
	switch v {
	case VendorApple:
		return "apple_subject"
	case VendorGoogle:
		return "google_subject"
	}
	return ""
}

// SubjectPair maps a verified subject onto the (apple, google) column pair,
// leaving the other vendor's value nil.
func (v Vendor) SubjectPair(subject string) (apple, google *string) {
	switch v {
	case VendorApple:
		apple = &subject
	case VendorGoogle:
		google = &subject
	}
	return apple, google
}
