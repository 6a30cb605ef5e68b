package auth3p_test

import (
	"testing"

	auth "github.com/goliatone/go-auth3p"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVendor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    auth.Vendor
		wantErr bool
	}{
		{name: "apple", input: "apple", want: auth.VendorApple},
		{name: "google", input: "google", want: auth.VendorGoogle},
		{name: "mixed case", input: "Apple", want: auth.VendorApple},
		{name: "padded", input: "  google  ", want: auth.VendorGoogle},
		{name: "unknown", input: "facebook", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := auth.ParseVendor(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, auth.ErrUnknownVendor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestVendorSubjectPair(t *testing.T) {
	apple, google := auth.VendorApple.SubjectPair("subject-1")
	require.NotNil(t, apple)
	assert.Equal(t, "subject-1", *apple)
	assert.Nil(t, google)

	apple, google = auth.VendorGoogle.SubjectPair("subject-2")
	assert.Nil(t, apple)
	require.NotNil(t, google)
	assert.Equal(t, "subject-2", *google)
}

func TestAllVendors(t *testing.T) {
	vendors := auth.AllVendors()
	assert.Equal(t, []auth.Vendor{auth.VendorApple, auth.VendorGoogle}, vendors)
}
