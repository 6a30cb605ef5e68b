package auth3p_test

import (
	"testing"

	auth "github.com/goliatone/go-auth3p"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserSubjectFor(t *testing.T) {
	subject := "apple-subject"
	user := &auth.User{AppleSubject: &subject}

	got := user.SubjectFor(auth.VendorApple)
	require.NotNil(t, got)
	assert.Equal(t, subject, *got)

	assert.Nil(t, user.SubjectFor(auth.VendorGoogle))
}

func TestUserHasVendorSubject(t *testing.T) {
	empty := ""
	subject := "google-subject"

	assert.False(t, (&auth.User{}).HasVendorSubject())
	assert.False(t, (&auth.User{AppleSubject: &empty}).HasVendorSubject())
	assert.True(t, (&auth.User{GoogleSubject: &subject}).HasVendorSubject())
}

func TestUserAddMetadata(t *testing.T) {
	user := &auth.User{}
	user.AddMetadata("source", "signup").AddMetadata("campaign", "fall")

	assert.Equal(t, "signup", user.Metadata["source"])
	assert.Equal(t, "fall", user.Metadata["campaign"])
}
