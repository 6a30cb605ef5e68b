package auth3p_test

import (
	"context"
	"testing"

	auth "github.com/goliatone/go-auth3p"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContextRoundTrip(t *testing.T) {
	user := &auth.User{Email: "ctx@example.com"}

	ctx := auth.WithContext(context.Background(), user)

	got, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user, got)
}

func TestFromContextEmpty(t *testing.T) {
	got, ok := auth.FromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
}
