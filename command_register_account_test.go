package auth3p_test

import (
	"context"
	"sync"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	auth "github.com/goliatone/go-auth3p"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAccountHandlerCreatesUserAndToken(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	ctx := context.Background()
	minter := auth.NewTokenMinter(repo)
	handler := auth.NewRegisterAccountHandler(repo, minter)

	value, err := handler.Execute(ctx, auth.RegisterAccountMessage{
		Vendor:    auth.VendorApple,
		Subject:   "register-sub",
		Email:     "new@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	require.NotEmpty(t, value)

	user, err := minter.Lookup(ctx, value)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, "Ada", user.FirstName)
	assert.Equal(t, "Lovelace", user.LastName)
	assert.True(t, user.Active)
	require.NotNil(t, user.AppleSubject)
	assert.Equal(t, "register-sub", *user.AppleSubject)
	assert.Nil(t, user.GoogleSubject)
}

func TestRegisterAccountHandlerDuplicateSubject(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	ctx := context.Background()
	handler := auth.NewRegisterAccountHandler(repo, auth.NewTokenMinter(repo))

	msg := auth.RegisterAccountMessage{
		Vendor:  auth.VendorGoogle,
		Subject: "dup-sub",
		Email:   "dup@example.com",
	}

	_, err := handler.Execute(ctx, msg)
	require.NoError(t, err)

	_, err = handler.Execute(ctx, msg)
	require.ErrorIs(t, err, auth.ErrAlreadyRegistered)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CodeBadRequest, richErr.Code)
}

func TestRegisterAccountHandlerValidation(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	ctx := context.Background()
	handler := auth.NewRegisterAccountHandler(repo, auth.NewTokenMinter(repo))

	_, err := handler.Execute(ctx, auth.RegisterAccountMessage{
		Vendor:  auth.VendorApple,
		Subject: "no-email-sub",
	})
	require.ErrorIs(t, err, auth.ErrEmailRequired)

	_, err = handler.Execute(ctx, auth.RegisterAccountMessage{
		Vendor: auth.VendorApple,
		Email:  "nosubject@example.com",
	})
	require.ErrorIs(t, err, auth.ErrAssertionMissing)

	_, err = handler.Execute(ctx, auth.RegisterAccountMessage{
		Vendor:  auth.Vendor("facebook"),
		Subject: "sub",
		Email:   "x@example.com",
	})
	require.ErrorIs(t, err, auth.ErrUnknownVendor)
}

func TestRegisterAccountHandlerConstructorRejection(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	handler := auth.NewRegisterAccountHandler(repo, auth.NewTokenMinter(repo),
		auth.WithUserConstructor(func(msg auth.RegisterAccountMessage, email string, apple, google *string) (*auth.User, error) {
			return nil, goerrors.New("profile denied", goerrors.CategoryInternal)
		}),
	)

	_, err := handler.Execute(context.Background(), auth.RegisterAccountMessage{
		Vendor:  auth.VendorApple,
		Subject: "rejected-sub",
		Email:   "rejected@example.com",
	})
	require.ErrorIs(t, err, auth.ErrProfileRejected)
}

func TestRegisterAccountHandlerForcesActive(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	ctx := context.Background()
	minter := auth.NewTokenMinter(repo)

	handler := auth.NewRegisterAccountHandler(repo, minter,
		auth.WithUserConstructor(func(msg auth.RegisterAccountMessage, email string, apple, google *string) (*auth.User, error) {
			user, _ := auth.DefaultUserConstructor(msg, email, apple, google)
			user.Active = false
			return user, nil
		}),
	)

	value, err := handler.Execute(ctx, auth.RegisterAccountMessage{
		Vendor:  auth.VendorGoogle,
		Subject: "forced-active-sub",
		Email:   "forced@example.com",
	})
	require.NoError(t, err)

	user, err := minter.Lookup(ctx, value)
	require.NoError(t, err)
	assert.True(t, user.Active)
}

func TestRegisterAccountHandlerConcurrentDuplicate(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	handler := auth.NewRegisterAccountHandler(repo, auth.NewTokenMinter(repo))

	msg := auth.RegisterAccountMessage{
		Vendor:  auth.VendorApple,
		Subject: "race-sub",
		Email:   "race@example.com",
	}

	const attempts = 4

	var wg sync.WaitGroup
	results := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = handler.Execute(context.Background(), msg)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, auth.ErrAlreadyRegistered)
	}
	require.Equal(t, 1, succeeded, "exactly one registration should win")

	// and the winner produced a single user row
	_, err := repo.Users().GetByVendorSubject(context.Background(), auth.VendorApple, "race-sub")
	require.NoError(t, err)
}

func TestRegisterThenLoginIssuesDistinctTokens(t *testing.T) {
	repo, cleanup := setupRepoManager(t)
	defer cleanup()

	ctx := context.Background()
	minter := auth.NewTokenMinter(repo)
	handler := auth.NewRegisterAccountHandler(repo, minter)
	resolver := auth.NewAccountResolver(repo, minter)

	registered, err := handler.Execute(ctx, auth.RegisterAccountMessage{
		Vendor:  auth.VendorGoogle,
		Subject: "lifecycle-sub",
		Email:   "lifecycle@example.com",
	})
	require.NoError(t, err)

	loggedIn, err := resolver.Resolve(ctx, auth.VendorGoogle, "lifecycle-sub")
	require.NoError(t, err)
	assert.NotEqual(t, registered, loggedIn)

	fromRegister, err := minter.Lookup(ctx, registered)
	require.NoError(t, err)
	fromLogin, err := minter.Lookup(ctx, loggedIn)
	require.NoError(t, err)
	assert.Equal(t, fromRegister.ID, fromLogin.ID)
}
