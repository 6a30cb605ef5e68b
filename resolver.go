package auth3p

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// AccountResolver turns a verified (vendor, subject) pair into a bearer
// credential for an existing active account. It always mints a fresh token
// rather than reusing one, which keeps every login auditable as its own row.
type AccountResolver struct {
	repo   RepositoryManager
	minter *TokenMinter
	logger Logger
}

func NewAccountResolver(repo RepositoryManager, minter *TokenMinter) *AccountResolver {
	return &AccountResolver{
		repo:   repo,
		minter: minter,
		logger: defLogger{},
	}
}

func (r *AccountResolver) WithLogger(logger Logger) *AccountResolver {
	r.logger = logger
	return r
}

// Resolve returns a freshly issued token value for the active user matching
// the vendor subject, or ErrNoActiveAccount when no such user exists. An
// inactive account is indistinguishable from an unknown one by design.
func (r *AccountResolver) Resolve(ctx context.Context, vendor Vendor, subject string) (string, error) {
	if !vendor.Valid() {
		return "", ErrUnknownVendor
	}

	user, err := r.repo.Users().GetActiveByVendorSubject(ctx, vendor, subject)
	if err != nil {
		if goerrors.IsNotFound(err) {
			r.logger.Info("login rejected, no active account", "vendor", vendor.String())
			return "", ErrNoActiveAccount
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve account").
			WithCode(goerrors.CodeInternal)
	}

	token, err := r.minter.Issue(ctx, user)
	if err != nil {
		return "", err
	}

	return token.Value, nil
}
