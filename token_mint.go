package auth3p

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TokenEntropyBytes is how much randomness goes into a bearer value.
const TokenEntropyBytes = 16

// GenerateTokenValue returns a fresh unguessable bearer value.
func GenerateTokenValue() (string, error) {
	buf := make([]byte, TokenEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read token entropy")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// TokenMinter issues opaque bearer tokens and resolves them back to users.
type TokenMinter struct {
	repo   RepositoryManager
	logger Logger
}

func NewTokenMinter(repo RepositoryManager) *TokenMinter {
	return &TokenMinter{
		repo:   repo,
		logger: defLogger{},
	}
}

func (m *TokenMinter) WithLogger(logger Logger) *TokenMinter {
	m.logger = logger
	return m
}

// Issue mints and persists a fresh token bound to the user.
func (m *TokenMinter) Issue(ctx context.Context, user *User) (*Token, error) {
	var token *Token
	err := m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		token, err = m.IssueTx(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

// IssueTx mints a token inside an existing transaction. A unique violation
// on the value column is a fatal storage error: values carry 16 bytes of
// entropy, a collision means something upstream is broken, so it is never
// silently retried.
func (m *TokenMinter) IssueTx(ctx context.Context, tx bun.IDB, user *User) (*Token, error) {
	if user == nil || user.ID == uuid.Nil {
		return nil, goerrors.New("token requires a persisted user", goerrors.CategoryBadInput)
	}

	value, err := GenerateTokenValue()
	if err != nil {
		return nil, err
	}

	token := &Token{
		Value:  value,
		UserID: user.ID,
	}

	token, err = m.repo.Tokens().CreateTx(ctx, tx, token)
	if err != nil {
		m.logger.Error("token mint persist error", "error", err, "user_id", user.ID.String())
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist token").
			WithCode(goerrors.CodeInternal)
	}

	token.User = user
	return token, nil
}

// Lookup resolves a bearer value to its owning user, failing with
// ErrTokenNotFound when the value matches no row.
//
// Lookup deliberately does NOT check the owning user's active flag: a token
// issued before an account was deactivated keeps authenticating API calls
// until its row is deleted. Only the login/resolve path re-checks active.
// Embedders who want deactivation to cut existing sessions should delete the
// user's token rows when flipping the flag.
func (m *TokenMinter) Lookup(ctx context.Context, value string) (*User, error) {
	token, err := m.repo.Tokens().GetByValue(ctx, value)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrTokenNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up token").
			WithCode(goerrors.CodeInternal)
	}

	if token.User == nil {
		return nil, goerrors.New("token row has no owning user", goerrors.CategoryInternal).
			WithCode(goerrors.CodeInternal)
	}

	return token.User, nil
}
