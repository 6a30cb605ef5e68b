package auth3p

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// RegisterAccountMessage carries the verified claims plus the caller's
// profile fields for a first-time registration.
type RegisterAccountMessage struct {
	Vendor    Vendor         `json:"vendor"`
	Subject   string         `json:"subject"`
	Email     string         `json:"email"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Phone     string         `json:"phone_number"`
	Metadata  map[string]any `json:"metadata"`
	UseHashid bool
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

// DefaultUserConstructor maps a registration message straight onto the
// package's own User model. Embedding applications swap it out when their
// profile shape has to be vetted or extended.
func DefaultUserConstructor(msg RegisterAccountMessage, email string, apple, google *string) (*User, error) {
	return &User{
		Email:         email,
		FirstName:     msg.FirstName,
		LastName:      msg.LastName,
		Phone:         msg.Phone,
		AppleSubject:  apple,
		GoogleSubject: google,
		Active:        true,
		Metadata:      msg.Metadata,
	}, nil
}

// RegisterAccountHandler creates a user for a never-before-seen vendor
// subject and mints the account's first bearer token, all in one
// transaction. The duplicate check and the insert race safely against
// concurrent registrations for the same subject because the subject columns
// are unique: the loser's insert fails and maps back to ErrAlreadyRegistered.
type RegisterAccountHandler struct {
	repo      RepositoryManager
	minter    *TokenMinter
	construct UserConstructor
	logger    Logger
}

type RegisterAccountOption func(*RegisterAccountHandler)

func NewRegisterAccountHandler(repo RepositoryManager, minter *TokenMinter, opts ...RegisterAccountOption) *RegisterAccountHandler {
	h := &RegisterAccountHandler{
		repo:      repo,
		minter:    minter,
		construct: DefaultUserConstructor,
		logger:    defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	return h
}

func WithUserConstructor(construct UserConstructor) RegisterAccountOption {
	return func(h *RegisterAccountHandler) {
		if construct != nil {
			h.construct = construct
		}
	}
}

func WithRegisterLogger(logger Logger) RegisterAccountOption {
	return func(h *RegisterAccountHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Execute registers the account and returns the first bearer token value.
func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) (string, error) {
	select {
	case <-ctx.Done():
		return "", goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) (string, error) {
	if !event.Vendor.Valid() {
		return "", ErrUnknownVendor
	}

	if strings.TrimSpace(event.Subject) == "" {
		return "", ErrAssertionMissing
	}

	email := strings.TrimSpace(event.Email)
	if email == "" {
		return "", ErrEmailRequired
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var value string
	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := h.repo.Users().GetByVendorSubjectTx(ctx, tx, event.Vendor, event.Subject)
		if err != nil && !goerrors.IsNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing account")
		}
		if existing != nil {
			return ErrAlreadyRegistered
		}

		apple, google := event.Vendor.SubjectPair(event.Subject)

		user, err := h.construct(event, email, apple, google)
		if err != nil || user == nil {
			h.logger.Error("register account constructor rejected profile", "error", err)
			return ErrProfileRejected
		}

		user.Active = true
		if event.UseHashid {
			if id, err := hashid.NewUUID(email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			// Lost the race against a concurrent registration for the
			// same subject: the unique column turned it away.
			if IsUniqueViolationError(err) {
				return ErrAlreadyRegistered
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
		}

		token, err := h.minter.IssueTx(ctx, tx, user)
		if err != nil {
			return err
		}

		value = token.Value
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return "", richErr
		}

		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "account registration transaction failed").
			WithCode(goerrors.CodeInternal)
	}

	return value, nil
}
