package auth3p

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Tokens interface {
	repository.Repository[*Token]

	GetByValue(ctx context.Context, value string) (*Token, error)
	GetByValueTx(ctx context.Context, tx bun.IDB, value string) (*Token, error)

	Create(ctx context.Context, record *Token, criteria ...repository.InsertCriteria) (*Token, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Token, criteria ...repository.InsertCriteria) (*Token, error)

	DeleteByValue(ctx context.Context, value string) error
	DeleteByValueTx(ctx context.Context, tx bun.IDB, value string) error
}

type tokens struct {
	repository.Repository[*Token]
	db *bun.DB
}

var (
	_ Tokens                        = (*tokens)(nil)
	_ repository.Repository[*Token] = (*tokens)(nil)
)

func NewTokensRepository(db *bun.DB) Tokens {
	repo := repository.NewRepository[*Token](db, repository.ModelHandlers[*Token]{
		NewRecord: func() *Token { return &Token{} },
		GetID: func(t *Token) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *Token, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "value"
		},
	})

	return &tokens{
		Repository: repo,
		db:         db,
	}
}

func (a *tokens) GetByValue(ctx context.Context, value string) (*Token, error) {
	return a.GetByValueTx(ctx, a.db, value)
}

func (a *tokens) GetByValueTx(ctx context.Context, tx bun.IDB, value string) (*Token, error) {
	record := &Token{}
	err := tx.NewSelect().
		Model(record).
		Relation("User").
		Where("?TableAlias.value = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (a *tokens) Create(ctx context.Context, record *Token, criteria ...repository.InsertCriteria) (*Token, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *tokens) CreateTx(ctx context.Context, tx bun.IDB, record *Token, criteria ...repository.InsertCriteria) (*Token, error) {
	prepareTokenDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

// DeleteByValue removes a token row, which is how a bearer credential gets
// revoked. Revocation policy itself lives with the embedding application.
func (a *tokens) DeleteByValue(ctx context.Context, value string) error {
	return a.DeleteByValueTx(ctx, a.db, value)
}

func (a *tokens) DeleteByValueTx(ctx context.Context, tx bun.IDB, value string) error {
	_, err := tx.NewDelete().
		Model((*Token)(nil)).
		Where("?TableAlias.value = ?", value).
		Exec(ctx)
	return err
}

func prepareTokenDefaults(record *Token) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.CreatedAt == nil {
		now := time.Now()
		record.CreatedAt = &now
	}
}
