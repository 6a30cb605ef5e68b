package auth3p

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Users interface {
	repository.Repository[*User]

	GetByVendorSubject(ctx context.Context, vendor Vendor, subject string) (*User, error)
	GetByVendorSubjectTx(ctx context.Context, tx bun.IDB, vendor Vendor, subject string) (*User, error)
	GetActiveByVendorSubject(ctx context.Context, vendor Vendor, subject string) (*User, error)
	GetActiveByVendorSubjectTx(ctx context.Context, tx bun.IDB, vendor Vendor, subject string) (*User, error)

	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByVendorSubject(ctx context.Context, vendor Vendor, subject string) (*User, error) {
	return a.GetByVendorSubjectTx(ctx, a.db, vendor, subject)
}

func (a *users) GetByVendorSubjectTx(ctx context.Context, tx bun.IDB, vendor Vendor, subject string) (*User, error) {
	return a.getBySubject(ctx, tx, vendor, subject, false)
}

func (a *users) GetActiveByVendorSubject(ctx context.Context, vendor Vendor, subject string) (*User, error) {
	return a.GetActiveByVendorSubjectTx(ctx, a.db, vendor, subject)
}

func (a *users) GetActiveByVendorSubjectTx(ctx context.Context, tx bun.IDB, vendor Vendor, subject string) (*User, error) {
	return a.getBySubject(ctx, tx, vendor, subject, true)
}

func (a *users) getBySubject(ctx context.Context, tx bun.IDB, vendor Vendor, subject string, activeOnly bool) (*User, error) {
	column := vendor.subjectColumn()
	if column == "" {
		return nil, ErrUnknownVendor
	}

	record := &User{}
	q := tx.NewSelect().
		Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), subject)

	if activeOnly {
		q = q.Where("?TableAlias.active = ?", true)
	}

	err := q.Limit(1).Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"vendor":  vendor.String(),
					"subject": subject,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	now := time.Now()
	if record.CreatedAt == nil {
		record.CreatedAt = &now
	}
	if record.UpdatedAt == nil {
		record.UpdatedAt = &now
	}
}
