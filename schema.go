package auth3p

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// CreateAuthTables creates the users and user_tokens tables from the bun
// model definitions. Meant for tests and small deployments; production
// setups usually run their own migrations.
func CreateAuthTables(ctx context.Context, db bun.IDB) error {
	if _, err := db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create users table")
	}

	if _, err := db.NewCreateTable().
		Model((*Token)(nil)).
		IfNotExists().
		WithForeignKeys().
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create user_tokens table")
	}

	return nil
}
