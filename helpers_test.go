package auth3p_test

import (
	"context"
	"database/sql"
	"testing"

	auth "github.com/goliatone/go-auth3p"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) (*bun.DB, func()) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	require.NoError(t, auth.CreateAuthTables(context.Background(), bunDB))

	cleanup := func() {
		_ = bunDB.Close()
		_ = db.Close()
	}

	return bunDB, cleanup
}

func setupRepoManager(t *testing.T) (auth.RepositoryManager, func()) {
	t.Helper()

	db, cleanup := setupTestDB(t)
	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	return repo, cleanup
}

func registerTestUser(t *testing.T, repo auth.RepositoryManager, vendor auth.Vendor, subject, email string, active bool) *auth.User {
	t.Helper()

	apple, google := vendor.SubjectPair(subject)
	user, err := repo.Users().Create(context.Background(), &auth.User{
		Email:         email,
		AppleSubject:  apple,
		GoogleSubject: google,
		Active:        active,
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	return user
}
