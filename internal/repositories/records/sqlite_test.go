package records

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/database"
	"github.com/dmitrijs2005/passvault/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.InitDatabase(context.Background(), database.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestWriteAndRead(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Write(ctx, "vault", "user", []byte{0x01, 0x02}))

	v, err := r.Read(ctx, "vault", "user")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, v)
}

func TestRead_Absent_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Read(context.Background(), "vault", "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestWrite_UpsertOverwrites(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Write(ctx, "vault", "k", []byte("old")))
	require.NoError(t, r.Write(ctx, "vault", "k", []byte("new")))

	v, err := r.Read(ctx, "vault", "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
}

func TestNamespacesAreIsolated(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Write(ctx, "a", "k", []byte("in a")))
	require.NoError(t, r.Write(ctx, "b", "k", []byte("in b")))

	v, err := r.Read(ctx, "a", "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("in a"), v)

	m, err := r.List(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"k": []byte("in b")}, m)

	require.NoError(t, r.Clear(ctx, "a"))
	v, err = r.Read(ctx, "b", "k")
	require.NoError(t, err)
	assert.NotNil(t, v, "clearing one namespace must not touch another")
}

func TestDelete_IsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Write(ctx, "vault", "x", []byte{0x01}))
	require.NoError(t, r.Delete(ctx, "vault", "x"))

	v, err := r.Read(ctx, "vault", "x")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, r.Delete(ctx, "vault", "x"))
}

func TestWrite_InsideRolledBackTx_IsDiscarded(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		require.NoError(t, NewSQLiteRepository(tx).Write(ctx, "vault", "k", []byte("v")))
		return boom
	})
	require.ErrorIs(t, err, boom)

	v, err := NewSQLiteRepository(db).Read(ctx, "vault", "k")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestErrorsWrapStorage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbErr := errors.New("db down")
	mock.ExpectQuery(`SELECT value FROM records`).WillReturnError(dbErr)
	mock.ExpectExec(`INSERT INTO records`).WillReturnError(dbErr)
	mock.ExpectExec(`DELETE FROM records WHERE namespace = \? AND key = \?`).WillReturnError(dbErr)
	mock.ExpectExec(`DELETE FROM records WHERE namespace = \?`).WillReturnError(dbErr)
	mock.ExpectQuery(`SELECT key, value FROM records`).WillReturnError(dbErr)

	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err = r.Read(ctx, "vault", "k")
	require.ErrorIs(t, err, common.ErrStorage)
	require.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "failed to read record[vault/k]")

	err = r.Write(ctx, "vault", "k", []byte("v"))
	require.ErrorIs(t, err, common.ErrStorage)
	assert.Contains(t, err.Error(), "failed to write record[vault/k]")

	err = r.Delete(ctx, "vault", "k")
	require.ErrorIs(t, err, common.ErrStorage)

	err = r.Clear(ctx, "vault")
	require.ErrorIs(t, err, common.ErrStorage)

	_, err = r.List(ctx, "vault")
	require.ErrorIs(t, err, common.ErrStorage)

	require.NoError(t, mock.ExpectationsWereMet())
}
