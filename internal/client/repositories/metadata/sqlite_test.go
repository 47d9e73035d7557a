package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL);`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "token", []byte("abc")))

	v, err := r.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), v)
}

func TestGet_MissingKeyReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSet_Upserts(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "user", []byte(`{"uuid":"1"}`)))
	require.NoError(t, r.Set(ctx, "user", []byte(`{"uuid":"2"}`)))

	v, err := r.Get(ctx, "user")
	require.NoError(t, err)
	assert.JSONEq(t, `{"uuid":"2"}`, string(v))
}

func TestSet_NilValueStoredAsEmpty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "refreshToken", nil))
	v, err := r.Get(ctx, "refreshToken")
	require.NoError(t, err)
	assert.NotNil(t, v)
	assert.Empty(t, v)
}

func TestEmptyKeyRejected(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	assert.ErrorIs(t, r.Set(ctx, "", []byte("x")), ErrEmptyKey)
	_, err := r.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestListDeleteClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{0xAA}))
	require.NoError(t, r.Set(ctx, "b", []byte{0xBB, 0xCC}))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": {0xAA}, "b": {0xBB, 0xCC}}, m)

	require.NoError(t, r.Delete(ctx, "a"))
	require.NoError(t, r.Delete(ctx, "a"))
	m, err = r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 1)

	require.NoError(t, r.Clear(ctx))
	m, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestWorksInsideTransaction(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, NewSQLiteRepository(tx).Set(ctx, "token", []byte("t")))
	require.NoError(t, tx.Rollback())

	v, err := NewSQLiteRepository(db).Get(ctx, "token")
	require.NoError(t, err)
	assert.Nil(t, v, "rolled back write must not be visible")
}

func TestErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	assert.ErrorContains(t, err, `get metadata "k"`)
	assert.ErrorContains(t, r.Set(ctx, "k", []byte("v")), `set metadata "k"`)
	assert.ErrorContains(t, r.Delete(ctx, "k"), `delete metadata "k"`)
	assert.ErrorContains(t, r.Clear(ctx), "clear metadata")
	_, err = r.List(ctx)
	assert.ErrorContains(t, err, "list metadata")
}
