package database

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysafepocket/migrations"
)

func TestMigrateRunsUpFilesInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	files := fstest.MapFS{
		"000002_second.up.sql":  {Data: []byte("CREATE TABLE b (id INT)")},
		"000001_first.up.sql":   {Data: []byte("CREATE TABLE a (id INT)")},
		"000001_first.down.sql": {Data: []byte("DROP TABLE a")},
		"README.md":             {Data: []byte("ignored")},
	}

	mock.ExpectExec("CREATE TABLE a").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE b").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), db, files))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateStopsOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("syntax error"))

	err = Migrate(context.Background(), db, fstest.MapFS{
		"000001_first.up.sql": {Data: []byte("CREATE TABLE a (")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute migration 000001_first.up.sql")
}

func TestMigrateEmbeddedSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS pocket_records").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), db, migrations.FS))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNilPool(t *testing.T) {
	var p *Pool
	assert.Error(t, p.Health(context.Background()))
	assert.NoError(t, p.Close())
}

func TestNewRequiresURL(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}
