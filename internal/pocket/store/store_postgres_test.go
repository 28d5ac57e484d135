package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"

	"mysafepocket/internal/pocket/models"
)

type PostgresStoreSuite struct {
	suite.Suite
	db    *sql.DB
	mock  sqlmock.Sqlmock
	store *PostgresStore
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupTest() {
	db, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.db = db
	s.mock = mock
	s.store = NewPostgres(db)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.db.Close()
}

var (
	selectRecordRe = regexp.QuoteMeta(selectRecordQuery)
	upsertRecordRe = `INSERT INTO pocket_records .* ON CONFLICT \(pocket_id, record_key\) DO UPDATE`
)

func (s *PostgresStoreSuite) TestLoadIdentity() {
	s.Run("found", func() {
		s.mock.ExpectQuery(selectRecordRe).
			WithArgs("alice", IdentityRecord).
			WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(
				[]byte(`{"did":"did:pixel:sig_d6a4df6","publicKey":"pub","privateKey":"priv"}`)))

		got, err := s.store.LoadIdentity(s.ctx, "alice")
		s.Require().NoError(err)
		s.Equal(models.Identity{DID: "did:pixel:sig_d6a4df6", PublicKey: "pub", PrivateKey: "priv"}, got)
	})

	s.Run("missing maps to ErrNotFound", func() {
		s.mock.ExpectQuery(selectRecordRe).
			WithArgs("bob", IdentityRecord).
			WillReturnError(sql.ErrNoRows)

		_, err := s.store.LoadIdentity(s.ctx, "bob")
		s.ErrorIs(err, ErrNotFound)
	})

	s.Run("driver error is wrapped", func() {
		s.mock.ExpectQuery(selectRecordRe).
			WithArgs("carol", IdentityRecord).
			WillReturnError(errors.New("connection reset"))

		_, err := s.store.LoadIdentity(s.ctx, "carol")
		s.Require().Error(err)
		s.NotErrorIs(err, ErrNotFound)
		s.Contains(err.Error(), "load identity")
	})
}

func (s *PostgresStoreSuite) TestLoadCredentials() {
	s.Run("missing is empty", func() {
		s.mock.ExpectQuery(selectRecordRe).
			WithArgs("alice", CredentialsRecord).
			WillReturnError(sql.ErrNoRows)

		creds, err := s.store.LoadCredentials(s.ctx, "alice")
		s.Require().NoError(err)
		s.NotNil(creds)
		s.Empty(creds)
	})

	s.Run("decodes stored array keeping claim order", func() {
		payload, err := encodeCredentials([]models.Credential{testCredential("cred_a")})
		s.Require().NoError(err)
		s.mock.ExpectQuery(selectRecordRe).
			WithArgs("alice", CredentialsRecord).
			WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))

		creds, err := s.store.LoadCredentials(s.ctx, "alice")
		s.Require().NoError(err)
		s.Require().Len(creds, 1)
		s.Equal([]string{"Name", "Date of Birth", "Vehicle Class", "Points"}, creds[0].Claims.Keys())
	})
}

func (s *PostgresStoreSuite) TestSaveUpserts() {
	identity := testIdentity()
	payload, err := encodeIdentity(identity)
	s.Require().NoError(err)

	s.mock.ExpectExec(upsertRecordRe).
		WithArgs("alice", IdentityRecord, string(payload)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Require().NoError(s.store.SaveIdentity(s.ctx, "alice", identity))

	s.mock.ExpectExec(upsertRecordRe).
		WithArgs("alice", CredentialsRecord, "[]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.Require().NoError(s.store.SaveCredentials(s.ctx, "alice", nil))
}

func (s *PostgresStoreSuite) TestSaveFailure() {
	s.mock.ExpectExec(upsertRecordRe).WillReturnError(errors.New("disk full"))

	err := s.store.SaveCredentials(s.ctx, "alice", []models.Credential{testCredential("cred_a")})
	s.Require().Error(err)
	s.Contains(err.Error(), "save credentials")
}

func (s *PostgresStoreSuite) TestDelete() {
	s.mock.ExpectExec(regexp.QuoteMeta(deletePocketQuery)).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 2))

	s.NoError(s.store.Delete(s.ctx, "alice"))
}
