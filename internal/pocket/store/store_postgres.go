package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mysafepocket/internal/pocket/models"
)

// PostgresStore persists pocket records in the pocket_records table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed pocket store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const (
	selectRecordQuery = `SELECT payload FROM pocket_records WHERE pocket_id = $1 AND record_key = $2`
	upsertRecordQuery = `
		INSERT INTO pocket_records (pocket_id, record_key, payload, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (pocket_id, record_key) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`
	deletePocketQuery = `DELETE FROM pocket_records WHERE pocket_id = $1`
)

func (s *PostgresStore) load(ctx context.Context, pocketID, record string) ([]byte, error) {
	var payload []byte
	if err := s.db.QueryRowContext(ctx, selectRecordQuery, pocketID, record).Scan(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *PostgresStore) save(ctx context.Context, pocketID, record string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, upsertRecordQuery, pocketID, record, string(payload))
	return err
}

// LoadIdentity returns the pocket identity or ErrNotFound.
func (s *PostgresStore) LoadIdentity(ctx context.Context, pocketID string) (models.Identity, error) {
	data, err := s.load(ctx, pocketID, IdentityRecord)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Identity{}, ErrNotFound
		}
		return models.Identity{}, fmt.Errorf("load identity: %w", err)
	}
	return decodeIdentity(data)
}

func (s *PostgresStore) SaveIdentity(ctx context.Context, pocketID string, identity models.Identity) error {
	data, err := encodeIdentity(identity)
	if err != nil {
		return err
	}
	if err := s.save(ctx, pocketID, IdentityRecord, data); err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

// LoadCredentials returns the stored credentials, or an empty slice when none were saved.
func (s *PostgresStore) LoadCredentials(ctx context.Context, pocketID string) ([]models.Credential, error) {
	data, err := s.load(ctx, pocketID, CredentialsRecord)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []models.Credential{}, nil
		}
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	return decodeCredentials(data)
}

func (s *PostgresStore) SaveCredentials(ctx context.Context, pocketID string, creds []models.Credential) error {
	data, err := encodeCredentials(creds)
	if err != nil {
		return err
	}
	if err := s.save(ctx, pocketID, CredentialsRecord, data); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// Delete removes both records of a pocket.
func (s *PostgresStore) Delete(ctx context.Context, pocketID string) error {
	if _, err := s.db.ExecContext(ctx, deletePocketQuery, pocketID); err != nil {
		return fmt.Errorf("delete pocket: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
