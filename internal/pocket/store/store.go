// Package store persists pocket records: the holder identity and the credential list.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"mysafepocket/internal/pocket/models"
	"mysafepocket/pkg/platform/sentinel"
)

// Record names of the two documents kept per pocket.
const (
	IdentityRecord    = "mysafepocket-identity"
	CredentialsRecord = "mysafepocket-credentials"
)

// ErrNotFound is returned when a pocket has no identity record.
var ErrNotFound = sentinel.ErrNotFound

func encodeIdentity(identity models.Identity) ([]byte, error) {
	return encode(identity)
}

func decodeIdentity(data []byte) (models.Identity, error) {
	var identity models.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return models.Identity{}, fmt.Errorf("decode identity record: %w", err)
	}
	return identity, nil
}

func encodeCredentials(creds []models.Credential) ([]byte, error) {
	if creds == nil {
		creds = []models.Credential{}
	}
	return encode(creds)
}

func decodeCredentials(data []byte) ([]models.Credential, error) {
	creds := []models.Credential{}
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("decode credentials record: %w", err)
	}
	if creds == nil {
		creds = []models.Credential{}
	}
	return creds, nil
}

// encode writes compact JSON without HTML escaping so stored claims read the
// same as their signed form.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
