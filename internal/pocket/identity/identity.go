// Package identity generates holder keypairs and derives their DIDs.
package identity

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"mysafepocket/internal/pocket/hasher"
	"mysafepocket/internal/pocket/models"
	dErrors "mysafepocket/pkg/domain-errors"
)

// Manager creates identities. It has no side effects.
type Manager struct {
	now   func() time.Time
	nonce func() string
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source used in key material.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithNonce overrides the per-call nonce source.
func WithNonce(nonce func() string) Option {
	return func(m *Manager) {
		m.nonce = nonce
	}
}

// NewManager returns a Manager using the wall clock and UUID-derived nonces.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		now:   time.Now,
		nonce: defaultNonce,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// defaultNonce is the first segment of a random UUID.
func defaultNonce() string {
	id := uuid.NewString()
	return id[:strings.IndexByte(id, '-')]
}

// Create generates a keypair embedding displayName, the current time and a
// nonce, and derives the DID from the public key.
func (m *Manager) Create(displayName string) (models.Identity, error) {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return models.Identity{}, dErrors.New(dErrors.CodeValidation, "display name is required")
	}

	suffix := name + "_" + strconv.FormatInt(m.now().UnixMilli(), 10) + "_" + m.nonce()
	publicKey := "pub_key_" + suffix

	return models.Identity{
		DID:        DeriveDID(publicKey),
		PublicKey:  publicKey,
		PrivateKey: "priv_key_" + suffix,
	}, nil
}

// DeriveDID returns "did:pixel:" followed by the hash of publicKey.
func DeriveDID(publicKey string) string {
	return models.DIDPrefix + hasher.Hash(publicKey)
}
