package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "mysafepocket/pkg/domain-errors"
)

const (
	// DIDPrefix starts every holder DID.
	DIDPrefix = "did:pixel:"

	// IssuerDID is the fixed mock issuer recorded on every credential and proof.
	IssuerDID = "did:pixel:issuer:gov"

	// CredentialProofType labels the issuance signature.
	CredentialProofType = "MockSignature2024"

	// SelectiveDisclosureProofType labels the signature on a shared proof.
	SelectiveDisclosureProofType = "MockSelectiveDisclosureProof2024"

	// IssuanceDateLayout is ISO 8601 UTC with millisecond precision.
	IssuanceDateLayout = "2006-01-02T15:04:05.000Z"

	credentialIDPrefix = "cred_"
)

// Identity is the holder keypair and the DID derived from the public key.
// PrivateKey never leaves the pocket: it is excluded from credentials, proofs, and API responses.
type Identity struct {
	DID        string `json:"did"`
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}

// CredentialType names a document template, e.g. "PASSPORT".
type CredentialType string

// CredentialID identifies a credential within one pocket.
type CredentialID string

// NewCredentialID generates a new credential ID with a stable prefix.
func NewCredentialID() CredentialID {
	return CredentialID(credentialIDPrefix + uuid.NewString())
}

// ParseCredentialID validates a credential ID taken from a request.
func ParseCredentialID(value string) (CredentialID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "credential_id is required")
	}
	if !strings.HasPrefix(value, credentialIDPrefix) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "credential_id must start with cred_")
	}
	return CredentialID(value), nil
}

func (id CredentialID) String() string {
	return string(id)
}

// Proof is the signature block attached to credentials and shared proofs.
type Proof struct {
	Type      string `json:"type"`
	Signature string `json:"signature"`
}

// FileRef records the source document a credential was issued from.
type FileRef struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	IPFSHash string `json:"ipfsHash"`
}

// Credential is a self-issued verifiable credential held in a pocket.
type Credential struct {
	ID           CredentialID   `json:"id"`
	Issuer       string         `json:"issuer"`
	IssuanceDate string         `json:"issuanceDate"`
	Type         CredentialType `json:"type"`
	TypeName     string         `json:"typeName"`
	Claims       Claims         `json:"claims"`
	Proof        Proof          `json:"proof"`
	File         FileRef        `json:"file"`
}

// IssuedAt parses IssuanceDate.
func (c Credential) IssuedAt() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, c.IssuanceDate)
}

// SharedProof is a selective disclosure of one credential's claims. It is transient and never persisted.
// Type carries the credential's display name.
type SharedProof struct {
	Claims Claims `json:"claims"`
	Issuer string `json:"issuer"`
	Type   string `json:"type"`
	Proof  Proof  `json:"proof"`
}

// SourceFile describes an uploaded document. Only the metadata is used.
type SourceFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// DocumentTemplate is a catalog entry.
type DocumentTemplate struct {
	Type     CredentialType `json:"type"`
	TypeName string         `json:"typeName"`
	Claims   Claims         `json:"claims"`
}

// FormatIssuanceDate renders t in IssuanceDateLayout.
func FormatIssuanceDate(t time.Time) string {
	return t.UTC().Format(IssuanceDateLayout)
}
