package audit

import "time"

// Event records one pocket lifecycle action. Events carry identifiers and
// claim names only; claim values and key material never appear here.
type Event struct {
	Timestamp      time.Time  `json:"timestamp"`
	Action         AuditEvent `json:"action"`
	PocketID       string     `json:"pocket_id"`
	DID            string     `json:"did,omitempty"`
	CredentialID   string     `json:"credential_id,omitempty"`
	CredentialType string     `json:"credential_type,omitempty"`
	ClaimNames     []string   `json:"claim_names,omitempty"`
	Status         string     `json:"status,omitempty"`
	RequestID      string     `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventPocketCreated    AuditEvent = "pocket_created"
	EventPocketDeleted    AuditEvent = "pocket_deleted"
	EventCredentialIssued AuditEvent = "credential_issued"
	EventProofGenerated   AuditEvent = "proof_generated"
	EventProofVerified    AuditEvent = "proof_verified"
)
