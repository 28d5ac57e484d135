package handler

import (
	"mysafepocket/internal/pocket/models"
	"mysafepocket/internal/pocket/proof"
)

// PocketResponse is the public view of a pocket. The private key is never returned.
type PocketResponse struct {
	DID             string `json:"did"`
	PublicKey       string `json:"public_key"`
	CredentialCount *int   `json:"credential_count,omitempty"`
}

type CredentialsResponse struct {
	Credentials []models.Credential `json:"credentials"`
}

type CatalogResponse struct {
	Templates []models.DocumentTemplate `json:"templates"`
}

// VerifyResponse renders one of three states: verified, failed or error.
type VerifyResponse struct {
	Status       proof.Status        `json:"status"`
	Proof        *models.SharedProof `json:"proof,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
}

func toPocketResponse(identity models.Identity) PocketResponse {
	return PocketResponse{DID: identity.DID, PublicKey: identity.PublicKey}
}

func toVerifyResponse(outcome proof.Outcome) VerifyResponse {
	return VerifyResponse{
		Status:       outcome.Status,
		Proof:        outcome.Proof,
		ErrorMessage: outcome.Message,
	}
}
