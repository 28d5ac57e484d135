package proof

import (
	"bytes"
	"encoding/json"
	"strings"

	"mysafepocket/internal/pocket/models"
	dErrors "mysafepocket/pkg/domain-errors"
)

// Verifier checks shared proofs.
type Verifier struct{}

// NewVerifier returns a Verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify accepts any proof that discloses at least one claim. It does not
// recompute the signature: the verifier has no access to the holder's key.
func (v *Verifier) Verify(p models.SharedProof) bool {
	return p.Claims.Len() > 0
}

var (
	// ErrEmptyProofData is returned for blank verifier input.
	ErrEmptyProofData = dErrors.New(dErrors.CodeValidation, "Proof data cannot be empty.")

	// ErrMalformedProof is returned for input that is not a structurally complete proof.
	// The message never includes parser details.
	ErrMalformedProof = dErrors.New(dErrors.CodeMalformedProof, "Invalid proof data. Please paste the exact data.")
)

// wireProof detects missing fields that the models type would zero silently.
type wireProof struct {
	Claims *models.Claims `json:"claims"`
	Issuer *string        `json:"issuer"`
	Type   string         `json:"type"`
	Proof  *models.Proof  `json:"proof"`
}

// Parse decodes pasted or scanned proof data. The claims object, a non-empty
// issuer and the proof block must be present; type is optional.
func Parse(data string) (models.SharedProof, error) {
	if strings.TrimSpace(data) == "" {
		return models.SharedProof{}, ErrEmptyProofData
	}

	var w wireProof
	if err := json.Unmarshal([]byte(data), &w); err != nil {
		return models.SharedProof{}, ErrMalformedProof
	}
	if w.Claims == nil || w.Issuer == nil || *w.Issuer == "" || w.Proof == nil {
		return models.SharedProof{}, ErrMalformedProof
	}

	return models.SharedProof{
		Claims: *w.Claims,
		Issuer: *w.Issuer,
		Type:   w.Type,
		Proof:  *w.Proof,
	}, nil
}

// Encode renders p as compact JSON, the form shared by QR code or clipboard.
func Encode(p models.SharedProof) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Status is the result category of a verification attempt.
type Status string

const (
	StatusVerified Status = "verified"
	StatusFailed   Status = "failed"
	StatusError    Status = "error"
)

// Outcome is the presentation-ready result of checking proof data.
// Proof is set for verified and failed outcomes; Message is set for errors.
type Outcome struct {
	Status  Status
	Proof   *models.SharedProof
	Message string
}

// Check parses data and verifies the resulting proof.
func Check(v *Verifier, data string) Outcome {
	p, err := Parse(data)
	if err != nil {
		return Outcome{Status: StatusError, Message: err.Error()}
	}
	if v.Verify(p) {
		return Outcome{Status: StatusVerified, Proof: &p}
	}
	return Outcome{Status: StatusFailed, Proof: &p}
}
