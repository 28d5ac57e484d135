// Package proof builds selective-disclosure proofs over credential claims and
// checks proofs received from holders.
package proof

import (
	"fmt"

	"mysafepocket/internal/pocket/hasher"
	"mysafepocket/internal/pocket/models"
)

// Generator builds SharedProofs. It is pure: the same inputs always produce the same signature.
type Generator struct{}

// NewGenerator returns a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate discloses the claims of cred named in keys, in the order of keys.
// Unknown keys are dropped and repeated keys appear once. A key is disclosed
// whenever it is present, whatever its value. Generate returns nil when
// identity or cred is nil.
func (g *Generator) Generate(identity *models.Identity, cred *models.Credential, keys []string) (*models.SharedProof, error) {
	if identity == nil || cred == nil {
		return nil, nil
	}

	claims := SelectClaims(cred.Claims, keys)
	signature, err := Sign(cred.Issuer, cred.Type, claims, identity.PrivateKey)
	if err != nil {
		return nil, err
	}

	return &models.SharedProof{
		Claims: claims,
		Issuer: cred.Issuer,
		Type:   cred.TypeName,
		Proof: models.Proof{
			Type:      models.SelectiveDisclosureProofType,
			Signature: signature,
		},
	}, nil
}

// SelectClaims returns the subset of claims named by keys, ordered by keys.
func SelectClaims(claims models.Claims, keys []string) models.Claims {
	var out models.Claims
	for _, k := range keys {
		if out.Has(k) {
			continue
		}
		if v, ok := claims.Get(k); ok {
			out.Set(k, v)
		}
	}
	return out
}

// Sign computes hash(JSON({issuer, type, claims}) + privateKey), serialising
// the payload keys in exactly that order.
func Sign(issuer string, credentialType models.CredentialType, claims models.Claims, privateKey string) (string, error) {
	payload, err := signingPayload(issuer, credentialType, claims)
	if err != nil {
		return "", err
	}
	return hasher.Hash(string(payload) + privateKey), nil
}

func signingPayload(issuer string, credentialType models.CredentialType, claims models.Claims) ([]byte, error) {
	encoded, err := claims.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode disclosed claims: %w", err)
	}
	buf := make([]byte, 0, len(encoded)+64)
	buf = append(buf, `{"issuer":`...)
	buf = models.AppendJSONString(buf, issuer)
	buf = append(buf, `,"type":`...)
	buf = models.AppendJSONString(buf, string(credentialType))
	buf = append(buf, `,"claims":`...)
	buf = append(buf, encoded...)
	return append(buf, '}'), nil
}
