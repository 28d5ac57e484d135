// Package issuer turns an uploaded document into a signed credential using
// the document catalog.
package issuer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"mysafepocket/internal/pocket/catalog"
	"mysafepocket/internal/pocket/hasher"
	"mysafepocket/internal/pocket/models"
	dErrors "mysafepocket/pkg/domain-errors"
)

// ErrNoIdentity is returned when issuance is attempted before a pocket identity exists.
var ErrNoIdentity = dErrors.New(dErrors.CodeNoIdentity, "No identity found")

// ContentAddresser produces the content address recorded for an uploaded document.
type ContentAddresser interface {
	Address(ctx context.Context, fileName string, at time.Time) (string, error)
}

// PlaceholderAddresser derives "Qm" + hash(name + unix millis) without storing anything.
type PlaceholderAddresser struct{}

// Address implements ContentAddresser.
func (PlaceholderAddresser) Address(ctx context.Context, fileName string, at time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "Qm" + hasher.Hash(fileName+strconv.FormatInt(at.UnixMilli(), 10)), nil
}

// Issuer issues credentials.
type Issuer struct {
	catalog    *catalog.Catalog
	classifier catalog.Classifier
	addresser  ContentAddresser
	now        func() time.Time
	newID      func() models.CredentialID
}

// Option configures an Issuer.
type Option func(*Issuer)

func WithClassifier(c catalog.Classifier) Option {
	return func(i *Issuer) {
		i.classifier = c
	}
}

func WithAddresser(a ContentAddresser) Option {
	return func(i *Issuer) {
		i.addresser = a
	}
}

func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

// WithIDGenerator overrides credential ID generation.
func WithIDGenerator(newID func() models.CredentialID) Option {
	return func(i *Issuer) {
		i.newID = newID
	}
}

// New returns an Issuer over cat. By default documents are classified by size
// modulo the catalog length and addressed with PlaceholderAddresser.
func New(cat *catalog.Catalog, opts ...Option) *Issuer {
	i := &Issuer{
		catalog:   cat,
		addresser: PlaceholderAddresser{},
		now:       time.Now,
		newID:     models.NewCredentialID,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.classifier == nil {
		i.classifier = catalog.SizeModuloClassifier{Catalog: cat}
	}
	return i
}

// Catalog returns the templates credentials are issued from.
func (i *Issuer) Catalog() *catalog.Catalog {
	return i.catalog
}

// Issue builds a credential for file, signed with the identity's private key.
// A nil identity fails with ErrNoIdentity before anything else happens.
func (i *Issuer) Issue(ctx context.Context, identity *models.Identity, file models.SourceFile) (models.Credential, error) {
	if identity == nil {
		return models.Credential{}, ErrNoIdentity
	}
	if file.Size < 0 {
		return models.Credential{}, dErrors.New(dErrors.CodeValidation, "file size must not be negative")
	}

	issuedAt := i.now()
	ipfsHash, err := i.addresser.Address(ctx, file.Name, issuedAt)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return models.Credential{}, dErrors.Wrap(err, dErrors.CodeTimeout, "issuance interrupted")
		}
		return models.Credential{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to address document")
	}

	idx, err := i.classifier.Classify(ctx, file)
	if err != nil {
		return models.Credential{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to classify document")
	}
	template, err := i.catalog.At(idx)
	if err != nil {
		return models.Credential{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to classify document")
	}

	signature, err := Sign(template.Claims, identity.PrivateKey)
	if err != nil {
		return models.Credential{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign credential")
	}

	return models.Credential{
		ID:           i.newID(),
		Issuer:       models.IssuerDID,
		IssuanceDate: models.FormatIssuanceDate(issuedAt),
		Type:         template.Type,
		TypeName:     template.TypeName,
		Claims:       template.Claims,
		Proof: models.Proof{
			Type:      models.CredentialProofType,
			Signature: signature,
		},
		File: models.FileRef{
			Name:     file.Name,
			Type:     file.Type,
			IPFSHash: ipfsHash,
		},
	}, nil
}

// Sign computes the issuance signature: hash(JSON(claims) + privateKey).
func Sign(claims models.Claims, privateKey string) (string, error) {
	payload, err := claims.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("encode claims: %w", err)
	}
	return hasher.Hash(string(payload) + privateKey), nil
}

// VerifyIntegrity reports whether cred still carries the signature identity
// would have produced for its claims. It detects tampered persisted credentials.
func VerifyIntegrity(identity models.Identity, cred models.Credential) bool {
	signature, err := Sign(cred.Claims, identity.PrivateKey)
	if err != nil {
		return false
	}
	return signature == cred.Proof.Signature
}
