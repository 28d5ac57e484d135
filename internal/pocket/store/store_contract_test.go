package store

import (
	"context"

	"github.com/stretchr/testify/suite"

	"mysafepocket/internal/pocket/models"
)

// pocketStore is the behaviour every backend shares.
type pocketStore interface {
	LoadIdentity(ctx context.Context, pocketID string) (models.Identity, error)
	SaveIdentity(ctx context.Context, pocketID string, identity models.Identity) error
	LoadCredentials(ctx context.Context, pocketID string) ([]models.Credential, error)
	SaveCredentials(ctx context.Context, pocketID string, creds []models.Credential) error
	Delete(ctx context.Context, pocketID string) error
	Ping(ctx context.Context) error
}

// storeContractSuite runs the same behavioural checks against each backend.
type storeContractSuite struct {
	suite.Suite
	newStore func() pocketStore
	store    pocketStore
	ctx      context.Context
}

func (s *storeContractSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore()
}

func testIdentity() models.Identity {
	return models.Identity{
		DID:        "did:pixel:sig_d6a4df6",
		PublicKey:  "pub_key_Alice_1700000000000_1a2b3c4d",
		PrivateKey: "priv_key_Alice_1700000000000_1a2b3c4d",
	}
}

func testCredential(id string) models.Credential {
	return models.Credential{
		ID:           models.CredentialID(id),
		Issuer:       models.IssuerDID,
		IssuanceDate: "2023-11-14T22:13:20.000Z",
		Type:         "DRIVING_LICENSE",
		TypeName:     "Driving License",
		Claims: models.NewClaims(
			models.Claim{Key: "Name", Value: models.Text("Rohan Singh")},
			models.Claim{Key: "Date of Birth", Value: models.Text("25-12-1995")},
			models.Claim{Key: "Vehicle Class", Value: models.Text("Motorcycle, Car")},
			models.Claim{Key: "Points", Value: models.Number(12)},
		),
		Proof: models.Proof{Type: models.CredentialProofType, Signature: "sig_68bf9e3e"},
		File:  models.FileRef{Name: "id.png", Type: "image/png", IPFSHash: "Qmsig_5c7a9134"},
	}
}

func (s *storeContractSuite) TestMissingIdentity() {
	_, err := s.store.LoadIdentity(s.ctx, "pocket-missing")
	s.ErrorIs(err, ErrNotFound)
}

func (s *storeContractSuite) TestMissingCredentialsIsEmpty() {
	creds, err := s.store.LoadCredentials(s.ctx, "pocket-missing")
	s.Require().NoError(err)
	s.NotNil(creds)
	s.Empty(creds)
}

func (s *storeContractSuite) TestIdentityRoundTrip() {
	s.Require().NoError(s.store.SaveIdentity(s.ctx, "pocket-1", testIdentity()))

	got, err := s.store.LoadIdentity(s.ctx, "pocket-1")
	s.Require().NoError(err)
	s.Equal(testIdentity(), got)
}

func (s *storeContractSuite) TestCredentialsKeepClaimOrder() {
	creds := []models.Credential{testCredential("cred_a"), testCredential("cred_b")}
	s.Require().NoError(s.store.SaveCredentials(s.ctx, "pocket-1", creds))

	got, err := s.store.LoadCredentials(s.ctx, "pocket-1")
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(models.CredentialID("cred_a"), got[0].ID)
	s.Equal([]string{"Name", "Date of Birth", "Vehicle Class", "Points"}, got[0].Claims.Keys())
	s.True(got[1].Claims.Equal(creds[1].Claims))
	s.Equal(creds[0].File, got[0].File)
	s.Equal(creds[0].Proof, got[0].Proof)
}

func (s *storeContractSuite) TestSaveOverwrites() {
	s.Require().NoError(s.store.SaveCredentials(s.ctx, "pocket-1", []models.Credential{testCredential("cred_a")}))
	s.Require().NoError(s.store.SaveCredentials(s.ctx, "pocket-1", nil))

	got, err := s.store.LoadCredentials(s.ctx, "pocket-1")
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *storeContractSuite) TestDeleteRemovesBothRecords() {
	s.Require().NoError(s.store.SaveIdentity(s.ctx, "pocket-1", testIdentity()))
	s.Require().NoError(s.store.SaveCredentials(s.ctx, "pocket-1", []models.Credential{testCredential("cred_a")}))
	s.Require().NoError(s.store.SaveIdentity(s.ctx, "pocket-2", testIdentity()))

	s.Require().NoError(s.store.Delete(s.ctx, "pocket-1"))

	_, err := s.store.LoadIdentity(s.ctx, "pocket-1")
	s.ErrorIs(err, ErrNotFound)
	creds, err := s.store.LoadCredentials(s.ctx, "pocket-1")
	s.Require().NoError(err)
	s.Empty(creds)

	_, err = s.store.LoadIdentity(s.ctx, "pocket-2")
	s.NoError(err, "other pockets are untouched")

	s.NoError(s.store.Delete(s.ctx, "pocket-unknown"))
}

func (s *storeContractSuite) TestPing() {
	s.NoError(s.store.Ping(s.ctx))
}
