package service

import (
	"context"
	"slices"
	"sync/atomic"

	"mysafepocket/internal/audit"
	"mysafepocket/internal/platform/tracer"
	"mysafepocket/internal/pocket/models"
	dErrors "mysafepocket/pkg/domain-errors"
)

// Session is a handle on one open pocket. It is safe for concurrent use;
// mutations are serialised per pocket.
type Session struct {
	svc    *Service
	state  *pocketState
	closed atomic.Bool
}

// PocketID returns the pocket the session is bound to.
func (sess *Session) PocketID() string {
	return sess.state.pocketID
}

func (sess *Session) markClosed() bool {
	return sess.closed.CompareAndSwap(false, true)
}

// lock acquires the pocket lock, failing once the session is closed.
// The flag is checked again under the lock since Close may have won the
// race and dropped the state.
func (sess *Session) lock() error {
	if sess.closed.Load() {
		return ErrSessionClosed
	}
	sess.state.mu.Lock()
	if sess.closed.Load() {
		sess.state.mu.Unlock()
		return ErrSessionClosed
	}
	return nil
}

func (sess *Session) unlock() {
	sess.state.mu.Unlock()
}

// Identity returns a copy of the pocket identity, or nil when no pocket
// has been created.
func (sess *Session) Identity() (*models.Identity, error) {
	if err := sess.lock(); err != nil {
		return nil, err
	}
	defer sess.unlock()
	if sess.state.identity == nil {
		return nil, nil
	}
	ident := *sess.state.identity
	return &ident, nil
}

// Credentials returns the pocket credentials in issuance order.
func (sess *Session) Credentials() ([]models.Credential, error) {
	if err := sess.lock(); err != nil {
		return nil, err
	}
	defer sess.unlock()
	return slices.Clone(sess.state.credentials), nil
}

// Credential looks up one credential by ID.
func (sess *Session) Credential(id models.CredentialID) (models.Credential, error) {
	if err := sess.lock(); err != nil {
		return models.Credential{}, err
	}
	defer sess.unlock()
	cred, ok := sess.findLocked(id)
	if !ok {
		return models.Credential{}, dErrors.New(dErrors.CodeNotFound, "credential not found")
	}
	return cred, nil
}

func (sess *Session) findLocked(id models.CredentialID) (models.Credential, bool) {
	for _, cred := range sess.state.credentials {
		if cred.ID == id {
			return cred, true
		}
	}
	return models.Credential{}, false
}

// CreatePocket generates a fresh identity for displayName and starts the
// pocket with no credentials. An existing pocket is replaced.
func (sess *Session) CreatePocket(ctx context.Context, displayName string) (models.Identity, error) {
	if err := sess.lock(); err != nil {
		return models.Identity{}, err
	}
	defer sess.unlock()
	s := sess.svc

	ident, err := s.identities.Create(displayName)
	if err != nil {
		return models.Identity{}, err
	}
	if err := s.store.SaveIdentity(ctx, sess.state.pocketID, ident); err != nil {
		return models.Identity{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save identity")
	}
	if err := s.store.SaveCredentials(ctx, sess.state.pocketID, []models.Credential{}); err != nil {
		return models.Identity{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset credentials")
	}
	sess.state.identity = &ident
	sess.state.credentials = nil

	if s.metrics != nil {
		s.metrics.IncrementPocketsCreated()
	}
	s.emit(ctx, audit.Event{
		Action:   audit.EventPocketCreated,
		PocketID: sess.state.pocketID,
		DID:      ident.DID,
	})
	s.logger.InfoContext(ctx, "pocket created",
		"pocket_id", sess.state.pocketID,
		"did", ident.DID,
	)
	return ident, nil
}

// Logout destroys the identity and every credential of the pocket.
func (sess *Session) Logout(ctx context.Context) error {
	if err := sess.lock(); err != nil {
		return err
	}
	defer sess.unlock()
	s := sess.svc

	if err := s.store.Delete(ctx, sess.state.pocketID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete pocket")
	}
	var did string
	if sess.state.identity != nil {
		did = sess.state.identity.DID
	}
	sess.state.identity = nil
	sess.state.credentials = nil

	if s.metrics != nil {
		s.metrics.IncrementPocketsDeleted()
	}
	s.emit(ctx, audit.Event{
		Action:   audit.EventPocketDeleted,
		PocketID: sess.state.pocketID,
		DID:      did,
	})
	s.logger.InfoContext(ctx, "pocket deleted", "pocket_id", sess.state.pocketID)
	return nil
}

// IssueCredential issues a credential for file and persists it. The
// credential is only added to the pocket once it has been saved.
func (sess *Session) IssueCredential(ctx context.Context, file models.SourceFile) (cred models.Credential, err error) {
	if err := sess.lock(); err != nil {
		return models.Credential{}, err
	}
	defer sess.unlock()
	s := sess.svc

	ctx, span := s.tracer.Start(ctx, "pocket.issue_credential",
		tracer.String("pocket_id", sess.state.pocketID),
	)
	defer func() { span.End(err) }()

	cred, err = s.issuer.Issue(ctx, sess.state.identity, file)
	if err != nil {
		return models.Credential{}, err
	}
	span.SetAttributes(tracer.String("credential_type", string(cred.Type)))

	next := append(slices.Clone(sess.state.credentials), cred)
	if err := s.store.SaveCredentials(ctx, sess.state.pocketID, next); err != nil {
		return models.Credential{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save credentials")
	}
	sess.state.credentials = next

	if s.metrics != nil {
		s.metrics.IncrementCredentialsIssued(string(cred.Type))
	}
	s.emit(ctx, audit.Event{
		Action:         audit.EventCredentialIssued,
		PocketID:       sess.state.pocketID,
		DID:            sess.state.identity.DID,
		CredentialID:   cred.ID.String(),
		CredentialType: string(cred.Type),
		ClaimNames:     cred.Claims.Keys(),
	})
	s.logger.InfoContext(ctx, "credential issued",
		"pocket_id", sess.state.pocketID,
		"credential_id", cred.ID.String(),
		"credential_type", cred.Type,
	)
	return cred, nil
}

// GenerateProof discloses the claims named by keys from one credential.
// It returns a nil proof when the pocket has no identity or holds no
// credential with that ID.
func (sess *Session) GenerateProof(ctx context.Context, credentialID models.CredentialID, keys []string) (p *models.SharedProof, err error) {
	if err := sess.lock(); err != nil {
		return nil, err
	}
	defer sess.unlock()
	s := sess.svc

	ctx, span := s.tracer.Start(ctx, "pocket.generate_proof",
		tracer.String("pocket_id", sess.state.pocketID),
		tracer.Int("requested_claims", len(keys)),
	)
	defer func() { span.End(err) }()

	cred, ok := sess.findLocked(credentialID)
	if !ok {
		span.AddEvent("credential_not_found")
		return nil, nil
	}

	p, err = s.generator.Generate(sess.state.identity, &cred, keys)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate proof")
	}
	if p == nil {
		span.AddEvent("proof_unavailable")
		return nil, nil
	}
	span.SetAttributes(tracer.Int("disclosed_claims", p.Claims.Len()))

	if s.metrics != nil {
		s.metrics.IncrementProofsGenerated(string(cred.Type))
	}
	s.emit(ctx, audit.Event{
		Action:         audit.EventProofGenerated,
		PocketID:       sess.state.pocketID,
		DID:            sess.state.identity.DID,
		CredentialID:   cred.ID.String(),
		CredentialType: string(cred.Type),
		ClaimNames:     p.Claims.Keys(),
	})
	s.logger.InfoContext(ctx, "proof generated",
		"pocket_id", sess.state.pocketID,
		"credential_id", cred.ID.String(),
		"disclosed_claims", p.Claims.Len(),
	)
	return p, nil
}
