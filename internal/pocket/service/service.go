package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"mysafepocket/internal/audit"
	"mysafepocket/internal/platform/metrics"
	"mysafepocket/internal/platform/middleware"
	"mysafepocket/internal/platform/tracer"
	"mysafepocket/internal/pocket/catalog"
	"mysafepocket/internal/pocket/identity"
	"mysafepocket/internal/pocket/issuer"
	"mysafepocket/internal/pocket/models"
	"mysafepocket/internal/pocket/proof"
	"mysafepocket/internal/pocket/store"
	dErrors "mysafepocket/pkg/domain-errors"
	pkgsync "mysafepocket/pkg/platform/sync"
)

// Store defines the persistence interface for pocket records.
// Error Contract:
// - LoadIdentity returns store.ErrNotFound when the pocket has no identity
// - LoadCredentials returns an empty slice when nothing was saved
// - Other methods return nil on success or wrapped errors on failure
type Store interface {
	LoadIdentity(ctx context.Context, pocketID string) (models.Identity, error)
	SaveIdentity(ctx context.Context, pocketID string, identity models.Identity) error
	LoadCredentials(ctx context.Context, pocketID string) ([]models.Credential, error)
	SaveCredentials(ctx context.Context, pocketID string, creds []models.Credential) error
	Delete(ctx context.Context, pocketID string) error
}

// ErrSessionClosed is returned by operations on a session after Close.
var ErrSessionClosed = dErrors.New(dErrors.CodeBadRequest, "session is closed")

type Option func(*Service)

// Service runs the pocket lifecycle: create, logout, issue, prove and verify.
// Sessions opened for the same pocket share state, so mutations on one
// pocket are serialised even when requests arrive concurrently.
type Service struct {
	store      Store
	identities *identity.Manager
	issuer     *issuer.Issuer
	generator  *proof.Generator
	verifier   *proof.Verifier
	auditor    *audit.Publisher
	metrics    *metrics.Metrics
	tracer     tracer.Tracer
	logger     *slog.Logger

	opening *pkgsync.ShardedMutex
	mu      sync.Mutex
	pockets map[string]*pocketState
}

func NewService(store Store, opts ...Option) *Service {
	svc := &Service{
		store:      store,
		identities: identity.NewManager(),
		generator:  proof.NewGenerator(),
		verifier:   proof.NewVerifier(),
		tracer:     tracer.NewNoop(),
		logger:     slog.Default(),
		opening:    pkgsync.NewShardedMutex(),
		pockets:    make(map[string]*pocketState),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.issuer == nil {
		svc.issuer = issuer.New(catalog.Default())
	}
	return svc
}

// WithLogger sets the logger instance for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAuditor records lifecycle events through the publisher.
func WithAuditor(auditor *audit.Publisher) Option {
	return func(s *Service) {
		s.auditor = auditor
	}
}

// WithMetrics sets the metrics instance for the service
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func WithIdentityManager(m *identity.Manager) Option {
	return func(s *Service) {
		s.identities = m
	}
}

func WithIssuer(i *issuer.Issuer) Option {
	return func(s *Service) {
		s.issuer = i
	}
}

// pocketState is the in-memory view of one pocket, shared by every open
// session on it.
type pocketState struct {
	mu          sync.Mutex
	pocketID    string
	identity    *models.Identity
	credentials []models.Credential
	refs        int
}

// Open loads a pocket and returns a session for it. A pocket already open
// in this process is not reloaded.
func (s *Service) Open(ctx context.Context, pocketID string) (*Session, error) {
	if pocketID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "pocket id is required")
	}

	// concurrent opens of one pocket load it once
	s.opening.Lock(pocketID)
	defer s.opening.Unlock(pocketID)

	if sess := s.attach(pocketID); sess != nil {
		return sess, nil
	}

	st, err := s.load(ctx, pocketID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st.refs = 1
	s.pockets[pocketID] = st
	if s.metrics != nil {
		s.metrics.IncrementOpenSessions()
	}
	return &Session{svc: s, state: st}, nil
}

// attach returns a new session on an already loaded pocket, or nil.
func (s *Service) attach(pocketID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.pockets[pocketID]
	if !ok {
		return nil
	}
	st.refs++
	return &Session{svc: s, state: st}
}

func (s *Service) load(ctx context.Context, pocketID string) (*pocketState, error) {
	st := &pocketState{pocketID: pocketID}

	ident, err := s.store.LoadIdentity(ctx, pocketID)
	switch {
	case err == nil:
		st.identity = &ident
	case errors.Is(err, store.ErrNotFound):
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pocket identity")
	}

	creds, err := s.store.LoadCredentials(ctx, pocketID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credentials")
	}
	st.credentials = creds

	if st.identity != nil {
		for _, cred := range creds {
			if !issuer.VerifyIntegrity(*st.identity, cred) {
				s.logger.WarnContext(ctx, "stored credential fails integrity check",
					"pocket_id", pocketID,
					"credential_id", cred.ID.String(),
				)
			}
		}
	}
	return st, nil
}

// Close releases the session. The pocket state is dropped from memory once
// its last session closes, after any operation in flight on it finishes.
// Closing twice is a no-op.
func (s *Service) Close(_ context.Context, sess *Session) error {
	if sess == nil || !sess.markClosed() {
		return nil
	}
	// lock order: pocket state before service map
	sess.state.mu.Lock()
	defer sess.state.mu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.state.refs--
	if sess.state.refs <= 0 {
		if s.pockets[sess.state.pocketID] == sess.state {
			delete(s.pockets, sess.state.pocketID)
		}
		if s.metrics != nil {
			s.metrics.DecrementOpenSessions()
		}
	}
	return nil
}

// VerifyProof checks pasted or scanned proof data. Every result, including
// malformed input, is returned as an outcome rather than an error.
func (s *Service) VerifyProof(ctx context.Context, data string) proof.Outcome {
	_, span := s.tracer.Start(ctx, "pocket.verify_proof")
	outcome := proof.Check(s.verifier, data)
	span.SetAttributes(tracer.String("status", string(outcome.Status)))
	span.End(nil)

	if s.metrics != nil {
		s.metrics.IncrementProofsVerified(string(outcome.Status))
	}
	event := audit.Event{Action: audit.EventProofVerified, Status: string(outcome.Status)}
	if outcome.Proof != nil {
		event.CredentialType = outcome.Proof.Type
		event.ClaimNames = outcome.Proof.Claims.Keys()
	}
	s.emit(ctx, event)

	s.logger.InfoContext(ctx, "proof verified",
		"status", outcome.Status,
		"request_id", middleware.GetRequestID(ctx),
	)
	return outcome
}

// Catalog lists the document templates credentials are issued from.
func (s *Service) Catalog() []models.DocumentTemplate {
	return s.issuer.Catalog().Templates()
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.RequestID = middleware.GetRequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", event.Action,
			"pocket_id", event.PocketID,
		)
	}
}
