package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"mysafepocket/internal/platform/middleware"
	"mysafepocket/internal/pocket/issuer"
	"mysafepocket/internal/pocket/models"
	"mysafepocket/internal/pocket/proof"
	"mysafepocket/internal/pocket/service"
	dErrors "mysafepocket/pkg/domain-errors"
	"mysafepocket/pkg/platform/httputil"
	"mysafepocket/pkg/platform/validation"
	pkgvalidation "mysafepocket/pkg/validation"
)

// Service defines the pocket operations the HTTP surface needs.
type Service interface {
	Open(ctx context.Context, pocketID string) (*service.Session, error)
	Close(ctx context.Context, sess *service.Session) error
	VerifyProof(ctx context.Context, data string) proof.Outcome
	Catalog() []models.DocumentTemplate
}

// ErrProofUnavailable is returned when the pocket has no identity or no
// credential with the requested ID.
var ErrProofUnavailable = dErrors.New(dErrors.CodeProofUnavailable, "Proof generation is not available for this credential.")

const uploadFormField = "file"

// Handler handles pocket endpoints.
type Handler struct {
	logger  *slog.Logger
	pockets Service
}

// New creates a new pocket Handler.
func New(pockets Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		pockets: pockets,
	}
}

// Register registers the pocket routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	jsonBody := chi.Chain(middleware.BodyLimit(validation.MaxBodySize), middleware.ContentTypeJSON)

	r.Get("/catalog", h.handleCatalog)
	r.With(middleware.BodyLimit(validation.MaxProofDataSize)).Post("/proofs/verify", h.handleVerifyProof)

	r.Route("/pockets/{pocketID}", func(r chi.Router) {
		r.With(jsonBody...).Post("/", h.handleCreatePocket)
		r.Get("/", h.handleGetPocket)
		r.Delete("/", h.handleLogout)
		r.With(
			middleware.BodyLimit(validation.MaxUploadSize),
			middleware.ContentType("application/json", "multipart/form-data"),
		).Post("/credentials", h.handleIssueCredential)
		r.Get("/credentials", h.handleListCredentials)
		r.With(jsonBody...).Post("/credentials/{credentialID}/proofs", h.handleGenerateProof)
	})
}

// withSession opens the pocket named in the URL for the duration of fn.
func (h *Handler) withSession(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, sess *service.Session)) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	ref := pocketRef{PocketID: chi.URLParam(r, "pocketID")}
	if err := pkgvalidation.Validate(&ref); err != nil {
		h.logger.WarnContext(ctx, "invalid pocket id",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	sess, err := h.pockets.Open(ctx, ref.PocketID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to open pocket",
			"request_id", requestID,
			"pocket_id", ref.PocketID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	defer func() {
		if err := h.pockets.Close(ctx, sess); err != nil {
			h.logger.WarnContext(ctx, "failed to close pocket session",
				"request_id", requestID,
				"pocket_id", ref.PocketID,
				"error", err,
			)
		}
	}()
	fn(ctx, sess)
}

func (h *Handler) handleCreatePocket(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctx context.Context, sess *service.Session) {
		requestID := middleware.GetRequestID(ctx)
		req, ok := httputil.DecodeAndPrepare[CreatePocketRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}

		identity, err := sess.CreatePocket(ctx, req.DisplayName)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to create pocket",
				"request_id", requestID,
				"pocket_id", sess.PocketID(),
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, toPocketResponse(identity))
	})
}

func (h *Handler) handleGetPocket(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctx context.Context, sess *service.Session) {
		identity, err := sess.Identity()
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		if identity == nil {
			httputil.WriteError(w, issuer.ErrNoIdentity)
			return
		}
		creds, err := sess.Credentials()
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		res := toPocketResponse(*identity)
		count := len(creds)
		res.CredentialCount = &count
		httputil.WriteJSON(w, http.StatusOK, res)
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctx context.Context, sess *service.Session) {
		if err := sess.Logout(ctx); err != nil {
			h.logger.ErrorContext(ctx, "failed to delete pocket",
				"request_id", middleware.GetRequestID(ctx),
				"pocket_id", sess.PocketID(),
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func (h *Handler) handleIssueCredential(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctx context.Context, sess *service.Session) {
		requestID := middleware.GetRequestID(ctx)

		var file models.SourceFile
		if isMultipart(r) {
			f, err := h.readUpload(r)
			if err != nil {
				h.logger.WarnContext(ctx, "invalid document upload",
					"request_id", requestID,
					"error", err,
				)
				httputil.WriteError(w, err)
				return
			}
			file = f
		} else {
			req, ok := httputil.DecodeAndPrepare[IssueCredentialRequest](w, r, h.logger, ctx, requestID)
			if !ok {
				return
			}
			file = req.ToSourceFile()
		}

		cred, err := sess.IssueCredential(ctx, file)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to issue credential",
				"request_id", requestID,
				"pocket_id", sess.PocketID(),
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, cred)
	})
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// readUpload extracts the document metadata from a multipart upload.
// The document content itself is discarded.
func (h *Handler) readUpload(r *http.Request) (models.SourceFile, error) {
	if err := r.ParseMultipartForm(validation.MaxUploadSize); err != nil {
		return models.SourceFile{}, dErrors.New(dErrors.CodeBadRequest, "invalid multipart upload")
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	f, header, err := r.FormFile(uploadFormField)
	if err != nil {
		return models.SourceFile{}, dErrors.New(dErrors.CodeValidation, "file is required")
	}
	_ = f.Close()

	name := strings.TrimSpace(header.Filename)
	if name == "" {
		return models.SourceFile{}, dErrors.New(dErrors.CodeValidation, "file name is required")
	}
	if err := validation.CheckStringLength("file name", name, validation.MaxFileNameLength); err != nil {
		return models.SourceFile{}, err
	}
	return models.SourceFile{
		Name: name,
		Size: header.Size,
		Type: header.Header.Get("Content-Type"),
	}, nil
}

func (h *Handler) handleListCredentials(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctx context.Context, sess *service.Session) {
		creds, err := sess.Credentials()
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		if creds == nil {
			creds = []models.Credential{}
		}
		httputil.WriteJSON(w, http.StatusOK, CredentialsResponse{Credentials: creds})
	})
}

func (h *Handler) handleGenerateProof(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(ctx context.Context, sess *service.Session) {
		requestID := middleware.GetRequestID(ctx)

		credentialID, err := models.ParseCredentialID(chi.URLParam(r, "credentialID"))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		req, ok := httputil.DecodeAndPrepare[GenerateProofRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}

		p, err := sess.GenerateProof(ctx, credentialID, req.Claims)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to generate proof",
				"request_id", requestID,
				"pocket_id", sess.PocketID(),
				"credential_id", credentialID.String(),
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}
		if p == nil {
			httputil.WriteError(w, ErrProofUnavailable)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, p)
	})
}

// handleVerifyProof accepts the raw pasted or scanned proof text. Every
// verification result is a 200; only unreadable bodies are request errors.
func (h *Handler) handleVerifyProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "proof data is too large"))
			return
		}
		h.logger.WarnContext(ctx, "failed to read proof data",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	outcome := h.pockets.VerifyProof(ctx, string(body))
	httputil.WriteJSON(w, http.StatusOK, toVerifyResponse(outcome))
}

func (h *Handler) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, CatalogResponse{Templates: h.pockets.Catalog()})
}
