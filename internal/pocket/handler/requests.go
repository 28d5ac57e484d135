package handler

import (
	"mysafepocket/internal/pocket/models"
	dErrors "mysafepocket/pkg/domain-errors"
	pkgstrings "mysafepocket/pkg/platform/strings"
	"mysafepocket/pkg/platform/validation"
	s "mysafepocket/pkg/string"
	pkgvalidation "mysafepocket/pkg/validation"
)

// pocketRef is the pocket identifier taken from the URL.
type pocketRef struct {
	PocketID string `validate:"required,max=64,pocketid"`
}

// CreatePocketRequest names the holder of a new pocket.
type CreatePocketRequest struct {
	DisplayName string `json:"display_name" validate:"required,notblank,max=128"`
}

// Normalize trims the display name.
func (r *CreatePocketRequest) Normalize() {
	if r == nil {
		return
	}
	s.TrimStrings(&r.DisplayName)
}

// Validate checks that the request is well-formed.
func (r *CreatePocketRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return pkgvalidation.Validate(r)
}

// IssueCredentialRequest describes a document by metadata only.
type IssueCredentialRequest struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
	Size *int64 `json:"size" validate:"required,min=0"`
	Type string `json:"type" validate:"max=255"`
}

// Normalize trims the document name and media type.
func (r *IssueCredentialRequest) Normalize() {
	if r == nil {
		return
	}
	s.TrimStrings(&r.Name, &r.Type)
}

// Validate checks that the request is well-formed.
func (r *IssueCredentialRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return pkgvalidation.Validate(r)
}

// ToSourceFile converts a validated request into the issuer input.
func (r *IssueCredentialRequest) ToSourceFile() models.SourceFile {
	return models.SourceFile{Name: r.Name, Size: *r.Size, Type: r.Type}
}

// GenerateProofRequest lists the claim names to disclose, in disclosure order.
type GenerateProofRequest struct {
	Claims []string `json:"claims"`

	// submitted is the selection size before normalisation.
	submitted int
}

// Normalize trims claim names and drops blanks and repeats, keeping the
// order of first selection.
func (r *GenerateProofRequest) Normalize() {
	if r == nil {
		return
	}
	r.submitted = len(r.Claims)
	r.Claims = pkgstrings.DedupeAndTrim(r.Claims)
}

// Validate enforces the selection size limits. An empty selection is allowed.
func (r *GenerateProofRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.CheckSliceCount("claims", max(r.submitted, len(r.Claims)), validation.MaxSelectedClaims); err != nil {
		return err
	}
	return validation.CheckEachStringLength("claim", r.Claims, validation.MaxClaimKeyLength)
}
