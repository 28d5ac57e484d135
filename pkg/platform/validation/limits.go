package validation

import (
	"fmt"

	dErrors "mysafepocket/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize is the maximum allowed JSON request body size (64 KB).
	MaxBodySize = 64 * 1024

	// MaxUploadSize bounds multipart document uploads (10 MB).
	MaxUploadSize = 10 << 20

	// MaxProofDataSize bounds pasted or scanned proof text submitted for verification.
	MaxProofDataSize = 64 * 1024
)

// Slice element count limits
const (
	// MaxSelectedClaims is the maximum number of claim keys a holder may disclose in one proof.
	MaxSelectedClaims = 64
)

// String element length limits
const (
	// MaxDisplayNameLength is the maximum length of an identity display name.
	MaxDisplayNameLength = 128

	// MaxClaimKeyLength is the maximum length of a selected claim key.
	MaxClaimKeyLength = 256

	// MaxFileNameLength is the maximum length of an uploaded document name.
	MaxFileNameLength = 255

	// MaxPocketIDLength is the maximum length of a pocket identifier in a URL.
	MaxPocketIDLength = 64
)

// CheckSliceCount validates that a slice does not exceed the maximum count.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckEachStringLength validates that each string in a slice does not exceed the maximum length.
func CheckEachStringLength(fieldName string, values []string, max int) error {
	for _, v := range values {
		if len(v) > max {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
		}
	}
	return nil
}
