package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "mysafepocket/pkg/domain-errors"
)

type sampleRequest struct {
	DisplayName string `json:"display_name" validate:"required,notblank,max=8"`
	PocketID    string `validate:"required,pocketid"`
	Size        *int64 `validate:"required,min=0"`
}

func int64Ptr(v int64) *int64 { return &v }

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     sampleRequest
		wantMsg string
	}{
		{"valid", sampleRequest{DisplayName: "Alice", PocketID: "alice-1", Size: int64Ptr(0)}, ""},
		{"missing display name", sampleRequest{PocketID: "a", Size: int64Ptr(1)}, "display_name is required"},
		{"blank display name", sampleRequest{DisplayName: "   ", PocketID: "a", Size: int64Ptr(1)}, "display_name must not be blank"},
		{"too long display name", sampleRequest{DisplayName: "Alexandria", PocketID: "a", Size: int64Ptr(1)}, "display_name must be at most 8"},
		{"pocket id with separator", sampleRequest{DisplayName: "Alice", PocketID: "a:b", Size: int64Ptr(1)}, "pocket_id may only contain letters, digits, '-' and '_'"},
		{"missing size", sampleRequest{DisplayName: "Alice", PocketID: "a"}, "size is required"},
		{"negative size", sampleRequest{DisplayName: "Alice", PocketID: "a", Size: int64Ptr(-1)}, "size must be at least 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.req)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestErrorMessageFallback(t *testing.T) {
	assert.Equal(t, "invalid request body", ErrorMessage(assert.AnError))
}
