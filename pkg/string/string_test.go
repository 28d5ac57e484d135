package string

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"DisplayName":  "display_name",
		"PocketID":     "pocket_id",
		"CredentialID": "credential_id",
		"size":         "size",
		"IPFSHash":     "ipfs_hash",
	}
	for in, want := range tests {
		assert.Equal(t, want, ToSnakeCase(in), in)
	}
}

func TestTrimHelpers(t *testing.T) {
	a, b := "  Alice ", "\tid.png\n"
	TrimStrings(&a, &b)
	assert.Equal(t, "Alice", a)
	assert.Equal(t, "id.png", b)
}
