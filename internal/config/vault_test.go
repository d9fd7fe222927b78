package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVaultClientDisabled(t *testing.T) {
	client, err := NewVaultClient(VaultConfig{Enabled: false}, nil)

	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestResolveVaultToken(t *testing.T) {
	t.Run("token from config", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "hvs.test"}, nil)

		require.NoError(t, err)
		assert.Equal(t, "hvs.test", token)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{}, nil)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "vault token is required")
	})

	t.Run("missing token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token"}, nil)

		assert.Error(t, err)
	})
}

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		raw         any
		expected    int64
		expectError bool
	}{
		{"int64", int64(3), 3, false},
		{"float64", float64(7), 7, false},
		{"string", "12", 12, false},
		{"bad string", "abc", 0, true},
		{"unexpected type", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, err := parseVersionValue(tt.raw, "secret/data/test")

			if tt.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, version)
			}
		})
	}
}

func TestGetSecretV2NilClient(t *testing.T) {
	var vc *VaultClient

	_, err := vc.GetSecretV2("secret/data/test")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "vault client not initialized")
}
