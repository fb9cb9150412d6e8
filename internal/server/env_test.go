// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvironmentVariables(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		envVars, err := loadServerConfig()
		require.NoError(t, err)
		assert.Equal(t, &config{HTTPHost: "0.0.0.0", HTTPPort: 3000, DisableStartupMessage: true}, envVars)
	})

	t.Run("custom values", func(t *testing.T) {
		t.Setenv("HTTP_HOST", "127.0.0.1")
		t.Setenv("HTTP_PORT", "8080")
		t.Setenv("DISABLE_STARTUP_MESSAGE", "false")

		envVars, err := loadServerConfig()
		require.NoError(t, err)
		assert.Equal(t, &config{HTTPHost: "127.0.0.1", HTTPPort: 8080}, envVars)
	})

	t.Run("port out of range", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "655350")
		_, err := loadServerConfig()
		require.ErrorIs(t, err, ErrEnvVariablesNotValid)
	})

	t.Run("port not a number", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "http")
		_, err := loadServerConfig()
		require.ErrorIs(t, err, ErrEnvVariablesNotValid)
	})
}

func TestValidateEnvironmentVariables(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		envVars     *config
		expectedErr string
	}{
		"negative port": {
			envVars:     &config{HTTPHost: "localhost", HTTPPort: -1},
			expectedErr: "environment variables not valid: HTTP_PORT is out of valid range (1-65535)",
		},
		"empty host": {
			envVars:     &config{HTTPHost: " ", HTTPPort: 3000},
			expectedErr: "environment variables not valid: HTTP_HOST must not be empty",
		},
		"every error is reported": {
			envVars:     &config{HTTPPort: 0},
			expectedErr: "environment variables not valid: HTTP_PORT is out of valid range (1-65535), HTTP_HOST must not be empty",
		},
		"valid values": {
			envVars: &config{HTTPHost: "localhost", HTTPPort: 3000},
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := validateEnvironmentVariables(test.envVars)
			if test.expectedErr != "" {
				assert.EqualError(t, err, test.expectedErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
