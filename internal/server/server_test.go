// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/hooklog/internal/info"
)

func newTestServer(t *testing.T, stats StatsFunc) *impServer {
	t.Helper()

	srv, err := NewServer(t.Context(), stats)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = srv.Stop()
	})
	return srv.(*impServer)
}

func TestStatusRoutes(t *testing.T) {
	t.Setenv("HTTP_PORT", "3000")

	srv := newTestServer(t, func() any {
		return map[string]int{"delivered": 3}
	})

	testCases := map[string]struct {
		path         string
		expectedBody string
	}{
		"health": {
			path:         "/-/healthz",
			expectedBody: `{"status":"OK","name":"hooklog","version":"` + info.Version + `"}`,
		},
		"readiness": {
			path:         "/-/ready",
			expectedBody: `{"status":"OK","name":"hooklog","version":"` + info.Version + `"}`,
		},
		"stats": {
			path:         "/-/stats",
			expectedBody: `{"delivered":3}`,
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, test.path, nil)
			response, err := srv.app.Test(request)
			require.NoError(t, err)
			defer response.Body.Close()

			require.Equal(t, http.StatusOK, response.StatusCode)
			body, err := io.ReadAll(response.Body)
			require.NoError(t, err)
			assert.JSONEq(t, test.expectedBody, string(body))
		})
	}
}

func TestStatsWithoutProvider(t *testing.T) {
	srv := newTestServer(t, nil)

	request := httptest.NewRequest(http.MethodGet, "/-/stats", nil)
	response, err := srv.app.Test(request)
	require.NoError(t, err)
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(body))
}

func TestAddRoute(t *testing.T) {
	testCases := map[string]struct {
		handlerErr      error
		expectedStatus  int
		expectedMessage string
	}{
		"handler succeeds": {
			expectedStatus: http.StatusNoContent,
		},
		"invalid request": {
			handlerErr:      errors.Join(ErrInvalidRequest, errors.New("missing message")),
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "invalid request\nmissing message",
		},
		"handler failure": {
			handlerErr:      assert.AnError,
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "error processing request",
		},
	}

	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			srv := newTestServer(t, nil)

			var received []byte
			srv.AddRoute(http.MethodPost, "/test", func(_ context.Context, headers http.Header, body []byte) error {
				assert.Equal(t, "value", headers.Get("X-Test"))
				received = body
				return test.handlerErr
			})

			request := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("test body"))
			request.Header.Set("X-Test", "value")
			response, err := srv.app.Test(request)
			require.NoError(t, err)
			defer response.Body.Close()

			assert.Equal(t, test.expectedStatus, response.StatusCode)
			assert.Equal(t, "test body", string(received))
			if test.expectedMessage == "" {
				return
			}

			payload := make(map[string]any)
			require.NoError(t, json.NewDecoder(response.Body).Decode(&payload))
			assert.Equal(t, test.expectedMessage, payload["message"])
			assert.InDelta(t, test.expectedStatus, payload["statusCode"], 0)
		})
	}
}

func TestStartServer(t *testing.T) {
	t.Setenv("HTTP_HOST", "127.0.0.1")
	t.Setenv("HTTP_PORT", "3041")

	srv := newTestServer(t, nil)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	require.Eventually(t, func() bool {
		response, err := http.Get("http://127.0.0.1:3041/-/healthz")
		if err != nil {
			return false
		}
		defer response.Body.Close()
		return response.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, srv.Stop())
	assert.NoError(t, <-errChan)
}
