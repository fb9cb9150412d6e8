// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRouteRegistersHandler(t *testing.T) {
	t.Parallel()

	server := NewFakeServer(t)

	handled := false
	server.AddRoute(http.MethodPost, "/logs", func(_ context.Context, _ http.Header, body []byte) error {
		handled = true
		assert.Equal(t, "payload", string(body))
		return nil
	})

	routes := server.RegisteredRoutes()
	require.Len(t, routes, 1)
	assert.Equal(t, http.MethodPost, routes[0].Method)
	assert.Equal(t, "/logs", routes[0].Path)

	require.NoError(t, server.Call(t.Context(), http.MethodPost, "/logs", []byte("payload")))
	assert.True(t, handled)
	assert.Error(t, server.Call(t.Context(), http.MethodGet, "/logs", nil))
}

func TestStartAndStop(t *testing.T) {
	t.Parallel()

	server := NewFakeServer(t)

	startDone := make(chan error, 1)
	go func() {
		startDone <- server.Start()
	}()

	<-server.StartedServer()
	require.NoError(t, server.Stop())
	require.NoError(t, server.Stop(), "stop can be called more than once")
	<-server.StoppedServer()
	assert.NoError(t, <-startDone)
}

func TestStartAsync(t *testing.T) {
	t.Parallel()

	server := NewFakeServer(t)
	server.StartAsync(t.Context())

	<-server.StartedServer()
	require.NoError(t, server.Stop())
}
