// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/hooklog/internal/logger"
	"github.com/mia-platform/hooklog/internal/server"
	fakeserver "github.com/mia-platform/hooklog/internal/server/fake"
	"github.com/mia-platform/hooklog/internal/source"
)

func TestIngestSource(t *testing.T) {
	t.Parallel()

	srv := fakeserver.NewFakeServer(t)
	ingest := server.NewIngestSource(srv)

	results := make(chan source.Data, 2)
	streamDone := make(chan error, 1)
	go func() {
		streamDone <- ingest.StartEventStream(t.Context(), results)
	}()

	<-srv.StartedServer()
	require.Len(t, srv.RegisteredRoutes(), 1)

	body := []byte(`[{"level":"error","message":"disk failure","fields":{"disk":"sda"}},{"message":"recovered"}]`)
	require.NoError(t, srv.Call(t.Context(), http.MethodPost, server.IngestPath, body))

	assert.Equal(t, source.Data{Level: logger.ERROR, Message: "disk failure", Fields: map[string]any{"disk": "sda"}}, <-results)
	assert.Equal(t, source.Data{Level: logger.INFO, Message: "recovered"}, <-results)

	require.NoError(t, ingest.Close(t.Context(), time.Second))
	require.NoError(t, ingest.Close(t.Context(), time.Second))
	assert.NoError(t, <-streamDone)
	<-srv.StoppedServer()
}

func TestIngestSourceStopsWithContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	srv := fakeserver.NewFakeServer(t)
	ingest := server.NewIngestSource(srv)

	streamDone := make(chan error, 1)
	go func() {
		streamDone <- ingest.StartEventStream(ctx, make(chan source.Data))
	}()

	<-srv.StartedServer()
	cancel()

	assert.ErrorIs(t, <-streamDone, context.Canceled)
	<-srv.StoppedServer()
}
