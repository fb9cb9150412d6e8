// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/hooklog/internal/logger"
	"github.com/mia-platform/hooklog/internal/source"
)

func newTestSource(t *testing.T, path string, fromStart bool) *Source {
	t.Helper()

	return &Source{
		path:   path,
		config: config{FromStart: fromStart, Poll: true},
		stop:   make(chan struct{}),
	}
}

func receive(t *testing.T, results <-chan source.Data) source.Data {
	t.Helper()

	select {
	case data := <-results:
		return data
	case <-time.After(5 * time.Second):
		require.FailNow(t, "no record received from the file source")
		return source.Data{}
	}
}

func TestNewSource(t *testing.T) {
	t.Setenv("HOOKLOG_FILE_FROM_START", "true")

	src, err := NewSource("/var/log/../log/app.log")
	require.NoError(t, err)
	assert.Equal(t, "/var/log/app.log", src.path)
	assert.True(t, src.config.FromStart)
	assert.False(t, src.config.Poll)
}

func TestNewSourceErrors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		src, err := NewSource(" ")
		assert.ErrorIs(t, err, ErrMissingPath)
		assert.ErrorIs(t, err, ErrFileSource)
		assert.Nil(t, src)
	})

	t.Run("invalid environment", func(t *testing.T) {
		t.Setenv("HOOKLOG_FILE_POLL", "sometimes")

		src, err := NewSource("app.log")
		assert.ErrorIs(t, err, ErrFileSource)
		assert.Nil(t, src)
	})
}

func TestStreamFromStart(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app.log")
	content := "service started\n" +
		`{"@level":"error","@message":"upstream unavailable","service":"billing"}` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	src := newTestSource(t, path, true)
	results := make(chan source.Data)
	streamDone := make(chan error, 1)
	go func() {
		streamDone <- src.StartEventStream(t.Context(), results)
	}()

	first := receive(t, results)
	assert.Equal(t, logger.INFO, first.Level)
	assert.Equal(t, "service started", first.Message)

	second := receive(t, results)
	assert.Equal(t, logger.ERROR, second.Level)
	assert.Equal(t, "upstream unavailable", second.Message)
	assert.Equal(t, map[string]any{"service": "billing"}, second.Fields)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = file.WriteString("WARN disk usage at 91%\n")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	third := receive(t, results)
	assert.Equal(t, logger.WARN, third.Level)
	assert.Equal(t, "WARN disk usage at 91%", third.Message)

	require.NoError(t, src.Close(t.Context(), 5*time.Second))
	assert.NoError(t, <-streamDone)
}

func TestStreamStopsWithContext(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	ctx, cancel := context.WithCancel(t.Context())
	src := newTestSource(t, path, false)
	streamDone := make(chan error, 1)
	go func() {
		streamDone <- src.StartEventStream(ctx, make(chan source.Data))
	}()

	cancel()
	select {
	case err := <-streamDone:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "stream did not stop after context cancellation")
	}
}

func TestCloseBeforeStart(t *testing.T) {
	t.Parallel()

	src := newTestSource(t, filepath.Join(t.TempDir(), "app.log"), false)
	require.NoError(t, src.Close(t.Context(), time.Second))
	require.NoError(t, src.Close(t.Context(), time.Second), "close can be called more than once")

	assert.NoError(t, src.StartEventStream(t.Context(), make(chan source.Data)), "a closed source returns as soon as it starts")
}
