// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"context"
	"testing"
	"time"

	"github.com/mia-platform/hooklog/internal/source"
)

// FakeEventSource combines event streaming and closing behaviour.
type FakeEventSource interface {
	source.EventSource
	source.ClosableSource
}

var _ source.EventSource = &unclosableEventSource{}

// unclosableEventSource simulates an EventSource without close support.
type unclosableEventSource struct {
	tb testing.TB

	eventsData     []source.Data
	streamFinished chan<- struct{}
	stopChannel    chan struct{}
}

var _ FakeEventSource = &fakeEventSource{}

// fakeEventSource wraps an unclosableEventSource with a Close implementation.
type fakeEventSource struct {
	*unclosableEventSource
}

// NewFakeEventSource returns a closable fake event source.
func NewFakeEventSource(tb testing.TB, eventsData []source.Data, streamFinished chan<- struct{}) FakeEventSource {
	tb.Helper()

	return &fakeEventSource{
		unclosableEventSource: &unclosableEventSource{
			tb:             tb,
			eventsData:     eventsData,
			streamFinished: streamFinished,
			stopChannel:    make(chan struct{}, 1),
		},
	}
}

// NewFakeUnclosableEventSource returns an EventSource without close capabilities.
func NewFakeUnclosableEventSource(tb testing.TB, eventsData []source.Data, streamFinished chan<- struct{}) source.EventSource {
	tb.Helper()

	return &unclosableEventSource{
		tb:             tb,
		eventsData:     eventsData,
		streamFinished: streamFinished,
	}
}

// StartEventStream pushes the configured records and blocks until Close is invoked or the context ends.
// A nil streamFinished channel skips the signal.
func (f *unclosableEventSource) StartEventStream(ctx context.Context, results chan<- source.Data) error {
	f.tb.Helper()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	for _, data := range f.eventsData {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case results <- data:
		}
	}

	if f.streamFinished != nil {
		f.streamFinished <- struct{}{}
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-f.stopChannel:
		return nil
	}
}

// Close signals the stream to exit.
func (f *fakeEventSource) Close(_ context.Context, _ time.Duration) error {
	f.tb.Helper()
	close(f.stopChannel)
	return nil
}

var _ source.EventSource = &errorEventSource{}

// errorEventSource returns a configured error for every call.
type errorEventSource struct {
	tb  testing.TB
	err error
}

// NewFakeEventSourceWithError builds a source that always returns err.
func NewFakeEventSourceWithError(tb testing.TB, err error) source.EventSource {
	tb.Helper()

	return &errorEventSource{
		tb:  tb,
		err: err,
	}
}

// StartEventStream satisfies the EventSource interface returning the configured error.
func (f *errorEventSource) StartEventStream(_ context.Context, _ chan<- source.Data) error {
	f.tb.Helper()
	return f.err
}
