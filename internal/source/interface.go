// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package source

import (
	"context"
	"time"
)

// EventSource defines the interface for a source that produces log records as they happen.
type EventSource interface {
	// StartEventStream will be called to start reading records from the source.
	// Every record is sent through results; the call blocks until the stream ends, the context
	// is cancelled or the source is closed.
	StartEventStream(ctx context.Context, results chan<- Data) (err error)
}

// ClosableSource defines the interface for a source that can be gracefully closed. It receives
// a context and a timeout duration to ensure the close operation does not hang indefinitely.
type ClosableSource interface {
	// Close will be called to gracefully shut down the source, releasing any resources it holds.
	Close(ctx context.Context, timeout time.Duration) (err error)
}
