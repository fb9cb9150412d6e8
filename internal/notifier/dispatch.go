// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package notifier

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mia-platform/hooklog/internal/destination"
)

// dispatch sends every chunk concurrently and returns the delay the queue must wait before the
// next job. It never fails: every outcome maps to a delay and, at most, a tagged local warning.
func (n *Notifier) dispatch(ctx context.Context, chunks []destination.Chunk) time.Duration {
	if !n.enabled.Load() {
		return 0
	}

	group := new(errgroup.Group)
	for _, chunk := range chunks {
		group.Go(func() error {
			if !n.enabled.Load() {
				return nil
			}
			return n.sender.Send(ctx, n.message(chunk))
		})
	}

	err := group.Wait()
	if err == nil {
		n.delivered.Add(1)
		return n.queue.MinSpacing()
	}

	switch destination.KindOf(err) {
	case destination.KindNoResponse:
		n.noResponse.Add(1)
		n.host.Warn("could not send webhook: no response", "error", err.Error(), n.marker)
	case destination.KindInvalidEndpoint:
		n.invalid.Add(1)
		n.disable(err)
	default:
		n.remote.Add(1)
		if n.enabled.Load() {
			n.host.Warn("could not send webhook", "error", err.Error(), n.marker)
		}
	}

	return 0
}

// disable permanently stops the notifier, only the first call logs.
func (n *Notifier) disable(err error) {
	if !n.enabled.CompareAndSwap(true, false) {
		return
	}

	n.state.Store(int32(StateDisabled))
	n.batcher.Stop()
	n.host.Warn("invalid webhook endpoint, disabling the webhook notifier", "error", err.Error(), n.marker)
}
