// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package notifier

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mia-platform/hooklog/internal/batch"
	"github.com/mia-platform/hooklog/internal/destination"
	"github.com/mia-platform/hooklog/internal/logger"
	"github.com/mia-platform/hooklog/internal/queue"
)

const (
	pluginName = "webhook"
	loggerName = "hooklog:notifier"

	// doNotDeliverToken marks the log calls of the notifier itself.
	doNotDeliverToken = "do-not-deliver"
)

var (
	errAlreadyApplied = errors.New("webhook notifier already attached to a logger")

	prefixDelimiters = []string{"{}", "[]", "()", "<>", "||"}
)

// State is the lifecycle state of a Notifier.
type State int32

const (
	StateUninitialized State = iota
	StateConfiguring
	StateActive
	StateDisabled
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConfiguring:
		return "configuring"
	case StateActive:
		return "active"
	case StateDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Metrics is a snapshot of the notifier activity.
type Metrics struct {
	State      string `json:"state"`
	Pending    int    `json:"pending"`
	Recorded   uint64 `json:"recorded"`
	Filtered   uint64 `json:"filtered"`
	Jobs       uint64 `json:"jobs"`
	Delivered  uint64 `json:"delivered"`
	Failed     uint64 `json:"failed"`
	NoResponse uint64 `json:"noResponse"`
	Invalid    uint64 `json:"invalidEndpoint"`
	Remote     uint64 `json:"remote"`
}

var _ logger.Plugin = &Notifier{}

// Notifier forwards the observed warn and error log calls to a destination.
type Notifier struct {
	opts   Options
	sender destination.Sender
	queue  *queue.Queue
	intn   func(n int) int

	state   atomic.Int32
	enabled atomic.Bool

	host    logger.Host
	marker  string
	batcher *batch.Batcher

	recorded   atomic.Uint64
	filtered   atomic.Uint64
	jobs       atomic.Uint64
	delivered  atomic.Uint64
	noResponse atomic.Uint64
	invalid    atomic.Uint64
	remote     atomic.Uint64
}

// New returns a Notifier delivering through sender. The queue is shared by every notifier of the
// process so they all respect the same rate limit.
func New(opts Options, sender destination.Sender, q *queue.Queue) *Notifier {
	if opts.Period <= 0 {
		opts.Period = batch.DefaultPeriod
	}

	return &Notifier{
		opts:   opts,
		sender: sender,
		queue:  q,
		intn:   rand.IntN,
	}
}

// Name implements logger.Plugin.
func (n *Notifier) Name() string {
	return pluginName
}

// State returns the current lifecycle state.
func (n *Notifier) State() State {
	return State(n.state.Load())
}

// Enabled reports whether the notifier still accepts and delivers events.
func (n *Notifier) Enabled() bool {
	return n.enabled.Load()
}

// Apply implements logger.Plugin. ctx bounds the batch ticker and carries the logger used for the
// internal diagnostics, it should not be observed by host.
func (n *Notifier) Apply(ctx context.Context, host logger.Host) error {
	if !n.state.CompareAndSwap(int32(StateUninitialized), int32(StateConfiguring)) {
		return errAlreadyApplied
	}

	log := logger.Named(ctx, loggerName)
	n.host = host
	n.marker = host.RegisterMarker(doNotDeliverToken)

	levels := n.opts.subscribableLevels()
	if len(levels) == 0 {
		host.Error("no levels configured for the webhook notifier, disabling it", n.marker)
		n.state.Store(int32(StateDisabled))
		return nil
	}

	n.batcher = batch.New(ctx, batch.Config{
		Period:  n.opts.Period,
		Models:  n.opts.models(),
		Enabled: n.enabled.Load,
	}, n.submit)

	n.enabled.Store(true)
	n.state.Store(int32(StateActive))

	names := make([]string, 0, len(levels))
	for _, level := range levels {
		host.Subscribe(level, n.observer(level))
		names = append(names, level.String())
	}
	log.Debug("webhook notifier active", "levels", names)

	if n.opts.ShowLoadMessage {
		host.Info("webhook notifier initialized", "levels", strings.Join(names, ","))
	}

	return nil
}

// observer records the log calls of level, skipping the ones tagged by the notifier itself.
func (n *Notifier) observer(level logger.Level) logger.Observer {
	return func(parts []any) {
		if !n.enabled.Load() {
			return
		}

		if n.host.HasMarker(doNotDeliverToken, parts) {
			n.filtered.Add(1)
			return
		}

		n.recorded.Add(1)
		n.batcher.Record(level, parts)
	}
}

// submit turns the chunks of a flush into a single delivery job.
func (n *Notifier) submit(chunks []destination.Chunk) {
	n.jobs.Add(1)
	n.queue.Push(func(ctx context.Context) time.Duration {
		return n.dispatch(ctx, chunks)
	})
}

// Flush forces a batch flush.
func (n *Notifier) Flush() {
	if n.batcher != nil {
		n.batcher.Flush()
	}
}

// Close flushes the pending events and waits for the queued jobs to complete.
func (n *Notifier) Close(ctx context.Context) error {
	if n.batcher != nil {
		if err := n.batcher.Drain(ctx); err != nil {
			return err
		}
	}

	return n.queue.Wait(ctx)
}

// Metrics returns a snapshot of the notifier counters.
func (n *Notifier) Metrics() Metrics {
	pending := 0
	if n.batcher != nil {
		pending = n.batcher.Pending()
	}

	noResponse, invalid, remote := n.noResponse.Load(), n.invalid.Load(), n.remote.Load()
	return Metrics{
		State:      n.State().String(),
		Pending:    pending,
		Recorded:   n.recorded.Load(),
		Filtered:   n.filtered.Load(),
		Jobs:       n.jobs.Load(),
		Delivered:  n.delivered.Load(),
		Failed:     noResponse + invalid + remote,
		NoResponse: noResponse,
		Invalid:    invalid,
		Remote:     remote,
	}
}

// message wraps chunk with the notifier identity.
func (n *Notifier) message(chunk destination.Chunk) *destination.Message {
	return &destination.Message{
		Username:  n.username(),
		AvatarURL: n.avatar(),
		Embeds:    chunk,
	}
}

func (n *Notifier) username() string {
	if n.opts.Username != "" {
		return n.opts.Username
	}
	return trimPrefixDelimiters(n.host.DisplayPrefix())
}

func (n *Notifier) avatar() string {
	switch len(n.opts.AvatarURLs) {
	case 0:
		return ""
	case 1:
		return n.opts.AvatarURLs[0]
	default:
		return n.opts.AvatarURLs[n.intn(len(n.opts.AvatarURLs))]
	}
}

// trimPrefixDelimiters removes one pair of delimiters wrapping prefix.
func trimPrefixDelimiters(prefix string) string {
	if len(prefix) < 2 {
		return prefix
	}

	for _, delimiter := range prefixDelimiters {
		if prefix[0] == delimiter[0] && prefix[len(prefix)-1] == delimiter[1] {
			return prefix[1 : len(prefix)-1]
		}
	}
	return prefix
}
