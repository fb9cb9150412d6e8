// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package batch

import (
	"context"
	"sync"
	"time"

	"github.com/mia-platform/hooklog/internal/destination"
	"github.com/mia-platform/hooklog/internal/logger"
)

const (
	loggerName = "hooklog:batch"

	// DefaultPeriod is the interval between two flushes when none is configured.
	DefaultPeriod = time.Second
	// MaxUnitsPerFlush is the number of units after which a flush stops draining events.
	MaxUnitsPerFlush = destination.MaxUnitsPerChunk

	// timestampLayout renders UTC times with millisecond precision, like 2024-06-01T12:00:00.000Z.
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"

	drainBackoff = 10 * time.Millisecond
)

// DefaultModel is used for levels that have no configured model.
var DefaultModel = Model{Title: "Log", Color: 0}

// Model holds the title and color of the units rendered for a level.
type Model struct {
	Title string
	Color int
}

// Event is a log call recorded for delivery: its level and the raw message parts.
type Event struct {
	Level logger.Level
	Parts []any
}

// SubmitFunc receives the chunks produced by a single flush.
type SubmitFunc func(chunks []destination.Chunk)

// Config tunes a Batcher.
type Config struct {
	// Period is the interval between two flushes, DefaultPeriod if zero.
	Period time.Duration
	// Models maps each level to the title and color of its units.
	Models map[logger.Level]Model
	// DefaultModel is used for levels missing from Models, the package DefaultModel if empty.
	DefaultModel Model
	// Enabled reports whether events are still accepted and flushed, always true if nil.
	Enabled func() bool
	// Now returns the timestamp of the rendered units, time.Now if nil.
	Now func() time.Time
}

type state int

const (
	stateIdle state = iota
	stateFlushing
)

// Batcher owns the list of pending events and the ticker that flushes them.
type Batcher struct {
	ctx    context.Context
	cfg    Config
	submit SubmitFunc

	lock    sync.Mutex
	pending []Event
	state   state
	stop    chan struct{}
}

// New returns an empty Batcher handing its chunks to submit. ctx bounds the ticker lifetime and
// carries the logger used for diagnostics.
func New(ctx context.Context, cfg Config, submit SubmitFunc) *Batcher {
	if cfg.Period <= 0 {
		cfg.Period = DefaultPeriod
	}
	if cfg.DefaultModel == (Model{}) {
		cfg.DefaultModel = DefaultModel
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Batcher{
		ctx:    ctx,
		cfg:    cfg,
		submit: submit,
	}
}

func (b *Batcher) enabled() bool {
	return b.cfg.Enabled == nil || b.cfg.Enabled()
}

// Record appends a new event and makes sure the ticker is running.
func (b *Batcher) Record(level logger.Level, parts []any) {
	if !b.enabled() {
		return
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	b.pending = append(b.pending, Event{Level: level, Parts: parts})
	b.startTickerLocked()
}

// Pending returns the number of events waiting to be flushed.
func (b *Batcher) Pending() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return len(b.pending)
}

// Running reports whether the flush ticker is active.
func (b *Batcher) Running() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.stop != nil
}

// Stop tears down the ticker, pending events are kept.
func (b *Batcher) Stop() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.stopTickerLocked()
}

// Flush drains up to MaxUnitsPerFlush units of pending events and submits them as chunks.
// It is a no-op while another flush is running.
func (b *Batcher) Flush() {
	b.flush()
}

// Drain flushes until nothing is pending, the batcher gets disabled or ctx is done. The ticker is
// stopped on return.
func (b *Batcher) Drain(ctx context.Context) error {
	defer b.Stop()

	for b.Pending() > 0 && b.enabled() {
		if b.flush() {
			continue
		}

		// another flush is in progress
		timer := time.NewTimer(drainBackoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	return nil
}

// flush reports false when it did nothing because another flush was in progress.
func (b *Batcher) flush() bool {
	log := logger.Named(b.ctx, loggerName)

	b.lock.Lock()
	if b.state == stateFlushing {
		b.lock.Unlock()
		return false
	}
	b.state = stateFlushing
	b.lock.Unlock()

	defer func() {
		if r := recover(); r != nil {
			log.Error("batch flush panicked", "panic", r)
		}

		b.lock.Lock()
		b.state = stateIdle
		if len(b.pending) == 0 {
			b.stopTickerLocked()
		}
		b.lock.Unlock()
	}()

	if !b.enabled() {
		b.Stop()
		return true
	}

	units := make([]destination.Unit, 0, MaxUnitsPerFlush)
	for len(units) < MaxUnitsPerFlush {
		event, ok := b.pop()
		if !ok {
			break
		}
		units = append(units, b.units(event)...)
	}

	if len(units) == 0 {
		log.Trace("nothing to flush")
		return true
	}

	chunks := destination.Chunks(units, destination.MaxUnitsPerChunk)
	log.Debug("flushing batch", "units", len(units), "chunks", len(chunks), "pending", b.Pending())
	b.submit(chunks)
	return true
}

// pop removes the oldest pending event.
func (b *Batcher) pop() (Event, bool) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if len(b.pending) == 0 {
		return Event{}, false
	}

	event := b.pending[0]
	b.pending[0] = Event{}
	b.pending = b.pending[1:]
	return event, true
}

// units renders event with the model of its level, one unit per slice of MaxDescriptionLength runes.
func (b *Batcher) units(event Event) []destination.Unit {
	model, ok := b.cfg.Models[event.Level]
	if !ok {
		model = b.cfg.DefaultModel
	}

	slices := Split(Render(event.Parts), destination.MaxDescriptionLength)
	timestamp := b.cfg.Now().UTC().Format(timestampLayout)

	units := make([]destination.Unit, 0, len(slices))
	for _, description := range slices {
		units = append(units, destination.Unit{
			Title:       model.Title,
			Color:       model.Color,
			Description: description,
			Timestamp:   timestamp,
		})
	}
	return units
}

func (b *Batcher) startTickerLocked() {
	if b.stop != nil {
		return
	}

	stop := make(chan struct{})
	b.stop = stop
	go b.tick(stop)
}

func (b *Batcher) stopTickerLocked() {
	if b.stop == nil {
		return
	}

	close(b.stop)
	b.stop = nil
}

func (b *Batcher) tick(stop chan struct{}) {
	ticker := time.NewTicker(b.cfg.Period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.flush()
		case <-stop:
			return
		case <-b.ctx.Done():
			b.lock.Lock()
			if b.stop == stop {
				b.stopTickerLocked()
			}
			b.lock.Unlock()
			return
		}
	}
}
