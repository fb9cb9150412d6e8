// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"context"
	"time"

	"github.com/mia-platform/hooklog/internal/logger"
	"github.com/mia-platform/hooklog/internal/source"
)

const (
	loggerName = "hooklog:pipeline"
)

// Pipeline reads records from a source and writes them to a target logger.
type Pipeline struct {
	source any
	target logger.Logger
}

// New returns a pipeline moving records from src to target. src must implement
// source.EventSource for Start to succeed.
func New(src any, target logger.Logger) *Pipeline {
	return &Pipeline{
		source: src,
		target: target,
	}
}

// Start runs the source event stream and blocks until it returns. Records already received
// are written before Start returns.
func (p *Pipeline) Start(ctx context.Context) error {
	log := logger.Named(ctx, loggerName)

	streamSource, ok := p.source.(source.EventSource)
	if !ok {
		return &notStreamingSourceError{source: p.source}
	}

	log.Trace("starting log pipeline")
	channel := make(chan source.Data)

	// use channel to signal when the writing loop has drained all the received records
	writingDone := make(chan struct{})
	go func() {
		log.Trace("starting record writing goroutine")
		p.writeRecords(ctx, channel)
		close(writingDone)
	}()

	err := streamSource.StartEventStream(ctx, channel)
	log.Trace("event stream finished, closing data channel")
	close(channel)

	<-writingDone
	log.Trace("record writing goroutine finished")
	return err
}

// Stop closes the source when it supports it.
func (p *Pipeline) Stop(ctx context.Context, timeout time.Duration) error {
	log := logger.Named(ctx, loggerName)
	closableSource, ok := p.source.(source.ClosableSource)
	if !ok {
		log.Debug("source does not implement ClosableSource, skipping close")
		return nil
	}

	log.Debug("stop source")
	return closableSource.Close(ctx, timeout)
}

func (p *Pipeline) writeRecords(ctx context.Context, channel <-chan source.Data) {
	log := logger.Named(ctx, loggerName)
	for data := range channel {
		write(p.target, data)
		log.Trace("record written", "level", data.Level.String())
	}
}

// write logs data through target at the record level.
func write(target logger.Logger, data source.Data) {
	args := data.Args()
	switch data.Level {
	case logger.ERROR:
		target.Error(data.Message, args...)
	case logger.WARN:
		target.Warn(data.Message, args...)
	case logger.DEBUG:
		target.Debug(data.Message, args...)
	case logger.TRACE:
		target.Trace(data.Message, args...)
	default:
		target.Info(data.Message, args...)
	}
}
