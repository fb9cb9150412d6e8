// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mia-platform/hooklog/internal/config"
	"github.com/mia-platform/hooklog/internal/destination"
	"github.com/mia-platform/hooklog/internal/logger"
	"github.com/mia-platform/hooklog/internal/notifier"
	"github.com/mia-platform/hooklog/internal/pipeline"
	"github.com/mia-platform/hooklog/internal/queue"
	"github.com/mia-platform/hooklog/internal/server"
)

const (
	loggerName = "hooklog:run"

	deliverySpacing = 1 * time.Second
	shutdownTimeout = 10 * time.Second
)

// runStats is the payload of the server stats route.
type runStats struct {
	Notifier notifier.Metrics `json:"notifier"`
	Queue    queue.Stats      `json:"queue"`
}

// options configures a log collection run.
type options struct {
	sourceName string
	configPath string
	filePath   string
	output     io.Writer

	senderGetter func(ctx context.Context, endpoint string) (destination.Sender, error)
	sourceGetter func(ctx context.Context, name, path string, stats server.StatsFunc) (any, error)

	lock sync.Mutex
}

// validate checks the configured values and reports invalid setups.
func (o *options) validate() error {
	if o.sourceName == "" {
		return errNoArguments
	}

	if _, ok := availableSources[o.sourceName]; !ok {
		return fmt.Errorf("%w: %s", errInvalidSource, o.sourceName)
	}

	if o.sourceName == "file" && o.filePath == "" {
		return errMissingPath
	}

	return nil
}

// execute builds the logger core with the webhook notifier and moves the source records into it
// until the source stops or ctx is cancelled. Pending notifications are delivered before returning.
// The logger in ctx receives the diagnostics and is never observed by the notifier.
func (o *options) execute(ctx context.Context) error {
	if !o.lock.TryLock() {
		return nil
	}
	defer o.lock.Unlock()

	log := logger.Named(ctx, loggerName)

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	loggerOptions, err := cfg.LoggerOptions()
	if err != nil {
		return err
	}

	notifierOptions, err := cfg.NotifierOptions()
	if err != nil {
		return err
	}

	sender, err := o.senderGetter(ctx, cfg.Webhook.URL)
	if err != nil {
		return err
	}

	// delivery outlives ctx so the records received before a shutdown still reach the webhook
	deliveryCtx := context.WithoutCancel(ctx)
	deliveryQueue := queue.New(deliveryCtx, deliverySpacing)
	webhook := notifier.New(notifierOptions, sender, deliveryQueue)

	logFile, err := cfg.OpenLogFile()
	if err != nil {
		return err
	}
	output := o.output
	if logFile != nil {
		defer logFile.Close()
		output = io.MultiWriter(o.output, logFile)
	}

	core := logger.New(output, loggerOptions)
	if err := core.Use(deliveryCtx, webhook); err != nil {
		return err
	}

	stats := func() any {
		return runStats{
			Notifier: webhook.Metrics(),
			Queue:    deliveryQueue.Stats(),
		}
	}

	src, err := o.sourceGetter(ctx, o.sourceName, o.filePath, stats)
	if err != nil {
		return err
	}

	logPipeline := pipeline.New(src, core)
	log.Debug("starting log pipeline", "source", o.sourceName, "webhookState", webhook.State().String())
	err = logPipeline.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(deliveryCtx, shutdownTimeout)
	defer cancel()

	if stopErr := logPipeline.Stop(shutdownCtx, shutdownTimeout); stopErr != nil {
		log.Error("error stopping the log source", "error", stopErr.Error())
	}
	if closeErr := webhook.Close(shutdownCtx); closeErr != nil {
		log.Error("error delivering pending notifications", "error", closeErr.Error())
	}
	log.Debug("log pipeline stopped", "delivered", webhook.Metrics().Delivered)

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
