// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hpcloud/tail"

	"github.com/mia-platform/hooklog/internal/logger"
	"github.com/mia-platform/hooklog/internal/source"
)

const (
	loggerName = "hooklog:source:file"
)

var (
	// ErrMissingPath is returned when no file path is provided.
	ErrMissingPath = errors.New("missing file path")
	// ErrFileSource wraps errors emitted by the file source implementation.
	ErrFileSource = errors.New("file source")

	errCloseTimeout = errors.New("timeout waiting for the file stream to stop")
)

var _ source.EventSource = &Source{}
var _ source.ClosableSource = &Source{}

type config struct {
	// FromStart reads the whole file before following it, by default only new lines are read.
	FromStart bool `env:"HOOKLOG_FILE_FROM_START" envDefault:"false"`
	// Poll watches the file with polling instead of filesystem notifications.
	Poll bool `env:"HOOKLOG_FILE_POLL" envDefault:"false"`
}

// Source follows a single file and streams its lines as log records.
type Source struct {
	path   string
	config config

	startMutex sync.Mutex

	lock     sync.Mutex
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewSource returns a Source following path, configured from the environment.
func NewSource(path string) (*Source, error) {
	if strings.TrimSpace(path) == "" {
		return nil, handleError(ErrMissingPath)
	}

	cfg, err := env.ParseAs[config]()
	if err != nil {
		return nil, handleError(err)
	}

	return &Source{
		path:   filepath.Clean(path),
		config: cfg,
		stop:   make(chan struct{}),
	}, nil
}

// StartEventStream follows the file until Close is called or ctx is done. Only one stream
// can run at a time, further calls return immediately.
func (s *Source) StartEventStream(ctx context.Context, results chan<- source.Data) error {
	log := logger.FromContext(ctx).WithName(loggerName)
	if !s.startMutex.TryLock() {
		log.Debug("event stream already running")
		return nil
	}
	defer s.startMutex.Unlock()

	tailer, err := tail.TailFile(s.path, s.tailConfig())
	if err != nil {
		return handleError(err)
	}

	done := make(chan struct{})
	s.lock.Lock()
	s.done = done
	s.lock.Unlock()
	defer close(done)
	defer tailer.Cleanup()

	log.Debug("following file", "path", s.path, "fromStart", s.config.FromStart, "poll", s.config.Poll)
	for {
		select {
		case <-ctx.Done():
			_ = tailer.Stop()
			return ctx.Err()
		case <-s.stop:
			log.Trace("file source closed, stopping tail")
			return handleError(tailer.Stop())
		case line, ok := <-tailer.Lines:
			if !ok {
				return handleError(tailer.Err())
			}
			if line.Err != nil {
				log.Error("error reading file line", "path", s.path, "error", line.Err.Error())
				continue
			}

			data, ok := parseLine(line.Text)
			if !ok {
				continue
			}

			select {
			case results <- data:
			case <-ctx.Done():
				_ = tailer.Stop()
				return ctx.Err()
			}
		}
	}
}

// Close stops the running stream and waits for it to return, up to timeout.
func (s *Source) Close(ctx context.Context, timeout time.Duration) error {
	log := logger.FromContext(ctx).WithName(loggerName)
	s.stopOnce.Do(func() { close(s.stop) })

	s.lock.Lock()
	done := s.done
	s.lock.Unlock()
	if done == nil {
		log.Debug("file source never started")
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return handleError(errCloseTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Source) tailConfig() tail.Config {
	cfg := tail.Config{
		Follow: true,
		ReOpen: true,
		Poll:   s.config.Poll,
		Logger: tail.DiscardingLogger,
	}

	if !s.config.FromStart {
		cfg.Location = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}
	return cfg
}

// handleError wraps err with ErrFileSource, unwrapping environment parsing errors first.
func handleError(err error) error {
	if err == nil {
		return nil
	}

	var envErr env.AggregateError
	if errors.As(err, &envErr) && len(envErr.Errors) > 0 {
		err = envErr.Errors[0]
	}

	return fmt.Errorf("%w: %w", ErrFileSource, err)
}
