// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mia-platform/hooklog/internal/logger"
	"github.com/mia-platform/hooklog/internal/source"
)

const (
	// IngestPath is the route accepting log records.
	IngestPath = "/logs"
)

var (
	errSourceClosed = errors.New("ingest source closed")
)

var _ source.EventSource = &IngestSource{}
var _ source.ClosableSource = &IngestSource{}

// IngestSource is a log source fed by the records posted to the server.
type IngestSource struct {
	server Server

	startMutex sync.Mutex
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewIngestSource returns a source that registers the ingestion route on srv and runs it.
func NewIngestSource(srv Server) *IngestSource {
	return &IngestSource{
		server: srv,
		stop:   make(chan struct{}),
	}
}

// StartEventStream registers the ingestion route, starts the server and blocks until the server
// fails, the source is closed or ctx is done.
func (s *IngestSource) StartEventStream(ctx context.Context, results chan<- source.Data) error {
	log := logger.Named(ctx, loggerName)
	if !s.startMutex.TryLock() {
		log.Debug("ingest stream already running")
		return nil
	}
	defer s.startMutex.Unlock()

	s.server.AddRoute(http.MethodPost, IngestPath, ingestHandler(results, s.stop))

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- s.server.Start()
	}()
	log.Debug("log ingestion started", "path", IngestPath)

	select {
	case err := <-serverDone:
		return err
	case <-s.stop:
		log.Trace("ingest source closed, stopping server")
		err := s.server.Stop()
		<-serverDone
		return err
	case <-ctx.Done():
		if err := s.server.Stop(); err != nil {
			log.Error("error stopping server", "error", err.Error())
		}
		<-serverDone
		return ctx.Err()
	}
}

// Close stops the server started by StartEventStream.
func (s *IngestSource) Close(_ context.Context, _ time.Duration) error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

// ingestHandler decodes the posted records and forwards them in order.
func ingestHandler(results chan<- source.Data, stop <-chan struct{}) Handler {
	return func(ctx context.Context, _ http.Header, body []byte) error {
		records, err := decodeRecords(body)
		if err != nil {
			return err
		}

		for _, record := range records {
			select {
			case results <- record:
			case <-stop:
				return errSourceClosed
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		logger.FromContext(ctx).Trace("records received", "count", len(records))
		return nil
	}
}

// logRecord is the body accepted by the ingestion route, either as a single object or an array.
type logRecord struct {
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields"`
	Time    time.Time      `json:"time"`
}

func decodeRecords(body []byte) ([]source.Data, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidRequest)
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()

	incoming := make([]logRecord, 0)
	if body[0] == '[' {
		if err := decoder.Decode(&incoming); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err.Error())
		}
	} else {
		var record logRecord
		if err := decoder.Decode(&record); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err.Error())
		}
		incoming = append(incoming, record)
	}

	records := make([]source.Data, 0, len(incoming))
	for index, record := range incoming {
		if strings.TrimSpace(record.Message) == "" {
			return nil, fmt.Errorf("%w: record %d: missing message", ErrInvalidRequest, index)
		}

		level := logger.INFO
		if record.Level != "" {
			parsed, err := logger.ParseLevel(record.Level)
			if err != nil {
				return nil, fmt.Errorf("%w: record %d: %s", ErrInvalidRequest, index, err.Error())
			}
			level = parsed
		}

		records = append(records, source.Data{
			Level:   level,
			Message: record.Message,
			Fields:  record.Fields,
			Time:    record.Time,
		})
	}

	return records, nil
}
