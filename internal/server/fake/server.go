// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/mia-platform/hooklog/internal/server"
)

var _ server.Server = &Server{}

type Route struct {
	Method  string
	Path    string
	Handler server.Handler
}

// Server records the registered routes and lets tests call them without listening on a port.
type Server struct {
	tb testing.TB

	lock             sync.Mutex
	registeredRoutes []Route

	startedChan chan struct{}
	closedChan  chan struct{}
	startOnce   sync.Once
	closeOnce   sync.Once
}

func NewFakeServer(tb testing.TB) *Server {
	tb.Helper()

	return &Server{
		tb:          tb,
		startedChan: make(chan struct{}),
		closedChan:  make(chan struct{}),
	}
}

func (s *Server) AddRoute(method string, path string, handler server.Handler) {
	s.tb.Helper()

	s.lock.Lock()
	defer s.lock.Unlock()
	s.registeredRoutes = append(s.registeredRoutes, Route{
		Method:  method,
		Path:    path,
		Handler: handler,
	})
}

// RegisteredRoutes returns a copy of the routes added so far.
func (s *Server) RegisteredRoutes() []Route {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]Route(nil), s.registeredRoutes...)
}

// Call invokes the handler registered for method and path with body.
func (s *Server) Call(ctx context.Context, method, path string, body []byte) error {
	s.tb.Helper()

	for _, route := range s.RegisteredRoutes() {
		if route.Method == method && route.Path == path {
			return route.Handler(ctx, http.Header{}, body)
		}
	}
	return fmt.Errorf("no route registered for %s %s", method, path)
}

// Start blocks until Stop is called.
func (s *Server) Start() error {
	s.tb.Helper()
	s.startOnce.Do(func() { close(s.startedChan) })
	<-s.closedChan
	return nil
}

func (s *Server) Stop() error {
	s.tb.Helper()
	s.closeOnce.Do(func() { close(s.closedChan) })
	return nil
}

func (s *Server) StartAsync(_ context.Context) {
	s.tb.Helper()
	go func() {
		_ = s.Start()
	}()
}

func (s *Server) StartedServer() <-chan struct{} {
	return s.startedChan
}

func (s *Server) StoppedServer() <-chan struct{} {
	return s.closedChan
}
