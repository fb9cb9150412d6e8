// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mia-platform/hooklog/internal/destination"
)

var _ destination.Sender = &FakeDestination{}

// FakeDestination records every message it receives and replies with scripted errors.
type FakeDestination struct {
	tb testing.TB

	// Delay simulates the request latency.
	Delay time.Duration
	// OnSend, if set, is called for every message before recording it.
	OnSend func(message *destination.Message)

	lock     sync.Mutex
	sent     []*destination.Message
	attempts int
	errs     []error
	fallback error
}

func NewFakeDestination(tb testing.TB) *FakeDestination {
	tb.Helper()
	return &FakeDestination{tb: tb}
}

// ReplyWith scripts the results of the next calls, one error per call; nil entries succeed.
func (f *FakeDestination) ReplyWith(errs ...error) *FakeDestination {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.errs = append(f.errs, errs...)
	return f
}

// AlwaysFail makes every call without a scripted result return err.
func (f *FakeDestination) AlwaysFail(err error) *FakeDestination {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.fallback = err
	return f
}

func (f *FakeDestination) Send(_ context.Context, message *destination.Message) error {
	f.tb.Helper()

	if f.Delay > 0 {
		time.Sleep(f.Delay)
	}
	if f.OnSend != nil {
		f.OnSend(message)
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	f.attempts++
	err := f.fallback
	if len(f.errs) > 0 {
		err = f.errs[0]
		f.errs = f.errs[1:]
	}

	if err != nil {
		return err
	}

	f.sent = append(f.sent, message)
	return nil
}

// SentMessages returns the messages delivered successfully.
func (f *FakeDestination) SentMessages() []*destination.Message {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]*destination.Message(nil), f.sent...)
}

// Attempts returns how many times Send has been called.
func (f *FakeDestination) Attempts() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.attempts
}
