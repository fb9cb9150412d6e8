// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"errors"
	"fmt"
)

// notStreamingSourceError is returned by Start when the source cannot stream log records.
type notStreamingSourceError struct {
	source any
}

func (e *notStreamingSourceError) Error() string {
	return fmt.Sprintf("source %T cannot stream log records", e.source)
}

func (e *notStreamingSourceError) Unwrap() error {
	return errors.ErrUnsupported
}
