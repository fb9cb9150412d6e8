// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package destination

import (
	"errors"
	"fmt"
)

// Kind classifies a delivery failure.
type Kind int

const (
	// KindUnknown is reported for errors that do not come from a destination.
	KindUnknown Kind = iota
	// KindNoResponse means the request never received a response.
	KindNoResponse
	// KindInvalidEndpoint means the endpoint rejected the request as malformed or does not exist.
	KindInvalidEndpoint
	// KindRemote means the endpoint answered with any other non successful status.
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindNoResponse:
		return "NO_RESPONSE"
	case KindInvalidEndpoint:
		return "INVALID_URL"
	case KindRemote:
		return "REMOTE_ERROR"
	default:
		return "UNKNOWN"
	}
}

// DeliveryError reports a failed delivery.
type DeliveryError struct {
	Kind       Kind
	StatusCode int
	Detail     string
	Err        error
}

// NewNoResponseError wraps a transport failure.
func NewNoResponseError(err error) *DeliveryError {
	return &DeliveryError{Kind: KindNoResponse, Err: err}
}

// NewStatusError classifies a non successful status code.
func NewStatusError(statusCode int, detail string) *DeliveryError {
	kind := KindRemote
	if statusCode == 400 || statusCode == 404 {
		kind = KindInvalidEndpoint
	}

	return &DeliveryError{Kind: kind, StatusCode: statusCode, Detail: detail}
}

func (e *DeliveryError) Error() string {
	msg := "delivery failed: " + e.Kind.String()
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Is matches another DeliveryError of the same kind; a zero StatusCode in target matches any status.
func (e *DeliveryError) Is(target error) bool {
	other, ok := target.(*DeliveryError)
	if !ok {
		return false
	}

	if other.Kind != e.Kind {
		return false
	}
	return other.StatusCode == 0 || other.StatusCode == e.StatusCode
}

// KindOf returns the classification of err.
func KindOf(err error) Kind {
	var deliveryErr *DeliveryError
	if errors.As(err, &deliveryErr) {
		return deliveryErr.Kind
	}
	return KindUnknown
}
