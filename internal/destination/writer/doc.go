// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package writer implements a destination that prints messages to an io.Writer.
// It is used to inspect what would be delivered without calling the remote endpoint.
package writer
