// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package batch accumulates log events and periodically turns them into delivery chunks.
//
// Events are kept in arrival order and drained by a recurring flush: every flush renders at most
// MaxUnitsPerFlush units worth of events, partitions them into chunks and hands them over with a
// single submit call. The ticker driving the flush only runs while there is something pending.
package batch
