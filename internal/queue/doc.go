// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package queue implements the delivery queue shared by every webhook notifier of a process.
// Jobs run one at a time in enqueue order and each job decides how long the queue waits before
// running the next one, so a single queue enforces one request-rate budget for all its producers.
package queue
