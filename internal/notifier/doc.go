// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package notifier implements the logger plugin that forwards warn and error log calls to a
// webhook.
//
// The notifier subscribes to the configured levels of a logger core, batches the observed calls
// and pushes one delivery job per flush into a shared queue. Each job sends its chunks
// concurrently and turns the outcome into the delay the queue waits before the next job:
// failures never escape the job, they become local warnings tagged with a marker that keeps them
// out of the delivery path. An endpoint rejecting the requests as invalid disables the notifier
// for the rest of its lifetime.
package notifier
