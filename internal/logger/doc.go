// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package logger wraps the underlying logging stack behind a consistent interface.
// It centralizes configuration, makes loggers available through context helpers and exposes
// the hooks plugins use to observe warn and error calls without feeding their own diagnostics
// back into themselves.
package logger
