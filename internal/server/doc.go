// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package server contains the HTTP server of hooklog.
// It sets up the server using the Fiber framework, logs every request outside the status
// routes, and exposes the ingestion route that turns posted records into a log source.
package server
