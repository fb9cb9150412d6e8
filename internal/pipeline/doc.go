// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package pipeline connects a log source to a logger.
// Every record read from the source is written to the target logger at its own level, so it
// goes through the same observers and plugins as the records produced by the process itself.
package pipeline
