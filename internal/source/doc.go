// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package source defines the contracts used to implement hooklog log sources.
// Sources stream log records and can optionally be closed through shared interfaces.
package source
