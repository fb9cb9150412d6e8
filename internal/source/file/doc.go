// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package file implements a log source that follows a file on disk, turning every new line
// into a log record. JSON lines keep their structure, plain lines get their level from the
// first severity keyword they contain.
package file
