// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package destination defines the messages delivered to a webhook endpoint and the contract
// every sender implements, including the classification of delivery failures.
package destination
