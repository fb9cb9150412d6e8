// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package discord implements a destination that posts messages to a Discord compatible webhook.
// Requests can be authenticated with a static bearer token or with an OAuth2 client credentials
// flow when the webhook sits behind a gateway. Failures are reported as destination.DeliveryError
// so callers can decide how to react to each class of failure.
package discord
