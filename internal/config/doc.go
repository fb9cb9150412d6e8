// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package config loads the hooklog configuration from a YAML file and the environment.
package config
