// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package destination

import (
	"context"
	"encoding/json"
)

const (
	// MaxUnitsPerChunk is the number of units a single request can carry.
	MaxUnitsPerChunk = 10
	// MaxDescriptionLength is the number of characters a unit description can hold.
	MaxDescriptionLength = 4096 - 50
)

// Sender delivers one message to a destination.
type Sender interface {
	Send(ctx context.Context, message *Message) error
}

// Unit is one rendered card of a message.
type Unit struct {
	Title       string `json:"title"`
	Color       int    `json:"color"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

// Chunk is a group of at most MaxUnitsPerChunk units sent in a single request.
type Chunk []Unit

// Message is the body of a single webhook request.
type Message struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Embeds    Chunk  `json:"embeds"`
}

// internalMessage breaks the recursion when customizing JSON marshaling.
type internalMessage Message

// MarshalJSON always encodes the embeds as an array, endpoints reject a null list.
func (m Message) MarshalJSON() ([]byte, error) {
	if m.Embeds == nil {
		m.Embeds = Chunk{}
	}

	return json.Marshal(internalMessage(m))
}

// Chunks partitions units in order into chunks of at most size units.
func Chunks(units []Unit, size int) []Chunk {
	if size <= 0 {
		size = MaxUnitsPerChunk
	}

	chunks := make([]Chunk, 0, (len(units)+size-1)/size)
	for len(units) > 0 {
		end := min(size, len(units))
		chunks = append(chunks, Chunk(units[:end:end]))
		units = units[end:]
	}
	return chunks
}
