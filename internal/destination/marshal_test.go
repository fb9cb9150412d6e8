// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package destination

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomMarshaling(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		input    Message
		expected string
	}{
		"message with embeds": {
			input: Message{
				Username:  "hooklog",
				AvatarURL: "https://example.com/avatar.png",
				Embeds: Chunk{
					{Title: "Error", Color: 15548997, Description: "boom", Timestamp: "2024-06-01T12:00:00Z"},
				},
			},
			expected: `{"username":"hooklog","avatar_url":"https://example.com/avatar.png","embeds":[{"title":"Error","color":15548997,"description":"boom","timestamp":"2024-06-01T12:00:00Z"}]}`,
		},
		"message without avatar and embeds": {
			input:    Message{Username: "hooklog"},
			expected: `{"username":"hooklog","embeds":[]}`,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			output, err := json.Marshal(tc.input)
			require.NoError(t, err)
			assert.JSONEq(t, tc.expected, string(output))
		})
	}
}

func TestChunks(t *testing.T) {
	t.Parallel()

	units := func(n int) []Unit {
		out := make([]Unit, 0, n)
		for i := range n {
			out = append(out, Unit{Description: string(rune('a' + i))})
		}
		return out
	}

	testCases := map[string]struct {
		units          []Unit
		size           int
		expectedLength []int
	}{
		"empty input":             {units: nil, size: 10, expectedLength: []int{}},
		"less than one chunk":     {units: units(3), size: 10, expectedLength: []int{3}},
		"exactly one chunk":       {units: units(10), size: 10, expectedLength: []int{10}},
		"overflowing chunks":      {units: units(23), size: 10, expectedLength: []int{10, 10, 3}},
		"invalid size uses limit": {units: units(12), size: 0, expectedLength: []int{10, 2}},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			chunks := Chunks(tc.units, tc.size)
			lengths := make([]int, 0, len(chunks))
			flattened := make([]Unit, 0, len(tc.units))
			for _, chunk := range chunks {
				lengths = append(lengths, len(chunk))
				flattened = append(flattened, chunk...)
			}

			assert.Equal(t, tc.expectedLength, lengths)
			assert.Equal(t, len(tc.units), len(flattened))
			if len(tc.units) > 0 {
				assert.Equal(t, tc.units, flattened, "order is preserved")
			}
		})
	}
}
