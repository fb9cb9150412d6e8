// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package batch

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stringer struct{}

func (stringer) String() string { return "from stringer" }

func TestRender(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		parts    []any
		expected string
	}{
		"single message": {
			parts:    []any{"boom"},
			expected: "boom",
		},
		"message with key value pairs": {
			parts:    []any{"request failed", "status", 500, "path", "/logs"},
			expected: "request failed status=500 path=/logs",
		},
		"opaque parts are joined with spaces": {
			parts:    []any{"could not send", 42, true},
			expected: "could not send 42 true",
		},
		"errors and stringers": {
			parts:    []any{errors.New("disk full"), stringer{}},
			expected: "disk full from stringer",
		},
		"time values use their string form": {
			parts:    []any{"at", "time", time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)},
			expected: "at time=2024-06-01 00:00:00 +0000 UTC",
		},
		"structured values become json blocks": {
			parts:    []any{"payload", map[string]any{"id": 1}},
			expected: "payload ```json\n{\n\t\"id\": 1\n}\n```",
		},
		"slices become json blocks and break key value rendering": {
			parts:    []any{"ids", []int{1, 2}, "extra"},
			expected: "ids ```json\n[\n\t1,\n\t2\n]\n``` extra",
		},
		"nil parts": {
			parts:    []any{nil},
			expected: "<nil>",
		},
		"newline followed by space is collapsed and text trimmed": {
			parts:    []any{"  first line\n", "second line  "},
			expected: "first line\nsecond line",
		},
		"no parts": {
			parts:    []any{},
			expected: "",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, Render(tc.parts))
		})
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Split("", 3))
	assert.Equal(t, []string{"abc"}, Split("abc", 3))
	assert.Equal(t, []string{"abc", "de"}, Split("abcde", 3))
	assert.Equal(t, []string{"àè", "ìò"}, Split("àèìò", 2))
}
