// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mia-platform/hooklog/internal/batch"
	"github.com/mia-platform/hooklog/internal/logger"
)

func TestParseColor(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		value    string
		expected Color
	}{
		"decimal":              {value: "16705372", expected: 16705372},
		"hash hex":             {value: "#FF0000", expected: 0xFF0000},
		"lowercase hash hex":   {value: "#00ff00", expected: 0x00FF00},
		"0x hex":               {value: "0x0000FF", expected: 0x0000FF},
		"bare hex":             {value: "ABCDEF", expected: 0xABCDEF},
		"surrounding spaces":   {value: " 255 ", expected: 255},
		"max color":            {value: "#FFFFFF", expected: MaxColor},
		"out of range decimal": {value: "16777216", expected: 0},
		"out of range hex":     {value: "#1000000", expected: 0},
		"negative":             {value: "-5", expected: 0},
		"not a color":          {value: "red", expected: 0},
		"empty":                {value: "", expected: 0},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, ParseColor(tc.value))
		})
	}
}

func TestColorDecoding(t *testing.T) {
	t.Parallel()

	var decoded struct {
		Warn  Color `yaml:"warn"`
		Error Color `yaml:"error"`
		Info  Color `yaml:"info"`
	}
	err := yaml.Unmarshal([]byte("warn: 16705372\nerror: '#ED4245'\ninfo: 1.5\n"), &decoded)
	require.NoError(t, err)
	assert.Equal(t, Color(16705372), decoded.Warn)
	assert.Equal(t, Color(0xED4245), decoded.Error)
	assert.Equal(t, Color(0), decoded.Info)

	var fromText Color
	require.NoError(t, fromText.UnmarshalText([]byte("0xFFFFFF")))
	assert.Equal(t, Color(MaxColor), fromText)
}

func TestOptionsModels(t *testing.T) {
	t.Parallel()

	opts := Options{
		Labels: map[logger.Level]string{logger.WARN: "Careful"},
		Colors: map[logger.Level]Color{logger.ERROR: 0},
	}

	assert.Equal(t, map[logger.Level]batch.Model{
		logger.WARN:  {Title: "Careful", Color: 16705372},
		logger.ERROR: {Title: ":x: Error", Color: 0},
	}, opts.models())
}

func TestSubscribableLevels(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		levels   []logger.Level
		expected []logger.Level
	}{
		"default":            {levels: DefaultOptions().Levels, expected: []logger.Level{logger.ERROR}},
		"both in any order":  {levels: []logger.Level{logger.ERROR, logger.WARN}, expected: []logger.Level{logger.WARN, logger.ERROR}},
		"duplicates":         {levels: []logger.Level{logger.WARN, logger.WARN}, expected: []logger.Level{logger.WARN}},
		"unsupported levels": {levels: []logger.Level{logger.INFO, logger.DEBUG}, expected: []logger.Level{}},
		"nothing configured": {expected: []logger.Level{}},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, Options{Levels: tc.levels}.subscribableLevels())
		})
	}
}
