package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := parseLevel("verbose")
	assert.Error(t, err)
}

func TestNewWithWriter_Formats(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		check func(t *testing.T, out string)
	}{
		{
			name: "json starts with brace",
			cfg:  Config{Format: "json", Level: "debug"},
			check: func(t *testing.T, out string) {
				assert.True(t, strings.HasPrefix(out, "{"), out)
				assert.Contains(t, out, `"message":"hello"`)
				assert.Contains(t, out, `"rows":3`)
			},
		},
		{
			name: "console is human readable",
			cfg:  Config{Format: "console", Level: "info"},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "INF")
				assert.Contains(t, out, "hello")
				assert.Contains(t, out, "rows=3")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := NewWithWriter(tt.cfg, &buf)
			require.NoError(t, err)
			log.Info().Int("rows", 3).Msg("hello")
			tt.check(t, buf.String())
		})
	}
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(Config{Format: "json", Level: "warn"}, &buf)
	require.NoError(t, err)

	log.Info().Msg("dropped")
	assert.Empty(t, buf.String())

	log.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewWithWriter_BadConfig(t *testing.T) {
	_, err := NewWithWriter(Config{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = NewWithWriter(Config{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
}
