package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  zerolog.Level
	}{
		{"release mode maps to info", "release", zerolog.InfoLevel},
		{"debug mode maps to debug", "debug", zerolog.DebugLevel},
		{"plain zerolog level parses", "warn", zerolog.WarnLevel},
		{"garbage falls back to info", "loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetLevel(tt.input)
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}
