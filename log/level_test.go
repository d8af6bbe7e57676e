package log

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevel_Text(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"trace", LevelTrace, false},
		{"DEBUG", LevelDebug, false},
		{" Info ", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"info+2", Level(2), false},
		{"loud", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var l Level

			err := l.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, DefaultLevel, ParseLevel(tt.in))

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, l)
		})
	}

	b, err := LevelTrace.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "trace", string(b))

	b, err = Level(2).MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "info+2", string(b))
	assert.Equal(t, "Level(2)", Level(2).String())
}

func TestFormat_Text(t *testing.T) {
	assert.Equal(t, FormatText, ParseFormat("TEXT"))
	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, DefaultFormat, ParseFormat("xml"))
	assert.Equal(t, "Format(7)", Format(7).String())

	var f Format
	assert.Error(t, f.UnmarshalText([]byte("xml")))
}

func TestEnumerations(t *testing.T) {
	assert.Equal(t,
		[]string{"trace", "debug", "info", "warn", "error"},
		slices.Collect(Levels()))
	assert.Equal(t, []string{"text", "json"}, slices.Collect(Formats()))
}
