package log

//go:generate go tool stringer --linecomment --type Level,Format --output level_string.go

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"
)

// Level is the severity of a log message.
type Level slog.Level

const (
	LevelTrace Level = Level(slog.LevelDebug - 4) // trace
	LevelDebug Level = Level(slog.LevelDebug)     // debug
	LevelInfo  Level = Level(slog.LevelInfo)      // info
	LevelWarn  Level = Level(slog.LevelWarn)      // warn
	LevelError Level = Level(slog.LevelError)     // error
)

// DefaultLevel is the level of a Logger made without [WithLevel].
const DefaultLevel = LevelInfo

var levels = []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}

// Levels returns an iterator over the names of all defined levels, from
// most to least verbose.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, l := range levels {
			if !yield(l.String()) {
				return
			}
		}
	}
}

// name returns the level name, or for levels between the named ones the
// offset form of [slog.Level] such as "info+2".
func (l Level) name() string {
	if slices.Contains(levels, l) {
		return l.String()
	}

	return strings.ToLower(slog.Level(l).String())
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) { return []byte(l.name()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. It accepts the names
// produced by [Level.String] in any case, plus the offset forms understood by
// [slog.Level.UnmarshalText] such as "info+2".
func (l *Level) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))

	for _, lv := range levels {
		if strings.EqualFold(s, lv.String()) {
			*l = lv

			return nil
		}
	}

	var sl slog.Level
	if err := sl.UnmarshalText([]byte(s)); err != nil {
		return fmt.Errorf("invalid log level %q", s)
	}

	*l = Level(sl)

	return nil
}

// ParseLevel returns the level named by s, or [DefaultLevel] if s names none.
func ParseLevel(s string) Level {
	var l Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return l
}

// Format selects the handler used to encode log records.
type Format int

const (
	FormatText Format = iota // text
	FormatJSON               // json
)

// DefaultFormat is the format of a Logger made without [WithFormat].
const DefaultFormat = FormatJSON

var formats = []Format{FormatText, FormatJSON}

// Formats returns an iterator over the names of all defined formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, f := range formats {
			if !yield(f.String()) {
				return
			}
		}
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))

	for _, ft := range formats {
		if strings.EqualFold(s, ft.String()) {
			*f = ft

			return nil
		}
	}

	return fmt.Errorf("invalid log format %q", s)
}

// ParseFormat returns the format named by s, or [DefaultFormat] if s names
// none.
func ParseFormat(s string) Format {
	var f Format
	if err := f.UnmarshalText([]byte(s)); err != nil {
		return DefaultFormat
	}

	return f
}
