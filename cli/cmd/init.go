package cmd

import (
	"context"
	"encoding"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/vela/log"
	"github.com/ardnew/vela/profile"
	"github.com/ardnew/vela/vela"
)

// defaultConfigIndent is the number of spaces used for indentation when
// generating the configuration file.
const defaultConfigIndent = 2

// defaultConfigMode is the permission of a newly written configuration file.
const defaultConfigMode os.FileMode = 0o600

// Init generates a configuration file with current flag values.
type Init struct {
	Force  bool `help:"Overwrite existing configuration file" short:"f"`
	Stdout bool `help:"Write to stdout instead of the configuration file."`

	out io.Writer `kong:"-"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context, _ *vela.Interpreter) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	doc, err := yaml.MarshalWithOptions(
		configDocument(ktx),
		yaml.Indent(defaultConfigIndent),
		yaml.IndentSequence(true),
	)
	if err != nil {
		return ErrWriteConfig.Wrap(err)
	}

	if i.Stdout {
		if _, err := writer(i.out).Write(doc); err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: configuration path undefined")
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !i.Force {
		flags |= os.O_EXCL
	}

	file, err := os.OpenFile(confPath, flags, defaultConfigMode)
	if err != nil {
		if os.IsExist(err) {
			err = ErrFileExists
		}

		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	defer file.Close()

	if _, err := file.Write(doc); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.DebugContext(ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// configDocument collects the top-level flag values in declaration order.
// Help, version and profiling flags are left out, as are empty values.
func configDocument(ktx *kong.Context) yaml.MapSlice {
	var doc yaml.MapSlice

	if ktx == nil {
		return doc
	}

	prefixIgnore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v := flagValue(ktx.FlagValue(flag)); v != nil {
			doc = append(doc, yaml.MapItem{Key: flag.Name, Value: v})
		}
	}

	return doc
}

// flagValue converts a parsed flag value to a YAML scalar or sequence, or
// returns nil if the value is empty.
func flagValue(val any) any {
	switch v := val.(type) {
	case nil:
		return nil

	case encoding.TextMarshaler:
		b, err := v.MarshalText()
		if err != nil || len(b) == 0 {
			return nil
		}

		return string(b)

	case string:
		if v == "" {
			return nil
		}

		return v

	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return v

	case []string:
		if len(v) == 0 {
			return nil
		}

		return v

	case fmt.Stringer:
		return v.String()

	default:
		return fmt.Sprint(v)
	}
}
