package cmd

import (
	"fmt"
	"io"
	"math"

	"github.com/goccy/go-yaml"
	jsoniter "github.com/json-iterator/go"

	"github.com/ardnew/vela/vela"
)

// Output encodings shared by the commands that print values.
const (
	encodeNative = "native"
	encodeJSON   = "json"
	encodeYAML   = "yaml"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// encode writes v to w in the named encoding. Native output uses v's
// fmt.Stringer form. Operands are encoded as plain values.
func encode(w io.Writer, encoding string, v any) error {
	var err error

	if o, ok := v.(vela.Operand); ok && encoding != encodeNative {
		v = plain(o.Native())
	}

	switch encoding {
	case encodeJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(v)

	case encodeYAML:
		var b []byte

		b, err = yaml.Marshal(v)
		if err == nil {
			_, err = w.Write(b)
		}

	default:
		_, err = fmt.Fprintln(w, v)
	}

	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// maxExact is the largest magnitude below which every integer is exactly
// representable as a float64.
const maxExact = 1 << 53

// plain converts integral reals to int64 so that they are written without a
// fractional part.
func plain(v any) any {
	switch v := v.(type) {
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < maxExact {
			return int64(v)
		}

		return v

	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = plain(e)
		}

		return out

	default:
		return v
	}
}
