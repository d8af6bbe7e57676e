package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	key, str, num, yes, no, faint lipgloss.Style
	levels                        map[slog.Level]lipgloss.Style
}

func newPalette(r *lipgloss.Renderer) palette {
	color := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:   color("8"),
		str:   color("6"),
		num:   color("3"),
		yes:   color("2"),
		no:    color("1"),
		faint: r.NewStyle().Faint(true),
		levels: map[slog.Level]lipgloss.Style{
			slog.Level(LevelTrace): color("5"),
			slog.LevelDebug:        color("4"),
			slog.LevelInfo:         color("2").Bold(true),
			slog.LevelWarn:         color("3").Bold(true),
			slog.LevelError:        color("1").Bold(true),
		},
	}
}

// prettyHandler writes one colorized key=value line per record. Colors are
// dropped when the output is not a terminal.
type prettyHandler struct {
	opts   slog.HandlerOptions
	style  palette
	mu     *sync.Mutex
	w      io.Writer
	prefix string
	attrs  []byte
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts:  *opts,
		style: newPalette(lipgloss.NewRenderer(w)),
		mu:    &sync.Mutex{},
		w:     w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	floor := slog.LevelInfo
	if h.opts.Level != nil {
		floor = h.opts.Level.Level()
	}

	return level >= floor
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		h.builtin(&buf, slog.Time(slog.TimeKey, r.Time))
	}

	h.builtin(&buf, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			h.builtin(&buf, slog.String(slog.SourceKey,
				fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	h.builtin(&buf, slog.String(slog.MessageKey, r.Message))
	buf.Write(h.attrs)

	r.Attrs(func(a slog.Attr) bool {
		h.attr(&buf, h.prefix, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var buf bytes.Buffer

	buf.Write(h.attrs)

	for _, a := range attrs {
		h.attr(&buf, h.prefix, a)
	}

	c := *h
	c.attrs = buf.Bytes()

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

// builtin writes one of the record's own fields, which pass through
// ReplaceAttr before any group prefix applies.
func (h *prettyHandler) builtin(buf *bytes.Buffer, a slog.Attr) {
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	if a.Key == "" {
		return
	}

	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}

	switch a.Key {
	case slog.LevelKey:
		h.level(buf, a.Value)

	case slog.MessageKey:
		buf.WriteString(a.Value.String())

	default:
		buf.WriteString(h.style.faint.Render(a.Value.String()))
	}
}

func (h *prettyHandler) level(buf *bytes.Buffer, v slog.Value) {
	var lvl slog.Level

	switch v.Kind() {
	case slog.KindAny:
		lvl, _ = v.Any().(slog.Level)
	case slog.KindString:
		lvl = slog.Level(ParseLevel(v.String()))
	}

	style, ok := h.style.levels[lvl]
	if !ok {
		style = h.style.str
	}

	buf.WriteString(style.Render(v.String()))
}

func (h *prettyHandler) attr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, g := range a.Value.Group() {
			h.attr(buf, prefix, g)
		}

		return
	}

	buf.WriteByte(' ')
	buf.WriteString(h.style.key.Render(prefix + a.Key))
	buf.WriteByte('=')
	h.value(buf, a.Value)
}

func (h *prettyHandler) value(buf *bytes.Buffer, v slog.Value) {
	var s string

	style := h.style.str

	switch v.Kind() {
	case slog.KindInt64:
		s, style = strconv.FormatInt(v.Int64(), 10), h.style.num
	case slog.KindUint64:
		s, style = strconv.FormatUint(v.Uint64(), 10), h.style.num
	case slog.KindFloat64:
		s, style = strconv.FormatFloat(v.Float64(), 'g', -1, 64), h.style.num
	case slog.KindBool:
		s, style = strconv.FormatBool(v.Bool()), h.style.no
		if v.Bool() {
			style = h.style.yes
		}
	case slog.KindDuration:
		s, style = v.Duration().String(), h.style.num
	default:
		s = v.String()
	}

	buf.WriteString(style.Render(s))
}
