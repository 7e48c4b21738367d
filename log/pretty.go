package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by prettyHandler. Styles are bound to a
// renderer for the handler's writer, so color is dropped automatically when
// the writer is not a terminal.
type palette struct {
	key, str, num, date, dur lipgloss.Style
	yes, no, null            lipgloss.Style
	trace, debug, info       lipgloss.Style
	warn, err                lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		date:  fg("4"),
		dur:   fg("5"),
		yes:   fg("2"),
		no:    fg("1"),
		null:  fg("8"),
		trace: fg("8").Bold(true),
		debug: fg("4").Bold(true),
		info:  fg("2").Bold(true),
		warn:  fg("3").Bold(true),
		err:   fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// prettyHandler is a colorized key=value text handler.
type prettyHandler struct {
	opts    slog.HandlerOptions
	mu      *sync.Mutex
	w       io.Writer
	style   palette
	prefix  string // group prefix for subsequent keys
	preattr []byte // attributes already rendered by WithAttrs
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts:  *opts,
		mu:    &sync.Mutex{},
		w:     w,
		style: newPalette(w),
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if !r.Time.IsZero() {
		h.writeAttr(buf, "", slog.Time(slog.TimeKey, r.Time))
	}

	h.space(buf)
	buf.WriteString(h.style.level(r.Level).Render(fmt.Sprintf("%-5s", levelName(r.Level))))

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil && src.File != "" {
			loc := filepath.Base(src.File) + ":" + strconv.Itoa(src.Line)
			h.writeAttr(buf, "", slog.String(slog.SourceKey, loc))
		}
	}

	h.space(buf)
	buf.WriteString(r.Message)

	if len(h.preattr) > 0 {
		buf.Write(h.preattr)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(buf, h.prefix, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(bytes.TrimPrefix(buf.Bytes(), []byte{' '}))

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	clone := *h

	buf := bytes.NewBuffer(append([]byte(nil), h.preattr...))
	for _, a := range attrs {
		h.writeAttr(buf, h.prefix, a)
	}

	clone.preattr = buf.Bytes()

	return &clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	clone := *h
	clone.prefix = h.prefix + name + "."

	return &clone
}

// space separates fields. The leading space of each line is trimmed in
// Handle, which lets WithAttrs pre-render fields the same way.
func (h *prettyHandler) space(buf *bytes.Buffer) {
	buf.WriteByte(' ')
}

func (h *prettyHandler) writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	if h.opts.ReplaceAttr != nil && a.Value.Kind() != slog.KindGroup {
		a = h.opts.ReplaceAttr(nil, a)
	}

	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, ga := range group {
			h.writeAttr(buf, prefix, ga)
		}

		return
	}

	// Timestamps are written without a key.
	if a.Key == slog.TimeKey && prefix == "" {
		h.space(buf)
		buf.WriteString(h.style.date.Render(a.Value.String()))

		return
	}

	h.space(buf)
	buf.WriteString(h.style.key.Render(prefix + a.Key + "="))
	h.writeValue(buf, a.Value)
}

func (h *prettyHandler) writeValue(buf *bytes.Buffer, v slog.Value) {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if needsQuote(s) {
			s = strconv.Quote(s)
		}

		buf.WriteString(h.style.str.Render(s))

	case slog.KindInt64:
		buf.WriteString(h.style.num.Render(strconv.FormatInt(v.Int64(), 10)))

	case slog.KindUint64:
		buf.WriteString(h.style.num.Render(strconv.FormatUint(v.Uint64(), 10)))

	case slog.KindFloat64:
		buf.WriteString(h.style.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64)))

	case slog.KindBool:
		if v.Bool() {
			buf.WriteString(h.style.yes.Render("true"))
		} else {
			buf.WriteString(h.style.no.Render("false"))
		}

	case slog.KindDuration:
		buf.WriteString(h.style.dur.Render(v.Duration().String()))

	case slog.KindTime:
		buf.WriteString(h.style.date.Render(v.Time().Format(DefaultTimeLayout)))

	default:
		if v.Any() == nil {
			buf.WriteString(h.style.null.Render("<nil>"))

			return
		}

		s := v.String()
		if needsQuote(s) {
			s = strconv.Quote(s)
		}

		buf.WriteString(h.style.str.Render(s))
	}
}

// levelName names l in lower case. Levels between the named ones are
// written relative to the level below, as slog does.
func levelName(l slog.Level) string {
	if l == slog.Level(LevelTrace) {
		return LevelTrace.String()
	}

	return strings.ToLower(l.String())
}

func needsQuote(s string) bool {
	if s == "" {
		return true
	}

	for _, r := range s {
		if r == ' ' || r == '=' || r == '"' || r < 0x20 || r == 0x7f {
			return true
		}
	}

	return false
}
