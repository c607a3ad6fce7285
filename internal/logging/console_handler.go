package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	logTimestampLayout = "2006-01-02 15:04:05"
	infoAttrLimit      = 8
)

// Keys promoted to the top of INFO records, in this order.
var infoHighlightKeys = []string{
	FieldAlert,
	FieldEventType,
	FieldDecisionType,
	FieldErrorHint,
	FieldImpact,
	"error",
	"video",
	"resolution",
	"url",
	"sentences",
	"cues",
	"chunks",
}

// prettyHandler renders one header line per record followed by indented
// fields. Records below INFO print every field; INFO and above print at most
// infoAttrLimit.
type prettyHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if !h.Enabled(context.Background(), record.Level) {
		return nil
	}

	var fields fieldList
	for _, attr := range h.attrs {
		fields.add(h.groups, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		fields.add(h.groups, attr)
		return true
	})

	component := fields.take(FieldComponent)
	jobID := fields.peek(FieldJobID)
	stage := fields.peek(FieldStage)

	var buf bytes.Buffer
	buf.WriteString(recordTime(record).Format(logTimestampLayout))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(record.Level))
	if component != "" {
		fmt.Fprintf(&buf, " [%s]", component)
	}
	if subject := composeSubject(jobID, stage); subject != "" {
		buf.WriteString(" " + subject)
	}
	buf.WriteString(" – ")
	buf.WriteString(messageText(record.Message))
	if h.addSource {
		if src := record.Source(); src != nil {
			fmt.Fprintf(&buf, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	buf.WriteByte('\n')

	if record.Level < slog.LevelInfo {
		for _, f := range fields {
			fmt.Fprintf(&buf, "    %s: %s\n", f.key, formatValue(f.value))
		}
	} else {
		shown, hidden := selectInfoFields(fields)
		for _, f := range shown {
			fmt.Fprintf(&buf, "    - %s: %s\n", f.key, formatValue(f.value))
		}
		switch {
		case hidden == 1:
			buf.WriteString("    + 1 more field hidden\n")
		case hidden > 1:
			fmt.Fprintf(&buf, "    + %d more fields hidden\n", hidden)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(slices.Clone(h.attrs), attrs...)
	return &next
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.groups = append(slices.Clone(h.groups), name)
	return &next
}

func recordTime(record slog.Record) time.Time {
	if record.Time.IsZero() {
		return time.Now()
	}
	return record.Time.In(time.Local)
}

func messageText(msg string) string {
	if msg = strings.TrimSpace(msg); msg != "" {
		return msg
	}
	return "(no message)"
}

type field struct {
	key   string
	value slog.Value
}

// fieldList holds flattened attributes. Later values for a key replace
// earlier ones in place.
type fieldList []field

func (l *fieldList) add(prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			prefix = append(slices.Clone(prefix), attr.Key)
		}
		for _, member := range value.Group() {
			l.add(prefix, member)
		}
		return
	}
	key := strings.Join(append(slices.Clone(prefix), attr.Key), ".")
	if key == "" {
		return
	}
	for i := range *l {
		if (*l)[i].key == key {
			(*l)[i].value = value
			return
		}
	}
	*l = append(*l, field{key: key, value: value})
}

func (l fieldList) peek(key string) string {
	for _, f := range l {
		if f.key == key {
			return strings.TrimSpace(plainValue(f.value))
		}
	}
	return ""
}

func (l *fieldList) take(key string) string {
	for i, f := range *l {
		if f.key == key {
			*l = slices.Delete(*l, i, i+1)
			return strings.TrimSpace(plainValue(f.value))
		}
	}
	return ""
}

// selectInfoFields orders highlighted keys first and drops the job and stage
// already printed in the header.
func selectInfoFields(fields []field) ([]field, int) {
	var highlighted, rest []field
	for _, f := range fields {
		switch {
		case f.key == FieldJobID || f.key == FieldStage:
		case slices.Contains(infoHighlightKeys, f.key):
			highlighted = append(highlighted, f)
		default:
			rest = append(rest, f)
		}
	}
	slices.SortStableFunc(highlighted, func(a, b field) int {
		return slices.Index(infoHighlightKeys, a.key) - slices.Index(infoHighlightKeys, b.key)
	})
	ordered := append(highlighted, rest...)
	if len(ordered) <= infoAttrLimit {
		return ordered, 0
	}
	return ordered[:infoAttrLimit], len(ordered) - infoAttrLimit
}

func composeSubject(jobID, stage string) string {
	switch {
	case jobID != "" && stage != "":
		return fmt.Sprintf("Job %s (%s)", jobID, stage)
	case jobID != "":
		return "Job " + jobID
	default:
		return stage
	}
}

func plainValue(v slog.Value) string {
	if v.Kind() == slog.KindString {
		return v.String()
	}
	if err, ok := v.Any().(error); ok {
		return err.Error()
	}
	return formatValue(v)
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().In(time.Local).Format(logTimestampLayout)
	}
	s := v.String()
	if err, ok := v.Any().(error); ok {
		s = err.Error()
	}
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r < ' ' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
