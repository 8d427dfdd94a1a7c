package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	charmlog "github.com/charmbracelet/log"
)

// CharmHandler renders slog records through charmbracelet/log.
type CharmHandler struct {
	logger *charmlog.Logger
	level  slog.Leveler
	groups []string
}

var levelLabels = map[charmlog.Level]struct {
	label string
	color lipgloss.Color
}{
	charmlog.DebugLevel: {"🔍 DEBUG", "63"},
	charmlog.InfoLevel:  {"✨ INFO ", "42"},
	charmlog.WarnLevel:  {"⚠️  WARN ", "214"},
	charmlog.ErrorLevel: {"❌ ERROR", "196"},
}

func charmStyles(noColor bool) *charmlog.Styles {
	styles := charmlog.DefaultStyles()
	for lvl, l := range levelLabels {
		s := lipgloss.NewStyle().SetString(l.label)
		if !noColor {
			s = s.Bold(true).Foreground(l.color)
		}
		styles.Levels[lvl] = s
	}
	if noColor {
		plain := lipgloss.NewStyle()
		styles.Timestamp = plain
		styles.Caller = plain
		styles.Prefix = plain
		styles.Message = plain
		styles.Key = plain
		styles.Value = plain
		styles.Separator = plain
		return styles
	}
	styles.Key = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	styles.Value = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	styles.Separator = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styles.Timestamp = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	return styles
}

// NewCharmHandler creates a console handler writing to w.
func NewCharmHandler(w io.Writer, level slog.Leveler, noColor bool) *CharmHandler {
	l := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           charmlog.DebugLevel,
	})
	l.SetStyles(charmStyles(noColor))
	return &CharmHandler{logger: l, level: level}
}

// Enabled implements slog.Handler.
func (h *CharmHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *CharmHandler) Handle(_ context.Context, r slog.Record) error {
	kvs := make([]any, 0, r.NumAttrs()*2)
	r.Attrs(func(a slog.Attr) bool {
		kvs = h.appendAttr(kvs, a, h.groups)
		return true
	})
	h.logger.Log(charmLevel(r.Level), r.Message, kvs...)
	return nil
}

// WithAttrs implements slog.Handler.
func (h *CharmHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var kvs []any
	for _, a := range attrs {
		kvs = h.appendAttr(kvs, a, h.groups)
	}
	return &CharmHandler{logger: h.logger.With(kvs...), level: h.level, groups: h.groups}
}

// WithGroup implements slog.Handler.
func (h *CharmHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	groups := append(append([]string{}, h.groups...), name)
	return &CharmHandler{logger: h.logger, level: h.level, groups: groups}
}

// appendAttr flattens groups into dotted keys.
func (h *CharmHandler) appendAttr(kvs []any, a slog.Attr, groups []string) []any {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return kvs
	}
	if a.Value.Kind() == slog.KindGroup {
		sub := groups
		if a.Key != "" {
			sub = append(append([]string{}, groups...), a.Key)
		}
		for _, ga := range a.Value.Group() {
			kvs = h.appendAttr(kvs, ga, sub)
		}
		return kvs
	}

	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	return append(kvs, key, attrValue(a.Value))
}

func attrValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	default:
		return v.Any()
	}
}

func charmLevel(level slog.Level) charmlog.Level {
	switch {
	case level >= slog.LevelError:
		return charmlog.ErrorLevel
	case level >= slog.LevelWarn:
		return charmlog.WarnLevel
	case level >= slog.LevelInfo:
		return charmlog.InfoLevel
	default:
		return charmlog.DebugLevel
	}
}
