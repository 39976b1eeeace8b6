package logging

import (
	"fmt"
	"strings"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap/zapcore"
)

// SentryCore implements zapcore.Core and forwards error entries to Sentry.
type SentryCore struct {
	zapcore.LevelEnabler
	fields []zapcore.Field
}

// NewSentryCore creates a core that reports entries at or above enab.
func NewSentryCore(enab zapcore.LevelEnabler) *SentryCore {
	return &SentryCore{LevelEnabler: enab}
}

// With adds structured context to the Core.
func (c *SentryCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &SentryCore{LevelEnabler: c.LevelEnabler, fields: merged}
}

// Check determines whether the supplied Entry should be logged.
func (c *SentryCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write forwards the entry to Sentry when a client is bound.
func (c *SentryCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	if sentry.CurrentHub().Client() == nil {
		return nil
	}

	all := append(append([]zapcore.Field{}, c.fields...), fields...)
	event := buildEvent(ent, all)

	sentry.CaptureEvent(event)
	return nil
}

// Sync implements zapcore.Core.
func (c *SentryCore) Sync() error {
	return nil
}

func buildEvent(ent zapcore.Entry, fields []zapcore.Field) *sentry.Event {
	enc := zapcore.NewMapObjectEncoder()
	var errorValues []string
	for i := range fields {
		if fields[i].Type == zapcore.ErrorType {
			if err, ok := fields[i].Interface.(error); ok {
				errorValues = append(errorValues, err.Error())
			}
		}
		fields[i].AddTo(enc)
	}

	event := sentry.NewEvent()
	event.Level = sentryLevel(ent.Level)
	event.Message = ent.Message
	for k, v := range enc.Fields {
		if k != "error" {
			event.Extra[k] = v
		}
	}

	value := ent.Message
	if len(errorValues) > 0 {
		value = fmt.Sprintf("%s: %s", ent.Message, strings.Join(errorValues, "; "))
	}

	var module, funcName string
	if fn := ent.Caller.Function; fn != "" {
		if i := strings.LastIndexByte(fn, '/'); i > -1 {
			module = fn[:i]
		}
		funcName = fn
		if i := strings.LastIndexByte(fn, '.'); i > -1 {
			funcName = fn[i+1:]
		}
	}

	event.Exception = []sentry.Exception{{
		Value:      value,
		Type:       funcName,
		Module:     module,
		Stacktrace: sentry.NewStacktrace(),
	}}
	return event
}

func sentryLevel(l zapcore.Level) sentry.Level {
	switch l {
	case zapcore.ErrorLevel:
		return sentry.LevelError
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return sentry.LevelFatal
	case zapcore.WarnLevel:
		return sentry.LevelWarning
	default:
		return sentry.LevelInfo
	}
}
