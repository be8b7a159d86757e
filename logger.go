package ctx

import (
	"github.com/deixis/spine/log"
)

// WithLogger returns a copy of parent with a contextualised
// log.Logger. When parent carries a Transit, every log line is
// prefixed with the transit short ID and its current step, and ticks
// the stepper.
func WithLogger(parent Context, l log.Logger) Context {
	return WithValue[log.Logger](parent, &logger{
		Transit: TransitFromContext(parent),
		Log:     l.AddCalldepth(1),
	})
}

// LoggerFromContext returns the log.Logger attached to c, or a no-op
// logger when there is none.
func LoggerFromContext(c Context) log.Logger {
	l, ok := Value[log.Logger](c)
	if !ok {
		return log.NopLogger()
	}
	return l
}

// Trace calls Trace on the context logger
func Trace(c Context, tag, msg string, fields ...log.Field) {
	LoggerFromContext(c).Trace(tag, msg, fields...)
}

// Warn calls Warning on the context logger
func Warn(c Context, tag, msg string, fields ...log.Field) {
	LoggerFromContext(c).Warning(tag, msg, fields...)
}

// Err calls Error on the context logger
func Err(c Context, tag, msg string, fields ...log.Field) {
	LoggerFromContext(c).Error(tag, msg, fields...)
}

// logger wraps a log.Logger to contextualise log messages
type logger struct {
	Transit Transit
	Log     log.Logger
}

func (l *logger) Trace(tag, msg string, fields ...log.Field) {
	l.Log.Trace(tag, msg, l.logFields(fields)...)
}

func (l *logger) Warning(tag, msg string, fields ...log.Field) {
	l.Log.Warning(tag, msg, l.logFields(fields)...)
}

func (l *logger) Error(tag, msg string, fields ...log.Field) {
	l.Log.Error(tag, msg, l.logFields(fields)...)
}

func (l *logger) With(fields ...log.Field) log.Logger {
	return &logger{
		Transit: l.Transit,
		Log:     l.Log.With(fields...),
	}
}

func (l *logger) AddCalldepth(n int) log.Logger {
	return &logger{
		Transit: l.Transit,
		Log:     l.Log.AddCalldepth(n),
	}
}

func (l *logger) Close() error {
	return l.Log.Close()
}

func (l *logger) logFields(fields []log.Field) []log.Field {
	if l.Transit == nil {
		return fields
	}
	l.Transit.Tick()
	return log.JoinFields(
		[]log.Field{
			log.String("id", l.Transit.ShortID()),
			log.Stringer("step", l.Transit.Step()),
		},
		fields,
	)
}
