package core

import "time"

// Logger interface defines logging capabilities without coupling the
// engine packages to a concrete logging library.
type Logger interface {
	Debug() LogEvent
	Info() LogEvent
	Warn() LogEvent
	Error() LogEvent
}

// LogEvent interface for structured logging.
type LogEvent interface {
	Str(key, val string) LogEvent
	Int(key string, val int) LogEvent
	Bool(key string, val bool) LogEvent
	Err(err error) LogEvent
	Dur(key string, val time.Duration) LogEvent
	Msg(msg string)
}

// NopLogger returns a logger that discards every event.
func NopLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug() LogEvent { return nopEvent{} }
func (nopLogger) Info() LogEvent  { return nopEvent{} }
func (nopLogger) Warn() LogEvent  { return nopEvent{} }
func (nopLogger) Error() LogEvent { return nopEvent{} }

type nopEvent struct{}

func (e nopEvent) Str(string, string) LogEvent        { return e }
func (e nopEvent) Int(string, int) LogEvent           { return e }
func (e nopEvent) Bool(string, bool) LogEvent         { return e }
func (e nopEvent) Err(error) LogEvent                 { return e }
func (e nopEvent) Dur(string, time.Duration) LogEvent { return e }
func (e nopEvent) Msg(string)                         {}
