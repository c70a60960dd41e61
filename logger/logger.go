// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package logger

import (
	"sync/atomic"

	"github.com/sassoftware/viya-ingest-xtract/tracer"
)

// LogLevel represents log severity
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	ErrorLevel LogLevel = "error"
)

// LogFunc is a single logger function that handles all levels
type LogFunc func(level LogLevel, msg string, keyvals ...interface{})

func nopLog(level LogLevel, msg string, keyvals ...interface{}) {}

var logFunc atomic.Value

func init() {
	logFunc.Store(LogFunc(nopLog))
}

// SetLogger sets the global logger function. A nil f is ignored.
func SetLogger(f LogFunc) {
	if f != nil {
		logFunc.Store(f)
	}
}

// Reset restores the no-op logger.
func Reset() {
	logFunc.Store(LogFunc(nopLog))
}

func current() LogFunc {
	return logFunc.Load().(LogFunc)
}

// Debug logs a message at debug level
// If the last keyvals element is a bool and true, it is treated as trace flag
func Debug(msg string, keyvals ...interface{}) {
	trace := false
	if len(keyvals) > 0 {
		if b, ok := keyvals[len(keyvals)-1].(bool); ok {
			trace = b
			keyvals = keyvals[:len(keyvals)-1]
		}
	}
	current()(DebugLevel, msg, keyvals...)

	if trace {
		tracer.Log(msg)
	}
}

// Error logs a message at error level
func Error(msg string, keyvals ...interface{}) {
	current()(ErrorLevel, msg, keyvals...)
}
