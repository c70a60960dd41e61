// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package logger

import (
	"bytes"
	"testing"

	"github.com/sassoftware/viya-ingest-xtract/tracer"
	"github.com/stretchr/testify/assert"
)

type entry struct {
	level   LogLevel
	msg     string
	keyvals []interface{}
}

func capture(t *testing.T) *[]entry {
	t.Helper()
	var got []entry
	SetLogger(func(level LogLevel, msg string, keyvals ...interface{}) {
		got = append(got, entry{level, msg, keyvals})
	})
	t.Cleanup(Reset)
	return &got
}

func TestDebugTraceFlag(t *testing.T) {
	tracer.Flush(&bytes.Buffer{})
	got := capture(t)

	Debug("traced", "k", "v", true)
	Debug("untraced", "k", "v")

	if assert.Len(t, *got, 2) {
		assert.Equal(t, DebugLevel, (*got)[0].level)
		assert.Equal(t, []interface{}{"k", "v"}, (*got)[0].keyvals, "trace flag must be stripped")
		assert.Equal(t, []interface{}{"k", "v"}, (*got)[1].keyvals)
	}
	assert.Equal(t, []string{"traced"}, tracer.Messages())
	tracer.Flush(&bytes.Buffer{})
}

func TestErrorLevel(t *testing.T) {
	got := capture(t)
	Error("boom", "path", "worker_count")
	if assert.Len(t, *got, 1) {
		assert.Equal(t, ErrorLevel, (*got)[0].level)
		assert.Equal(t, "boom", (*got)[0].msg)
	}
}

func TestSetLoggerIgnoresNil(t *testing.T) {
	got := capture(t)
	SetLogger(nil)
	Error("still captured")
	assert.Len(t, *got, 1)
}
