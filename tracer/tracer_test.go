// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package tracer

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlushWritesAndResets(t *testing.T) {
	var buf bytes.Buffer
	Flush(&buf)
	buf.Reset()

	Log("first")
	Log("second")
	assert.Equal(t, []string{"first", "second"}, Messages())

	Flush(&buf)
	assert.Equal(t, "first\nsecond\n", buf.String())
	assert.Empty(t, Messages())
}

func TestLogConcurrent(t *testing.T) {
	Flush(&bytes.Buffer{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Log("msg")
		}()
	}
	wg.Wait()
	assert.Len(t, Messages(), 50)
	Flush(&bytes.Buffer{})
}
