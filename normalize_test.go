// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"   ", ""},
		{`""`, ""},
		{`" '' "`, ""},
		{"\t\n", ""},
		{"yolox:8001", "yolox:8001"},
		{"  yolox:8001  ", "yolox:8001"},
		{`"http://paddle:8000/v1/infer"`, "http://paddle:8000/v1/infer"},
		{`' grpc://host:8001 '`, "grpc://host:8001"},
		{"'\tdeplot:8001\t'", "deplot:8001"},
		{`host"name`, `host"name`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAddress(tt.in))
		})
	}
}

func TestNormalizeAddress_Idempotent(t *testing.T) {
	inputs := []string{
		"", " ", `"`, `'"'`, "yolox:8001", ` ' "yolox:8001" ' `,
		"' \ta\t '", " svc:50051 ", `"'`, "a b", `'a"b'`,
	}
	for _, in := range inputs {
		once := NormalizeAddress(in)
		assert.Equal(t, once, NormalizeAddress(once), "input %q", in)
	}
}
