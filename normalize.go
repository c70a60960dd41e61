// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"strings"
	"unicode"
)

// NormalizeAddress strips surrounding whitespace and quote characters from
// an endpoint address. An empty result means the address is absent.
func NormalizeAddress(addr string) string {
	return strings.TrimFunc(addr, func(r rune) bool {
		return r == '"' || r == '\'' || unicode.IsSpace(r)
	})
}
