// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"strings"
)

// markdownEscape escapes s so that it is rendered as plain text in a
// Markdown paragraph, list item or table cell.
func markdownEscape(s string) string {
	var b strings.Builder
	last := 0
	for i := 0; i < len(s); i++ {
		if isMarkdownEscapable(s[i]) {
			b.WriteString(s[last:i])
			b.WriteByte('\\')
			last = i
		}
	}
	if b.Len() == 0 {
		return s
	}
	b.WriteString(s[last:])
	return b.String()
}

func isMarkdownEscapable(c byte) bool {
	switch c {
	case '\\', '`', '*', '_', '{', '}', '[', ']', '(', ')', '#', '+', '-', '=', '.', '!', '|', '<', '>', '~', '&':
		return true
	}
	return false
}
