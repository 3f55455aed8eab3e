// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(goldmark.WithExtensions(extension.Table))

// reportMarkdown writes the Markdown report of results to w.
func reportMarkdown(w io.Writer, results []jobResult) {
	fmt.Fprint(w, "# Generation report\n\n")
	fmt.Fprint(w, "| Job | Template | Output | Result |\n|---|---|---|---|\n")
	for _, r := range results {
		output := r.Job.Output
		if output == "" {
			output = "-"
		}
		result := "failed"
		if r.Err == nil {
			switch n := len(r.Script.Warnings); n {
			case 0:
				result = "ok"
			case 1:
				result = "1 warning"
			default:
				result = strconv.Itoa(n) + " warnings"
			}
		}
		fmt.Fprintf(w, "| %s | %s | %s | %s |\n", markdownEscape(r.Job.Name),
			markdownEscape(filepath.ToSlash(r.Job.Template)), markdownEscape(filepath.ToSlash(output)), result)
	}
	for _, r := range results {
		if r.Err == nil && len(r.Script.Warnings) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n## %s\n\n", markdownEscape(r.Job.Name))
		if r.Err != nil {
			fmt.Fprintf(w, "**Error:** %s\n", markdownEscape(r.Err.Error()))
			continue
		}
		for _, warn := range r.Script.Warnings {
			fmt.Fprintf(w, "- line %d, %s: %s\n", warn.Line, markdownEscape(warn.Command), markdownEscape(warn.Message))
		}
	}
}

// writeReport writes the HTML report of results to the named file.
func writeReport(name string, results []jobResult) error {
	var src bytes.Buffer
	reportMarkdown(&src, results)
	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Generation report</title>\n</head>\n<body>\n")
	if err := md.Convert(src.Bytes(), &out); err != nil {
		return err
	}
	out.WriteString("</body>\n</html>\n")
	return os.WriteFile(name, out.Bytes(), 0o644)
}
