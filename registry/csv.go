// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package registry

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/Linhanmic/tester-template-engine/native"
)

// CSVOptions contains the options to decode CSV files.
type CSVOptions struct {

	// Comma is the field delimiter. If zero, it is ';' if the first line
	// contains a ';', otherwise it is ','.
	Comma rune

	// Encoding is the name of the character encoding, as "gbk" or
	// "windows-1252". If empty, the encoding is UTF-8. With every encoding,
	// a leading byte order mark selects the UTF-8 or UTF-16 encoding.
	Encoding string
}

// DecodeCSV decodes CSV data. The first row is the header and it is not
// part of the returned list. Each other row is a *native.Record with a
// field for each column, named as the column in the header. Fields are
// strings.
func DecodeCSV(src io.Reader, opts *CSVOptions) (native.List, error) {

	var comma rune
	var decoder transform.Transformer = transform.Nop
	if opts != nil {
		comma = opts.Comma
		if opts.Encoding != "" {
			enc, err := htmlindex.Get(opts.Encoding)
			if err != nil {
				return nil, fmt.Errorf("unknown encoding %q", opts.Encoding)
			}
			decoder = enc.NewDecoder()
		}
	}

	br := bufio.NewReader(transform.NewReader(src, unicode.BOMOverride(decoder)))

	if comma == 0 {
		comma = ','
		first, err := br.Peek(br.Size())
		if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
			return nil, err
		}
		if i := bytes.IndexByte(first, '\n'); i >= 0 {
			first = first[:i]
		}
		if bytes.IndexByte(first, ';') >= 0 {
			comma = ';'
		}
	}

	r := csv.NewReader(br)
	r.Comma = comma
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return native.List{}, nil
	}
	if err != nil {
		return nil, err
	}

	rows := native.List{}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(record))
		for i, field := range record {
			values[i] = field
		}
		rows = append(rows, native.NewRecord(header, values))
	}

	return rows, nil
}
