// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Linhanmic/tester-template-engine/native"
)

// DecodeJSON decodes a JSON value. Objects become *native.Record values with
// the fields in the same order as in the source, arrays become native.List
// values, integer numbers become int values and other numbers float64
// values. null becomes the empty string.
func DecodeJSON(src io.Reader) (interface{}, error) {
	dec := json.NewDecoder(src)
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("invalid data after the top-level value")
	}
	return v, nil
}

// decodeJSONValue decodes the next value from dec.
func decodeJSONValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	switch tok := tok.(type) {
	case json.Delim:
		switch tok {
		case '{':
			r := &native.Record{}
			for dec.More() {
				key, err := dec.Token()
				if err != nil {
					return nil, err
				}
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				r.Set(key.(string), v)
			}
			_, err = dec.Token()
			return r, err
		case '[':
			list := native.List{}
			for dec.More() {
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}
			_, err = dec.Token()
			return list, err
		}
		return nil, fmt.Errorf("unexpected delimiter %s", tok)
	case json.Number:
		return native.Normalize(tok)
	case nil:
		return "", nil
	}
	return tok, nil
}
