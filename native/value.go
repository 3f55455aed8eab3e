// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package native

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Normalize converts v to a template value. Signed and unsigned integers
// become int, floating-point numbers become float64, slices and arrays become
// List and maps with string keys become *Record with the keys sorted. nil
// becomes the empty string. Values already normalized are returned as is,
// except the elements of lists and the fields of records, that are
// normalized in a copy.
//
// It returns an error if v, or one of its elements, cannot be converted.
func Normalize(v interface{}) (interface{}, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case int:
		return v, nil
	case float64:
		return v, nil
	case string:
		return v, nil
	case bool:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		return int(v), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int", v)
		}
		return int(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int", v)
		}
		return int(v), nil
	case float32:
		return float64(v), nil
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", v)
		}
		return f, nil
	case Function:
		return v, nil
	case EnvFunction:
		return v, nil
	case func(...interface{}) (interface{}, error):
		return Function(v), nil
	case func(Env, ...interface{}) (interface{}, error):
		return EnvFunction(v), nil
	case List:
		return normalizeSlice(reflect.ValueOf(v))
	case *Record:
		if v == nil {
			return "", nil
		}
		r := &Record{keys: v.Keys(), values: make([]interface{}, len(v.values)), index: make(map[string]int, len(v.index))}
		for k, i := range v.index {
			r.index[k] = i
		}
		for i, value := range v.values {
			n, err := Normalize(value)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", v.keys[i], err)
			}
			r.values[i] = n
		}
		return r, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int", rv.Uint())
		}
		return int(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Slice, reflect.Array:
		return normalizeSlice(rv)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		keys := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			keys = append(keys, iter.Key().String())
		}
		sort.Strings(keys)
		values := make([]interface{}, len(keys))
		for i, k := range keys {
			n, err := Normalize(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			values[i] = n
		}
		return NewRecord(keys, values), nil
	case reflect.Ptr:
		if !rv.IsNil() {
			return Normalize(rv.Elem().Interface())
		}
		return "", nil
	}
	return nil, fmt.Errorf("unsupported type %T", v)
}

// normalizeSlice normalizes the elements of the slice or array rv.
func normalizeSlice(rv reflect.Value) (List, error) {
	list := make(List, rv.Len())
	for i := range list {
		n, err := Normalize(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		list[i] = n
	}
	return list, nil
}

// TypeOf returns the name of the type of the template value v, as it is
// reported in the error messages: "int", "float", "string", "bool", "list",
// "record" or "function".
func TypeOf(v interface{}) string {
	switch v.(type) {
	case int:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case bool:
		return "bool"
	case List:
		return "list"
	case *Record:
		return "record"
	case Function, EnvFunction:
		return "function"
	}
	return fmt.Sprintf("%T", v)
}

// Truth returns the truth value of v. false, zero numbers, empty strings,
// empty lists and empty records are false. All other values are true.
func Truth(v interface{}) bool {
	switch v := v.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case float64:
		return v != 0
	case string:
		return v != ""
	case List:
		return len(v) > 0
	case *Record:
		return v.Len() > 0
	}
	return v != nil
}

// Format returns the textual representation of v. Integers are formatted in
// base 10, floating-point numbers in the shortest decimal form with at least
// a fractional digit, strings as they are and booleans as "True" and "False".
// In lists and records, strings are quoted.
//
// It returns an error if v is a function.
func Format(v interface{}) (string, error) {
	var b strings.Builder
	err := format(&b, v, false)
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

func format(b *strings.Builder, v interface{}, quote bool) error {
	switch v := v.(type) {
	case int:
		b.WriteString(strconv.Itoa(v))
	case float64:
		b.WriteString(FormatFloat(v))
	case string:
		if quote {
			b.WriteString(strconv.Quote(v))
		} else {
			b.WriteString(v)
		}
	case bool:
		if v {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case List:
		b.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := format(b, e, true); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case *Record:
		b.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			if err := format(b, v.values[i], true); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case Function, EnvFunction:
		return fmt.Errorf("cannot format a function")
	case nil:
	default:
		return fmt.Errorf("cannot format a value of type %T", v)
	}
	return nil
}

// FormatFloat formats f in the shortest decimal form with at least a
// fractional digit. Very large and very small numbers are formatted with an
// exponent.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
