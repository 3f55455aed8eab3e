// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Linhanmic/tester-template-engine/native"
	"github.com/Linhanmic/tester-template-engine/signal"
)

var builtins = map[string]interface{}{
	"can_message":   native.Function(_canMessage),
	"decode_signal": native.Function(_decodeSignal),
	"encode_signal": native.Function(_encodeSignal),
	"enumerate":     native.Function(_enumerate),
	"float":         native.Function(_float),
	"hex":           native.Function(_hex),
	"int":           native.Function(_int),
	"len":           native.Function(_len),
	"range":         native.Function(_range),
	"str":           native.Function(_str),
}

// Builtins returns a new map with the built-in functions.
func Builtins() map[string]interface{} {
	funcs := make(map[string]interface{}, len(builtins))
	for name, f := range builtins {
		funcs[name] = f
	}
	return funcs
}

// checkArgs checks that the number of arguments is in [min, max].
func checkArgs(args []interface{}, min, max int) error {
	n := len(args)
	if min <= n && n <= max {
		return nil
	}
	var want string
	switch {
	case min == max && min == 1:
		want = "1 argument"
	case min == max:
		want = strconv.Itoa(min) + " arguments"
	default:
		want = strconv.Itoa(min) + " to " + strconv.Itoa(max) + " arguments"
	}
	return fmt.Errorf("expecting %s, got %d", want, n)
}

// argError returns the error for the argument at position i that has not
// the expected type.
func argError(args []interface{}, i int, expected string) error {
	return fmt.Errorf("argument %d has type %s, expecting %s", i+1, native.TypeOf(args[i]), expected)
}

func intArg(args []interface{}, i int) (int, error) {
	n, ok := args[i].(int)
	if !ok {
		return 0, argError(args, i, "int")
	}
	return n, nil
}

func stringArg(args []interface{}, i int) (string, error) {
	s, ok := args[i].(string)
	if !ok {
		return "", argError(args, i, "string")
	}
	return s, nil
}

// _canMessage is the builtin function "can_message".
func _canMessage(args ...interface{}) (interface{}, error) {
	if err := checkArgs(args, 1, 1); err != nil {
		return nil, err
	}
	spec, err := stringArg(args, 0)
	if err != nil {
		return nil, err
	}
	return signal.Message(spec)
}

// _decodeSignal is the builtin function "decode_signal".
func _decodeSignal(args ...interface{}) (interface{}, error) {
	if err := checkArgs(args, 2, 2); err != nil {
		return nil, err
	}
	s, err := stringArg(args, 0)
	if err != nil {
		return nil, err
	}
	r, err := stringArg(args, 1)
	if err != nil {
		return nil, err
	}
	data, err := signal.ParseData(s)
	if err != nil {
		return nil, err
	}
	ranges, err := signal.ParseRanges(r)
	if err != nil {
		return nil, err
	}
	v, err := signal.Decode(data, ranges)
	if err != nil {
		return nil, err
	}
	if !v.IsInt64() || v.Int64() > math.MaxInt {
		return nil, fmt.Errorf("decoded value %#x overflows int", v)
	}
	return int(v.Int64()), nil
}

// _encodeSignal is the builtin function "encode_signal".
func _encodeSignal(args ...interface{}) (interface{}, error) {
	if err := checkArgs(args, 1, 1); err != nil {
		return nil, err
	}
	spec, err := stringArg(args, 0)
	if err != nil {
		return nil, err
	}
	return signal.Encode(spec)
}

// _enumerate is the builtin function "enumerate". It returns a list of
// pairs, each with an index, starting from 0 or from the second argument,
// and an element of the first argument.
func _enumerate(args ...interface{}) (interface{}, error) {
	if err := checkArgs(args, 1, 2); err != nil {
		return nil, err
	}
	var items native.List
	switch v := args[0].(type) {
	case native.List:
		items = v
	case *native.Record:
		items = v.Values()
	default:
		return nil, argError(args, 0, "list or record")
	}
	start := 0
	if len(args) == 2 {
		var err error
		start, err = intArg(args, 1)
		if err != nil {
			return nil, err
		}
	}
	pairs := make(native.List, len(items))
	for i, item := range items {
		pairs[i] = native.List{start + i, item}
	}
	return pairs, nil
}

// _float is the builtin function "float".
func _float(args ...interface{}) (interface{}, error) {
	if err := checkArgs(args, 1, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case int:
		return float64(v), nil
	case float64:
		return v, nil
	case bool:
		if v {
			return 1.0, nil
		}
		return 0.0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to float", v)
		}
		return f, nil
	}
	return nil, argError(args, 0, "int, float, bool or string")
}

// _hex is the builtin function "hex". It formats a non-negative integer in
// uppercase hexadecimal without prefix, padded with zeros to the width
// given as second argument.
func _hex(args ...interface{}) (interface{}, error) {
	if err := checkArgs(args, 1, 2); err != nil {
		return nil, err
	}
	n, err := intArg(args, 0)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("negative value %d", n)
	}
	width := 0
	if len(args) == 2 {
		width, err = intArg(args, 1)
		if err != nil {
			return nil, err
		}
		if width < 0 {
			return nil, fmt.Errorf("negative width %d", width)
		}
	}
	return fmt.Sprintf("%0*X", width, n), nil
}

// _int is the builtin function "int". A string is parsed in base 10 or in
// the base given as second argument. With base 16 the "0x" prefix is
// allowed, with base 0 the base is implied by the prefix.
func _int(args ...interface{}) (interface{}, error) {
	if err := checkArgs(args, 1, 2); err != nil {
		return nil, err
	}
	if len(args) == 2 {
		if _, ok := args[0].(string); !ok {
			return nil, errors.New("cannot convert a non-string with an explicit base")
		}
	}
	switch v := args[0].(type) {
	case int:
		return v, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v >= math.MaxInt64 || v < math.MinInt64 {
			return nil, fmt.Errorf("cannot convert %s to int", native.FormatFloat(v))
		}
		return int(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		base := 10
		if len(args) == 2 {
			var err error
			base, err = intArg(args, 1)
			if err != nil {
				return nil, err
			}
			if base != 0 && (base < 2 || base > 36) {
				return nil, fmt.Errorf("invalid base %d", base)
			}
		}
		s := strings.TrimSpace(v)
		if base == 16 && len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
			s = s[2:]
		}
		n, err := strconv.ParseInt(s, base, strconv.IntSize)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to int", v)
		}
		return int(n), nil
	}
	return nil, argError(args, 0, "int, float, bool or string")
}

// _len is the builtin function "len". The length of a string is the number
// of its characters.
func _len(args ...interface{}) (interface{}, error) {
	if err := checkArgs(args, 1, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case string:
		return utf8.RuneCountInString(v), nil
	case native.List:
		return len(v), nil
	case *native.Record:
		return v.Len(), nil
	}
	return nil, argError(args, 0, "string, list or record")
}

// _range is the builtin function "range".
func _range(args ...interface{}) (interface{}, error) {
	if err := checkArgs(args, 1, 3); err != nil {
		return nil, err
	}
	var n [3]int
	for i := range args {
		var err error
		n[i], err = intArg(args, i)
		if err != nil {
			return nil, err
		}
	}
	start, stop, step := 0, n[0], 1
	if len(args) > 1 {
		start, stop = n[0], n[1]
	}
	if len(args) == 3 {
		step = n[2]
		if step == 0 {
			return nil, errors.New("step cannot be zero")
		}
	}
	// The length is computed on unsigned integers, as stop - start can
	// overflow an int.
	var length uint64
	switch {
	case step > 0 && start < stop:
		length = (uint64(stop)-uint64(start)-1)/uint64(step) + 1
	case step < 0 && start > stop:
		length = (uint64(start)-uint64(stop)-1)/(-uint64(step)) + 1
	}
	if length > maxLength {
		return nil, errTooLong
	}
	list := make(native.List, length)
	for i := range list {
		list[i] = start
		start += step
	}
	return list, nil
}

// _str is the builtin function "str".
func _str(args ...interface{}) (interface{}, error) {
	if err := checkArgs(args, 1, 1); err != nil {
		return nil, err
	}
	return native.Format(args[0])
}
