// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package signal encodes and decodes signal values in the bit fields of CAN
// frames.
//
// A signal specification has the form
//
//	<id>,<ranges>=<value>
//
// where id is the frame identifier, ranges is a comma separated list of bit
// ranges and value is an unsigned integer, in hexadecimal with the "0x"
// prefix or in decimal. A bit range has the form "b.i-b.i", or "b.i" for a
// single bit, where b is the byte index starting from 1 and i is the bit
// index in the byte, from 0 for the least significant bit to 7.
//
// Bits are numbered in Intel order: the bit at position i of byte b has
// offset (b-1)*8+i in the frame and a range covers the offsets from its
// start to its end. The least significant bit of the value is placed at the
// start of the last range, the following bits fill the last range towards
// its end and then the previous ranges.
//
// For example, the specification "0x261,1.0-2.1=0x23A" encodes to "3A02".
package signal

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// MaxBytes is the maximum byte index of a bit position, that is the length
// of a CAN FD frame.
const MaxBytes = 64

// ClassicBytes is the length of a classic CAN frame.
const ClassicBytes = 8

// EncodingError is returned when a signal specification is malformed or its
// value does not fit in its bit ranges.
type EncodingError struct {
	Spec string // specification.
	Err  error  // error.
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("signal %q: %s", e.Spec, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Bit is the position of a bit in a frame.
type Bit struct {
	Byte  int // byte index starting from 1.
	Index int // bit index in the byte, from 0 (least significant) to 7.
}

// offset returns the offset of b in the frame.
func (b Bit) offset() int {
	return (b.Byte-1)*8 + b.Index
}

// String returns b in the form "byte.index".
func (b Bit) String() string {
	return strconv.Itoa(b.Byte) + "." + strconv.Itoa(b.Index)
}

// Range is a range of contiguous bits.
type Range struct {
	Start Bit
	End   Bit
}

// Width returns the number of bits of r.
func (r Range) Width() int {
	return r.End.offset() - r.Start.offset() + 1
}

// String returns r in the form "b.i-b.i", or "b.i" if r has only one bit.
func (r Range) String() string {
	if r.Start == r.End {
		return r.Start.String()
	}
	return r.Start.String() + "-" + r.End.String()
}

// Spec is a parsed signal specification.
type Spec struct {
	ID     string   // frame identifier as written in the specification.
	Ranges []Range  // bit ranges, most significant first.
	Value  *big.Int // value.
}

// Width returns the total number of bits of the ranges of s.
func (s *Spec) Width() int {
	return width(s.Ranges)
}

// Len returns the number of bytes needed to hold the ranges of s.
func (s *Spec) Len() int {
	n := 0
	for _, r := range s.Ranges {
		if r.End.Byte > n {
			n = r.End.Byte
		}
	}
	return n
}

// Bytes returns the frame data with the value of s placed in its ranges.
// The data is long s.Len() bytes and the bits outside the ranges are zero.
func (s *Spec) Bytes() []byte {
	data := make([]byte, s.Len())
	s.put(data)
	return data
}

// put places the value of s in data.
func (s *Spec) put(data []byte) {
	bit := 0
	for i := len(s.Ranges) - 1; i >= 0; i-- {
		r := s.Ranges[i]
		for off := r.Start.offset(); off <= r.End.offset(); off++ {
			if s.Value.Bit(bit) == 1 {
				data[off/8] |= 1 << (off % 8)
			}
			bit++
		}
	}
}

// Parse parses a signal specification. The returned error, if not nil, has
// type *EncodingError.
func Parse(spec string) (*Spec, error) {
	s, err := parse(spec)
	if err != nil {
		return nil, &EncodingError{Spec: spec, Err: err}
	}
	return s, nil
}

func parse(spec string) (*Spec, error) {
	i := strings.IndexByte(spec, ',')
	if i < 0 {
		return nil, errors.New("missing ',' after the identifier")
	}
	id := strings.TrimSpace(spec[:i])
	if id == "" {
		return nil, errors.New("missing identifier")
	}
	if _, err := parseUint(id); err != nil {
		return nil, fmt.Errorf("invalid identifier %q", id)
	}
	rest := spec[i+1:]
	j := strings.LastIndexByte(rest, '=')
	if j < 0 {
		return nil, errors.New("missing '=' before the value")
	}
	ranges, err := parseRanges(rest[:j])
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(rest[j+1:])
	if text == "" {
		return nil, errors.New("missing value")
	}
	value, err := parseUint(text)
	if err != nil {
		return nil, fmt.Errorf("invalid value %q", text)
	}
	if w := width(ranges); value.BitLen() > w {
		return nil, fmt.Errorf("value %s does not fit in %d bits", text, w)
	}
	return &Spec{ID: id, Ranges: ranges, Value: value}, nil
}

// ParseRanges parses a comma separated list of bit ranges, as "1.0-2.3" or
// "1.0-1.3,2.4-2.7".
func ParseRanges(s string) ([]Range, error) {
	ranges, err := parseRanges(s)
	if err != nil {
		return nil, &EncodingError{Spec: s, Err: err}
	}
	return ranges, nil
}

func parseRanges(s string) ([]Range, error) {
	var ranges []Range
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, errors.New("empty bit range")
		}
		var r Range
		var err error
		if k := strings.IndexByte(part, '-'); k >= 0 {
			r.Start, err = parseBit(part[:k])
			if err == nil {
				r.End, err = parseBit(part[k+1:])
			}
		} else {
			r.Start, err = parseBit(part)
			r.End = r.Start
		}
		if err != nil {
			return nil, err
		}
		if r.End.offset() < r.Start.offset() {
			return nil, fmt.Errorf("bit range %s ends before it starts", part)
		}
		ranges = append(ranges, r)
	}
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.offset() < sorted[j].Start.offset()
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Start.offset() <= sorted[i-1].End.offset() {
			return nil, fmt.Errorf("bit ranges %s and %s overlap", sorted[i-1], sorted[i])
		}
	}
	return ranges, nil
}

// parseBit parses a bit position in the form "byte.index".
func parseBit(s string) (Bit, error) {
	s = strings.TrimSpace(s)
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return Bit{}, fmt.Errorf("invalid bit position %q", s)
	}
	b, err1 := strconv.Atoi(s[:i])
	n, err2 := strconv.Atoi(s[i+1:])
	if err1 != nil || err2 != nil {
		return Bit{}, fmt.Errorf("invalid bit position %q", s)
	}
	if b < 1 || b > MaxBytes {
		return Bit{}, fmt.Errorf("byte index %d out of range [1, %d]", b, MaxBytes)
	}
	if n < 0 || n > 7 {
		return Bit{}, fmt.Errorf("bit index %d out of range [0, 7]", n)
	}
	return Bit{Byte: b, Index: n}, nil
}

// parseUint parses an unsigned integer in hexadecimal, with prefix "0x" or
// "0X", or in decimal.
func parseUint(s string) (*big.Int, error) {
	base := 10
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
		base = 16
	}
	if s == "" || s[0] == '+' || s[0] == '-' || s[0] == '_' {
		return nil, errors.New("invalid unsigned integer")
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, errors.New("invalid unsigned integer")
	}
	return n, nil
}

func width(ranges []Range) int {
	w := 0
	for _, r := range ranges {
		w += r.Width()
	}
	return w
}

// Encode encodes the signal specification spec and returns the frame data
// as uppercase hexadecimal digits, without prefix and spaces, starting from
// the first byte. The data is long enough to hold the highest byte
// referenced by the ranges.
//
// The returned error, if not nil, has type *EncodingError.
func Encode(spec string) (string, error) {
	s, err := Parse(spec)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(s.Bytes())), nil
}

// Message encodes the signal specification spec and returns the Tester
// command that sends the frame, for example
//
//	tcans 261,3A 02 00 00 00 00 00 00
//
// The frame has ClassicBytes bytes or more, if the ranges reference bytes
// beyond the eighth. The returned error, if not nil, has type
// *EncodingError.
func Message(spec string) (string, error) {
	s, err := Parse(spec)
	if err != nil {
		return "", err
	}
	n := s.Len()
	if n < ClassicBytes {
		n = ClassicBytes
	}
	data := make([]byte, n)
	s.put(data)
	id := s.ID
	if len(id) > 2 && id[0] == '0' && (id[1] == 'x' || id[1] == 'X') {
		id = id[2:]
	}
	return "tcans " + id + "," + FormatData(data), nil
}

// FormatData formats data as uppercase hexadecimal bytes separated by
// spaces, as "3A 02 00".
func FormatData(data []byte) string {
	var b strings.Builder
	for i, c := range data {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02X", c)
	}
	return b.String()
}

// ParseData parses frame data written as hexadecimal bytes, optionally
// separated by spaces, as "3A 02 00" or "3A0200".
func ParseData(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid frame data: %s", err)
	}
	return data, nil
}

// Decode decodes the value placed in the ranges of data. It is the inverse
// of Spec.Bytes.
func Decode(data []byte, ranges []Range) (*big.Int, error) {
	value := new(big.Int)
	for _, r := range ranges {
		if r.End.Byte > len(data) {
			return nil, fmt.Errorf("bit %s is beyond the %d bytes of data", r.End, len(data))
		}
		value.Lsh(value, uint(r.Width()))
		for i := 0; i < r.Width(); i++ {
			off := r.Start.offset() + i
			if data[off/8]&(1<<(off%8)) != 0 {
				value.SetBit(value, i, 1)
			}
		}
	}
	return value, nil
}
