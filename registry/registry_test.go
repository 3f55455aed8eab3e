// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package registry

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/Linhanmic/tester-template-engine/native"
)

func TestSetGet(t *testing.T) {
	r := New(nil)
	require.NoError(t, r.Set("n", int64(5)))
	require.NoError(t, r.Set("list", []string{"a", "b"}))
	require.NoError(t, r.Set("m", map[string]int{"b": 2, "a": 1}))

	v, ok := r.Get("n")
	assert.True(t, ok)
	assert.Equal(t, 5, v)

	v, _ = r.Get("list")
	assert.Equal(t, native.List{"a", "b"}, v)

	v, _ = r.Get("m")
	rec, ok := v.(*native.Record)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, rec.Keys())

	_, ok = r.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"list", "m", "n"}, r.Names())

	r.Delete("m")
	assert.Equal(t, []string{"list", "n"}, r.Names())

	assert.Error(t, r.Set("", 1))
	assert.Error(t, r.Set("c", make(chan int)))
}

func TestSnapshot(t *testing.T) {
	r := New(nil)
	require.NoError(t, r.Set("a", 1))
	s := r.Snapshot()
	require.NoError(t, r.Set("b", 2))
	assert.Equal(t, map[string]interface{}{"a": 1}, s)
	assert.Len(t, r.Snapshot(), 2)
}

func TestConcurrentAccess(t *testing.T) {
	r := New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = r.Set("v", j)
				r.Get("v")
				r.Snapshot()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, []string{"v"}, r.Names())
}

func field(t *testing.T, v interface{}, key string) interface{} {
	t.Helper()
	rec, ok := v.(*native.Record)
	require.True(t, ok, "expecting *native.Record, got %T", v)
	f, ok := rec.Get(key)
	require.True(t, ok, "missing field %q", key)
	return f
}

func TestDecodeCSV(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts *CSVOptions
	}{
		{"comma", "name,value\nspeed,120\nrpm,3000\n", nil},
		{"semicolon", "name;value\nspeed;120\nrpm;3000\n", nil},
		{"spaces", "name, value\nspeed, 120\nrpm, 3000", nil},
		{"bom", "\xef\xbb\xbfname,value\nspeed,120\nrpm,3000\n", nil},
		{"explicit", "name|value\nspeed|120\nrpm|3000\n", &CSVOptions{Comma: '|'}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rows, err := DecodeCSV(strings.NewReader(test.src), test.opts)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, "speed", field(t, rows[0], "name"))
			assert.Equal(t, "120", field(t, rows[0], "value"))
			assert.Equal(t, "rpm", rows[1].(*native.Record).At(0))
			assert.Equal(t, "3000", rows[1].(*native.Record).At(1))
		})
	}
}

func TestDecodeCSVSemicolonInFirstLineOnly(t *testing.T) {
	rows, err := DecodeCSV(strings.NewReader("a,b\nx;y,z\n"), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "x;y", field(t, rows[0], "a"))
}

func TestDecodeCSVEmpty(t *testing.T) {
	rows, err := DecodeCSV(strings.NewReader(""), nil)
	require.NoError(t, err)
	assert.Equal(t, native.List{}, rows)

	rows, err = DecodeCSV(strings.NewReader("a,b\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, native.List{}, rows)
}

func TestDecodeCSVErrors(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader("a,b\n1,2,3\n"), nil)
	assert.Error(t, err)
	_, err = DecodeCSV(strings.NewReader("a\n1\n"), &CSVOptions{Encoding: "no-such-encoding"})
	assert.EqualError(t, err, `unknown encoding "no-such-encoding"`)
}

func TestDecodeCSVEncoding(t *testing.T) {
	src, err := simplifiedchinese.GBK.NewEncoder().String("信号,值\n车速,120\n")
	require.NoError(t, err)
	rows, err := DecodeCSV(strings.NewReader(src), &CSVOptions{Encoding: "gbk"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "车速", field(t, rows[0], "信号"))
	assert.Equal(t, "120", field(t, rows[0], "值"))
}

func TestDecodeJSON(t *testing.T) {
	v, err := DecodeJSON(strings.NewReader(`{"z": 1, "a": [1.5, "x", true, null], "m": {"k": 2}}`))
	require.NoError(t, err)
	rec := v.(*native.Record)
	assert.Equal(t, []string{"z", "a", "m"}, rec.Keys())
	assert.Equal(t, 1, field(t, v, "z"))
	assert.Equal(t, native.List{1.5, "x", true, ""}, field(t, v, "a"))
	assert.Equal(t, 2, field(t, field(t, v, "m"), "k"))

	v, err = DecodeJSON(strings.NewReader(`[1, 2]`))
	require.NoError(t, err)
	assert.Equal(t, native.List{1, 2}, v)

	_, err = DecodeJSON(strings.NewReader(`[1, 2`))
	assert.Error(t, err)
	_, err = DecodeJSON(strings.NewReader(`1 2`))
	assert.Error(t, err)
}

func TestDecodeYAML(t *testing.T) {
	src := `
z: 1
a:
  - 1.5
  - x
  - true
  - null
  - 0x1F
m: &m
  k: 2
n: *m
`
	v, err := DecodeYAML(strings.NewReader(src))
	require.NoError(t, err)
	rec := v.(*native.Record)
	assert.Equal(t, []string{"z", "a", "m", "n"}, rec.Keys())
	assert.Equal(t, 1, field(t, v, "z"))
	assert.Equal(t, native.List{1.5, "x", true, "", 31}, field(t, v, "a"))
	assert.Equal(t, 2, field(t, field(t, v, "n"), "k"))

	v, err = DecodeYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, v.(*native.Record).Len())

	_, err = DecodeYAML(strings.NewReader("a: [1"))
	assert.Error(t, err)
}

func TestDecodeHCL(t *testing.T) {
	src := `
id    = "0x261"
count = 3
ratio = 0.5
on    = true
rows  = [{ name = "speed", value = 120 }, { name = "rpm", value = 3000 }]
`
	v, err := DecodeHCL(strings.NewReader(src), "signals.hcl")
	require.NoError(t, err)
	rec := v.(*native.Record)
	assert.Equal(t, []string{"id", "count", "ratio", "on", "rows"}, rec.Keys())
	assert.Equal(t, "0x261", field(t, v, "id"))
	assert.Equal(t, 3, field(t, v, "count"))
	assert.Equal(t, 0.5, field(t, v, "ratio"))
	assert.Equal(t, true, field(t, v, "on"))
	rows := field(t, v, "rows").(native.List)
	require.Len(t, rows, 2)
	assert.Equal(t, "rpm", field(t, rows[1], "name"))
	assert.Equal(t, 3000, field(t, rows[1], "value"))

	_, err = DecodeHCL(strings.NewReader("a = "), "bad.hcl")
	assert.Error(t, err)
	_, err = DecodeHCL(strings.NewReader("block {\n}\n"), "block.hcl")
	assert.Error(t, err)
	_, err = DecodeHCL(strings.NewReader("a = b\n"), "var.hcl")
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "signals.csv")
	require.NoError(t, os.WriteFile(name, []byte("name;value\nspeed;120\n"), 0o644))

	r := New(nil)
	require.NoError(t, r.LoadFile(name))
	v, ok := r.Get("signals")
	require.True(t, ok)
	rows := v.(native.List)
	require.Len(t, rows, 1)
	assert.Equal(t, "120", field(t, rows[0], "value"))

	err := r.LoadFile(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	err = r.LoadFile(filepath.Join(dir, "data.txt"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"data/config.yaml": {Data: []byte("id: 0x261\n")},
		"data/rows.json":   {Data: []byte(`[{"a": 1}]`)},
		"data/bad.json":    {Data: []byte(`{`)},
	}
	r := New(nil)
	require.NoError(t, r.LoadFS(fsys, "data/config.yaml"))
	require.NoError(t, r.LoadFS(fsys, "data/rows.json"))
	assert.Equal(t, []string{"config", "rows"}, r.Names())
	v, _ := r.Get("config")
	assert.Equal(t, 0x261, field(t, v, "id"))

	err := r.LoadFS(fsys, "data/bad.json")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "registry: data/bad.json: "), err.Error())
}

func TestLoad(t *testing.T) {
	r := New(&Options{CSV: &CSVOptions{Comma: '\t'}})
	require.NoError(t, r.Load("rows", FormatCSV, "rows.tsv", strings.NewReader("a\tb\n1\t2\n")))
	v, _ := r.Get("rows")
	assert.Equal(t, "2", field(t, v.(native.List)[0], "b"))

	err := r.Load("x", "xml", "x.xml", bytes.NewReader(nil))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestFormatOfAndVarName(t *testing.T) {
	assert.Equal(t, FormatCSV, FormatOf("a/b/Signals.CSV"))
	assert.Equal(t, FormatYAML, FormatOf("x.yml"))
	assert.Equal(t, FormatHCL, FormatOf("x.hcl"))
	assert.Equal(t, "", FormatOf("x"))
	assert.Equal(t, "Signals", VarName("a/b/Signals.CSV"))
	assert.Equal(t, "rows.v2", VarName("rows.v2.json"))
}
