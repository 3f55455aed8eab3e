// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tester

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/Linhanmic/tester-template-engine/native"
	"github.com/Linhanmic/tester-template-engine/signal"
	"github.com/Linhanmic/tester-template-engine/validator"
)

func TestBuildAndRender(t *testing.T) {
	e := New(nil)
	src := "ttitle {{ name }}\n{% for v in values %}{{ can_message('0x261,1.0-2.1=' + str(v)) }}\n{% endfor %}ttitle-end\n"
	tmpl, err := e.Build("steps.tpl", src)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if tmpl.Name() != "steps.tpl" {
		t.Fatalf("expecting name %q, got %q", "steps.tpl", tmpl.Name())
	}
	var b bytes.Buffer
	err = tmpl.Render(context.Background(), &b, map[string]interface{}{
		"name":   "speed",
		"values": []int{0x23A, 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	expected := "ttitle speed\n" +
		"tcans 261,3A 02 00 00 00 00 00 00\n" +
		"tcans 261,01 00 00 00 00 00 00 00\n" +
		"ttitle-end\n"
	if diff := cmp.Diff(expected, b.String()); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
	if got, ok := e.Template("steps.tpl"); !ok || got != tmpl {
		t.Fatalf("expecting the built template, got %v, %t", got, ok)
	}
	if _, ok := e.Template("missing.tpl"); ok {
		t.Fatal("expecting no template")
	}
}

func TestBuildSyntaxError(t *testing.T) {
	e := New(nil)
	_, err := e.Build("a.tpl", "line\n{% include 'b.tpl' %}")
	if err == nil {
		t.Fatal("expecting error, got no error")
	}
	var se *TemplateSyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expecting *TemplateSyntaxError, got %T", err)
	}
	if se.Path() != "a.tpl" {
		t.Errorf("expecting path %q, got %q", "a.tpl", se.Path())
	}
	if se.Position().Line != 2 {
		t.Errorf("expecting line 2, got %d", se.Position().Line)
	}
	if se.Message() != "template inclusion is not supported" {
		t.Errorf("unexpected message %q", se.Message())
	}
	if _, ok := e.Template("a.tpl"); ok {
		t.Error("expecting the template to not be stored")
	}
	_, err = e.Build("b.tpl", "{% if x %}a")
	if !errors.As(err, &se) {
		t.Fatalf("expecting *TemplateSyntaxError, got %T", err)
	}
	if !strings.HasPrefix(se.Message(), "unexpected EOF") {
		t.Errorf("unexpected message %q", se.Message())
	}
}

func TestBuildFile(t *testing.T) {
	fsys := fstest.MapFS{
		"scripts/main.tpl": {Data: []byte("{{ 1 + 2 }}")},
	}
	e := New(nil)
	tmpl, err := e.BuildFile(fsys, "scripts/main.tpl")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	var b bytes.Buffer
	if err := tmpl.Render(nil, &b, nil); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if b.String() != "3" {
		t.Fatalf("expecting %q, got %q", "3", b.String())
	}
	_, err = e.BuildFile(fsys, "missing.tpl")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expecting fs.ErrNotExist, got %v", err)
	}
}

func TestRegisterFunction(t *testing.T) {
	e := New(nil)
	double := func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, errors.New("expecting 1 argument")
		}
		n, ok := args[0].(int)
		if !ok {
			return nil, errors.New("expecting an int")
		}
		return 2 * n, nil
	}
	if err := e.RegisterFunction("double", double); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	path := func(env native.Env, args ...interface{}) (interface{}, error) {
		return env.Path(), nil
	}
	if err := e.RegisterFunction("path", native.EnvFunction(path)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	tmpl, err := e.Build("f.tpl", "{{ double(21) }} {{ path() }}")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	var b bytes.Buffer
	if err := tmpl.Render(context.Background(), &b, nil); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if b.String() != "42 f.tpl" {
		t.Fatalf("expecting %q, got %q", "42 f.tpl", b.String())
	}
	names := e.Functions()
	for _, name := range []string{"double", "encode_signal", "path"} {
		found := false
		for _, n := range names {
			if n == name {
				found = true
			}
		}
		if !found {
			t.Errorf("expecting function %s in %v", name, names)
		}
	}
}

func TestRegisterFunctionErrors(t *testing.T) {
	f := func(args ...interface{}) (interface{}, error) { return nil, nil }
	tests := []struct {
		name string
		f    interface{}
		err  string
	}{
		{"", f, `tester: invalid function name ""`},
		{"1a", f, `tester: invalid function name "1a"`},
		{"a-b", f, `tester: invalid function name "a-b"`},
		{"for", f, `tester: invalid function name "for"`},
		{"not", f, `tester: invalid function name "not"`},
		{"f", 5, "tester: cannot register f: type int is not a function type"},
		{"f", func() {}, "tester: cannot register f: type func() is not a function type"},
	}
	e := New(nil)
	for _, test := range tests {
		err := e.RegisterFunction(test.name, test.f)
		if err == nil {
			t.Errorf("name %q: expecting error %q, got no error", test.name, test.err)
			continue
		}
		if err.Error() != test.err {
			t.Errorf("name %q: expecting error %q, got %q", test.name, test.err, err)
		}
	}
}

func TestFunctionsSnapshot(t *testing.T) {
	e := New(nil)
	tmpl, err := e.Build("s.tpl", "{{ hex(10) }}")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	upper := func(args ...interface{}) (interface{}, error) { return "replaced", nil }
	if err := e.RegisterFunction("hex", upper); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	var b bytes.Buffer
	if err := tmpl.Render(context.Background(), &b, nil); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if b.String() != "A" {
		t.Fatalf("expecting %q, got %q", "A", b.String())
	}
	tmpl, err = e.Build("s.tpl", "{{ hex(10) }}")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	b.Reset()
	if err := tmpl.Render(context.Background(), &b, nil); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if b.String() != "replaced" {
		t.Fatalf("expecting %q, got %q", "replaced", b.String())
	}
}

func TestRenderErrors(t *testing.T) {
	e := New(nil)
	tmpl, err := e.Build("e.tpl", "before\n{{ encode_signal('0x1,1.0-1.7=0x100') }}")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	var b bytes.Buffer
	err = tmpl.Render(context.Background(), &b, nil)
	var ee *ExpressionError
	if !errors.As(err, &ee) {
		t.Fatalf("expecting *ExpressionError, got %T (%v)", err, err)
	}
	if b.Len() > 0 {
		t.Errorf("expecting no output, got %q", b.String())
	}
	if ee.Path() != "e.tpl" || ee.Position().Line != 2 {
		t.Errorf("unexpected path and position %s:%s", ee.Path(), ee.Position())
	}
	var se *signal.EncodingError
	if !errors.As(err, &se) {
		t.Fatalf("expecting *signal.EncodingError in the chain of %q", err)
	}
	if se.Spec != "0x1,1.0-1.7=0x100" {
		t.Errorf("unexpected signal %q", se.Spec)
	}

	tmpl, err = e.Build("r.tpl", "{% for x in 5 %}{% endfor %}")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	err = tmpl.Render(context.Background(), &b, nil)
	var re *RenderError
	if !errors.As(err, &re) {
		t.Fatalf("expecting *RenderError, got %T (%v)", err, err)
	}
	if re.Message() != "cannot range over 5 (type int)" {
		t.Errorf("unexpected message %q", re.Message())
	}
	if re.Error() != "r.tpl:1:1: cannot range over 5 (type int)" {
		t.Errorf("unexpected error %q", re.Error())
	}
}

func TestRenderInvalidVariable(t *testing.T) {
	tmpl, err := New(nil).Build("v.tpl", "{{ c }}")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	err = tmpl.Render(context.Background(), &bytes.Buffer{}, map[string]interface{}{"c": make(chan int)})
	if err == nil || !strings.HasPrefix(err.Error(), `tester: variable "c": `) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestNestedRender(t *testing.T) {
	e := New(nil)
	inner, err := e.Build("inner.tpl", "inner")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	var self *Template
	funcs := map[string]interface{}{
		// passes on the context of the rendering.
		"withEnv": func(env native.Env, args ...interface{}) (interface{}, error) {
			var b bytes.Buffer
			if err := inner.Render(env.Context(), &b, nil); err != nil {
				return nil, err
			}
			return b.String(), nil
		},
		// uses a new context.
		"plain": func(args ...interface{}) (interface{}, error) {
			var b bytes.Buffer
			if err := inner.Render(context.Background(), &b, nil); err != nil {
				return nil, err
			}
			return b.String(), nil
		},
		// renders the template that calls it.
		"recursive": func(args ...interface{}) (interface{}, error) {
			script, err := self.Generate(context.Background(), nil)
			if err != nil {
				return nil, err
			}
			return script.Text, nil
		},
	}
	for name, f := range funcs {
		if err := e.RegisterFunction(name, f); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
	}
	self, err = e.Build("self.tpl", "{{ recursive() }}")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	for name := range funcs {
		outer := self
		if name != "recursive" {
			outer, err = e.Build(name+".tpl", "{{ "+name+"() }}")
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
		}
		err = outer.Render(context.Background(), &bytes.Buffer{}, nil)
		if !errors.Is(err, ErrNestedRender) {
			t.Errorf("%s: expecting ErrNestedRender, got %v", name, err)
		}
	}
	// a rendering after a failed nested one is not affected.
	var b bytes.Buffer
	if err := inner.Render(context.Background(), &b, nil); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if b.String() != "inner" {
		t.Fatalf("unexpected %q, expecting %q", b.String(), "inner")
	}
}

func TestRenderCanceled(t *testing.T) {
	tmpl, err := New(nil).Build("c.tpl", "{% for i in range(1000) %}{{ i }}{% endfor %}")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var b bytes.Buffer
	err = tmpl.Render(ctx, &b, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expecting context.Canceled, got %v", err)
	}
	if b.Len() > 0 {
		t.Fatalf("expecting no output, got %q", b.String())
	}
}

func TestConcurrentRender(t *testing.T) {
	tmpl, err := New(nil).Build("p.tpl", "{% for i in range(n) %}{{ hex(i, 2) }} {% endfor %}")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	var wg sync.WaitGroup
	errs := make([]error, 8)
	outs := make([]string, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var b bytes.Buffer
			errs[i] = tmpl.Render(context.Background(), &b, map[string]interface{}{"n": i})
			outs[i] = b.String()
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("rendering %d: unexpected error: %s", i, err)
		}
		if got := strings.Count(outs[i], " "); got != i {
			t.Errorf("rendering %d: expecting %d values, got %d", i, i, got)
		}
	}
}

func TestVariables(t *testing.T) {
	tests := []struct {
		src  string
		vars []string
	}{
		{"text", []string{}},
		{"{{ a }}{{ b.c }}{{ d[e] }}", []string{"a", "b", "d", "e"}},
		{"{% for x in xs %}{{ x }}{{ y }}{% endfor %}{{ x }}", []string{"x", "xs", "y"}},
		{"{% for k, v in r %}{{ k }}={{ v }}{% endfor %}", []string{"r"}},
		{"{{ hex(n, width) }}{{ f(1) }}", []string{"f", "n", "width"}},
		{"{% if a %}{{ b }}{% elif c %}{% else %}{{ len(d) }}{% endif %}", []string{"a", "b", "c", "d"}},
		{"{{ x if cond else [y, z] }}", []string{"cond", "x", "y", "z"}},
		{"{% for hex in xs %}{{ hex(1) }}{% endfor %}", []string{"xs"}},
	}
	e := New(nil)
	for _, test := range tests {
		tmpl, err := e.Build("v.tpl", test.src)
		if err != nil {
			t.Fatalf("source %q: unexpected error: %s", test.src, err)
		}
		if diff := cmp.Diff(test.vars, tmpl.Variables()); diff != "" {
			t.Errorf("source %q: unexpected variables (-want +got):\n%s", test.src, diff)
		}
	}
}

func TestGenerate(t *testing.T) {
	v, err := validator.New(validator.DefaultCommands, "v1.0.0")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	e := New(&Options{Validator: v})
	tmpl, err := e.Build("g.tpl", "ttitle {{ t }}\ntdelay {{ ms }}\ntcans 0x{{ hex(id) }},{{ data }}\n")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	script, err := tmpl.Generate(context.Background(), map[string]interface{}{
		"t":    "start",
		"ms":   100,
		"id":   0x261,
		"data": "3A 02",
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if script.Text != "ttitle start\ntdelay 100\ntcans 0x261,3A 02\n" {
		t.Fatalf("unexpected text %q", script.Text)
	}
	expected := []validator.Warning{
		{Line: 2, Command: "tdelay", Message: "command requires version v1.1.0"},
		{Line: 1, Command: "ttitle", Message: "ttitle is not closed"},
	}
	if diff := cmp.Diff(expected, script.Warnings); diff != "" {
		t.Fatalf("unexpected warnings (-want +got):\n%s", diff)
	}
}

func TestScriptWriteFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "out", "steps.txt")
	script := &Script{Text: "ttitle a\nttitle-end\n"}
	if err := script.WriteFile(name); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if string(data) != script.Text {
		t.Fatalf("expecting %q, got %q", script.Text, data)
	}
}
