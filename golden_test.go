// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tester

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"

	"github.com/Linhanmic/tester-template-engine/native"
	"github.com/Linhanmic/tester-template-engine/registry"
)

// TestGolden renders the templates of the txtar archives in testdata. Each
// archive has a "template" file, an optional "vars.yaml" file and an
// "output" or an "error" file with the expected result.
func TestGolden(t *testing.T) {
	names, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	if len(names) == 0 {
		t.Fatal("no archives in testdata")
	}
	for _, name := range names {
		name := name
		t.Run(filepath.Base(name), func(t *testing.T) {
			arch, err := txtar.ParseFile(name)
			if err != nil {
				t.Fatal(err)
			}
			files := map[string]string{}
			for _, f := range arch.Files {
				files[f.Name] = string(f.Data)
			}
			vars := map[string]interface{}{}
			if src, ok := files["vars.yaml"]; ok {
				v, err := registry.DecodeYAML(strings.NewReader(src))
				if err != nil {
					t.Fatalf("cannot decode vars.yaml: %s", err)
				}
				r := v.(*native.Record)
				for i, key := range r.Keys() {
					vars[key] = r.At(i)
				}
			}
			path := strings.TrimSuffix(filepath.Base(name), ".txtar") + ".tpl"
			var b bytes.Buffer
			tmpl, err := New(nil).Build(path, files["template"])
			if err == nil {
				err = tmpl.Render(context.Background(), &b, vars)
			}
			if expected, ok := files["error"]; ok {
				if err == nil {
					t.Fatalf("expecting error %q, got no error", expected)
				}
				if got, want := err.Error(), strings.TrimSpace(expected); got != want {
					t.Fatalf("expecting error %q, got %q", want, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if diff := cmp.Diff(files["output"], b.String()); diff != "" {
				t.Fatalf("unexpected output (-want +got):\n%s", diff)
			}
		})
	}
}
