// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package registry

import (
	"fmt"
	"io"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/Linhanmic/tester-template-engine/native"
)

// DecodeHCL decodes an HCL file made only of attributes, as
//
//	id   = "0x261"
//	rows = [{ name = "speed", value = 120 }]
//
// and returns a *native.Record with a field for each attribute, in source
// order. Expressions are evaluated without variables and functions. filename
// is used in the error messages.
func DecodeHCL(src io.Reader, filename string) (interface{}, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, diags
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	sorted := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		sorted = append(sorted, attr)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Range.Start.Byte < sorted[j].Range.Start.Byte
	})
	r := &native.Record{}
	for _, attr := range sorted {
		value, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		v, err := ctyValue(value)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", attr.Name, err)
		}
		r.Set(attr.Name, v)
	}
	return r, nil
}

// ctyValue returns the template value of v. Whole numbers that fit in an
// int become int values, other numbers float64 values. Object attributes
// are sorted by name.
func ctyValue(v cty.Value) (interface{}, error) {
	if v.IsNull() {
		return "", nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("unknown value")
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == 0 {
				return native.Normalize(i)
			}
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		list := native.List{}
		it := v.ElementIterator()
		for it.Next() {
			_, e := it.Element()
			n, err := ctyValue(e)
			if err != nil {
				return nil, err
			}
			list = append(list, n)
		}
		return list, nil
	case ty.IsObjectType() || ty.IsMapType():
		r := &native.Record{}
		it := v.ElementIterator()
		for it.Next() {
			k, e := it.Element()
			n, err := ctyValue(e)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k.AsString(), err)
			}
			r.Set(k.AsString(), n)
		}
		return r, nil
	}
	return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
}
