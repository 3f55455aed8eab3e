// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package native provides the types of the values that templates operate on
// and the types to implement native functions callable from templates.
//
// A template value is always one of:
//
//	int
//	float64
//	string
//	bool
//	List
//	*Record
//	Function
//	EnvFunction
//
// Use Normalize to convert Go values to template values.
package native

import (
	"context"
)

// Declarations contains variable and function declarations. Keys are names
// and values are the declared values. Values are normalized when they are
// used.
type Declarations map[string]interface{}

// Env represents a rendering environment.
//
// Each rendering creates an Env value. This value is passed as the first
// argument to calls to EnvFunction functions.
type Env interface {

	// Context returns the context of the rendering.
	// It is the context passed to the render method.
	Context() context.Context

	// Path returns the path of the rendered template.
	Path() string
}

type (

	// Function is a function callable from templates. It receives the
	// already evaluated arguments and returns a template value.
	Function func(args ...interface{}) (interface{}, error)

	// EnvFunction is like Function but it also receives the rendering
	// environment.
	EnvFunction func(env Env, args ...interface{}) (interface{}, error)
)

// List is a list value.
type List []interface{}

// Record is an ordered collection of fields. Fields can be accessed both by
// position and by name. A CSV row is a Record with a field for each column.
//
// The zero Record is empty and ready to use.
type Record struct {
	keys   []string
	values []interface{}
	index  map[string]int
}

// NewRecord returns a new record with the given keys and values. keys and
// values must have the same length. If a key is repeated, the field can be
// accessed by name only at its first position.
func NewRecord(keys []string, values []interface{}) *Record {
	if len(keys) != len(values) {
		panic("native: keys and values have different lengths")
	}
	r := &Record{
		keys:   make([]string, len(keys)),
		values: make([]interface{}, len(values)),
		index:  make(map[string]int, len(keys)),
	}
	copy(r.keys, keys)
	copy(r.values, values)
	for i, k := range keys {
		if _, ok := r.index[k]; !ok {
			r.index[k] = i
		}
	}
	return r
}

// Len returns the number of fields of r.
func (r *Record) Len() int {
	return len(r.keys)
}

// Keys returns the field names of r in order.
func (r *Record) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// At returns the value of the field at position i.
// It panics if i is out of range.
func (r *Record) At(i int) interface{} {
	return r.values[i]
}

// Get returns the value of the field with name key and true.
// If there is no such field, it returns nil and false.
func (r *Record) Get(key string) (interface{}, bool) {
	i, ok := r.index[key]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// Set sets the value of the field with name key. If the field does not
// exist, it is added at the end.
func (r *Record) Set(key string, value interface{}) {
	if i, ok := r.index[key]; ok {
		r.values[i] = value
		return
	}
	if r.index == nil {
		r.index = map[string]int{}
	}
	r.index[key] = len(r.keys)
	r.keys = append(r.keys, key)
	r.values = append(r.values, value)
}

// Values returns the values of the fields of r in order.
func (r *Record) Values() List {
	values := make(List, len(r.values))
	copy(values, r.values)
	return values
}
