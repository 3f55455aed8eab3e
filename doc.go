// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tester implements a template engine that generates scripts for
// the Tester language, used to write CAN bus and diagnostic test cases.
//
// A template is text with statements and expressions:
//
//	ttitle {{ title }}
//	{% for name, value in signals %}
//	{# one frame for each signal #}
//	{{ can_message("0x261,1.0-2.1=" + str(value)) }}
//	{% endfor %}
//	ttitle-end
//
// Text outside of the delimiters is written as is. The statements are
//
//	{% for v in expr %} ... {% endfor %}
//	{% for a, b in expr %} ... {% endfor %}
//	{% if expr %} ... {% elif expr %} ... {% else %} ... {% endif %}
//
// and {{ expr }} shows the value of an expression. Templates cannot include
// other templates.
//
// Arithmetic follows Python: "/" always returns a float, "//" and "%" round
// towards negative infinity, and booleans are shown as True and False.
//
// Build a template with an Engine and render it with the variables, usually
// taken from a registry.Registry:
//
//	engine := tester.New(nil)
//	t, err := engine.Build("case.tpl", src)
//	if err != nil {
//		log.Fatal(err)
//	}
//	script, err := t.Generate(ctx, reg.Snapshot())
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, w := range script.Warnings {
//		log.Print(w)
//	}
//
// The built-in functions are len, range, str, int, float, enumerate, hex,
// encode_signal, decode_signal and can_message. Other functions can be
// registered with the RegisterFunction method of Engine.
package tester
