// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tester_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	tester "github.com/Linhanmic/tester-template-engine"
	"github.com/Linhanmic/tester-template-engine/native"
)

func ExampleEngine_Build() {
	src := `ttitle {{ title }}
{% for v in values %}{{ can_message('0x261,1.0-2.1=' + str(v)) }}
{% endfor %}ttitle-end
`
	e := tester.New(nil)
	tmpl, err := e.Build("speed.tpl", src)
	if err != nil {
		log.Fatal(err)
	}
	vars := map[string]interface{}{
		"title":  "speed",
		"values": []int{0x23A, 0x10},
	}
	err = tmpl.Render(context.Background(), os.Stdout, vars)
	if err != nil {
		log.Fatal(err)
	}
	// Output:
	// ttitle speed
	// tcans 261,3A 02 00 00 00 00 00 00
	// tcans 261,10 00 00 00 00 00 00 00
	// ttitle-end
}

func ExampleEngine_RegisterFunction() {
	e := tester.New(nil)
	upper := func(args ...interface{}) (interface{}, error) {
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("expecting a string")
		}
		return strings.ToUpper(s), nil
	}
	if err := e.RegisterFunction("upper", native.Function(upper)); err != nil {
		log.Fatal(err)
	}
	tmpl, err := e.Build("upper.tpl", "ttitle {{ upper(name) }}\n")
	if err != nil {
		log.Fatal(err)
	}
	err = tmpl.Render(context.Background(), os.Stdout, map[string]interface{}{"name": "brake"})
	if err != nil {
		log.Fatal(err)
	}
	// Output:
	// ttitle BRAKE
}

func ExampleTemplate_Generate() {
	tmpl, err := tester.New(nil).Build("steps.tpl", "ttitle {{ name }}\ntcans {{ id }},{{ data }}\n")
	if err != nil {
		log.Fatal(err)
	}
	script, err := tmpl.Generate(context.Background(), map[string]interface{}{
		"name": "door",
		"id":   "0x3A0",
		"data": "01 GG",
	})
	if err != nil {
		log.Fatal(err)
	}
	for _, w := range script.Warnings {
		fmt.Println(w)
	}
	// Output:
	// line 2: tcans: argument 2: invalid payload byte "GG"
	// line 1: ttitle: ttitle is not closed
}

func ExampleTemplate_Variables() {
	tmpl, err := tester.New(nil).Build("vars.tpl", "{% for s in signals %}{{ hex(s.id) }} {{ prefix }}{% endfor %}")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(tmpl.Variables())
	// Output:
	// [prefix signals]
}
