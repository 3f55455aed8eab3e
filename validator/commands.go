// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validator

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Argument kinds.
const (
	ArgText    = "text"    // any text.
	ArgID      = "id"      // CAN identifier in hexadecimal.
	ArgPayload = "payload" // hexadecimal bytes separated by spaces.
	ArgHex     = "hex"     // hexadecimal number.
	ArgInt     = "int"     // decimal number.
)

// Unlimited, as value of MaxArgs, means that a command has no maximum
// number of arguments.
const Unlimited = -1

// Command describes a command of the Tester language.
type Command struct {
	Name    string   `yaml:"name"`
	MinArgs int      `yaml:"min_args"`
	MaxArgs int      `yaml:"max_args"` // Unlimited if there is no maximum.
	Args    []string `yaml:"args,omitempty"`
	Since   string   `yaml:"since,omitempty"` // semantic version, as "v1.2.0".
}

// kind returns the kind of the argument at position i.
func (c Command) kind(i int) string {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return ArgText
}

// DefaultCommands contains the commands of the Tester language.
var DefaultCommands = []Command{
	{Name: "ttitle", MinArgs: 1, MaxArgs: Unlimited, Since: "v1.0.0"},
	{Name: "ttitle-end", MinArgs: 0, MaxArgs: 0, Since: "v1.0.0"},
	{Name: "tcans", MinArgs: 2, MaxArgs: 4, Args: []string{ArgID, ArgPayload, ArgInt, ArgInt}, Since: "v1.0.0"},
	{Name: "tcanr", MinArgs: 2, MaxArgs: 3, Args: []string{ArgID, ArgPayload, ArgInt}, Since: "v1.0.0"},
	{Name: "tdiagnose_rid", MinArgs: 1, MaxArgs: 3, Args: []string{ArgHex, ArgPayload, ArgPayload}, Since: "v1.0.0"},
	{Name: "tdelay", MinArgs: 1, MaxArgs: 1, Args: []string{ArgInt}, Since: "v1.1.0"},
}

// commandsFile is the YAML representation of a command table.
type commandsFile struct {
	Commands []Command `yaml:"commands"`
}

// LoadCommands reads a command table in YAML from r. The table has the form
//
//	commands:
//	  - name: tcans
//	    min_args: 2
//	    max_args: 4
//	    args: [id, payload, int, int]
//	    since: v1.0.0
func LoadCommands(r io.Reader) ([]Command, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var file commandsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("validator: empty command table")
		}
		return nil, fmt.Errorf("validator: %w", err)
	}
	for i, c := range file.Commands {
		if err := checkCommand(c); err != nil {
			return nil, fmt.Errorf("validator: command %d: %w", i+1, err)
		}
	}
	return file.Commands, nil
}

// checkCommand checks that c is well formed.
func checkCommand(c Command) error {
	if c.Name == "" {
		return fmt.Errorf("missing name")
	}
	if c.MinArgs < 0 {
		return fmt.Errorf("%s: negative min_args", c.Name)
	}
	if c.MaxArgs != Unlimited && c.MaxArgs < c.MinArgs {
		return fmt.Errorf("%s: max_args is less than min_args", c.Name)
	}
	for _, kind := range c.Args {
		switch kind {
		case ArgText, ArgID, ArgPayload, ArgHex, ArgInt:
		default:
			return fmt.Errorf("%s: unknown argument kind %q", c.Name, kind)
		}
	}
	return nil
}
