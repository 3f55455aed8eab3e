// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package validator checks the lines of a Tester script against the command
// grammar of the Tester language.
//
// Validation never fails, it returns warnings that are advisory only.
package validator

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// MaxPayload is the maximum number of bytes of a payload.
const MaxPayload = 64

// maxCANID is the maximum value of an extended CAN identifier.
const maxCANID = 0x1FFFFFFF

// Warning is a validation warning.
type Warning struct {
	Line    int    // line starting from 1.
	Command string // command, empty if the warning does not refer to a command.
	Message string // message.
}

// String returns w in the form "line 3: tcans: message".
func (w Warning) String() string {
	if w.Command == "" {
		return "line " + strconv.Itoa(w.Line) + ": " + w.Message
	}
	return "line " + strconv.Itoa(w.Line) + ": " + w.Command + ": " + w.Message
}

// Validator validates scripts.
type Validator struct {
	commands map[string]Command
	version  string
}

// New returns a validator for the commands available in the given version
// of the Tester language. If version is empty, all commands are available.
// version and the Since field of the commands, if not empty, must be valid
// semantic versions, as "v1.2.0".
func New(commands []Command, version string) (*Validator, error) {
	if version != "" && !semver.IsValid(version) {
		return nil, fmt.Errorf("validator: invalid version %q", version)
	}
	v := &Validator{commands: make(map[string]Command, len(commands)), version: version}
	for _, c := range commands {
		if err := checkCommand(c); err != nil {
			return nil, fmt.Errorf("validator: %w", err)
		}
		if c.Since != "" && !semver.IsValid(c.Since) {
			return nil, fmt.Errorf("validator: %s: invalid version %q", c.Name, c.Since)
		}
		if _, ok := v.commands[c.Name]; ok {
			return nil, fmt.Errorf("validator: command %s is repeated", c.Name)
		}
		v.commands[c.Name] = c
	}
	return v, nil
}

var defaultValidator, _ = New(DefaultCommands, "")

// Default returns the validator for all the default commands.
func Default() *Validator {
	return defaultValidator
}

// Validate validates text with the default validator.
func Validate(text string) []Warning {
	return defaultValidator.Validate(text)
}

// Validate validates text and returns the warnings. A ttitle not closed is
// reported last.
func (v *Validator) Validate(text string) []Warning {

	var warnings []Warning
	warn := func(line int, cmd, format string, a ...interface{}) {
		warnings = append(warnings, Warning{Line: line, Command: cmd, Message: fmt.Sprintf(format, a...)})
	}

	title := 0 // line of the open title, 0 if no title is open.

	for i, line := range strings.Split(text, "\n") {

		n := i + 1
		line = strings.TrimSpace(line)
		if line == "" || isComment(line) {
			continue
		}

		name, rest := line, ""
		if j := strings.IndexAny(line, " \t"); j >= 0 {
			name, rest = line[:j], strings.TrimSpace(line[j+1:])
		}

		c, ok := v.commands[name]
		if !ok {
			warn(n, name, "unknown command")
			continue
		}
		if v.version != "" && c.Since != "" && semver.Compare(c.Since, v.version) > 0 {
			warn(n, name, "command requires version %s", c.Since)
			continue
		}

		switch name {
		case "ttitle":
			if title > 0 {
				warn(n, name, "nested ttitle, previous ttitle at line %d is not closed", title)
			}
			title = n
		case "ttitle-end":
			if title == 0 {
				warn(n, name, "ttitle-end without a matching ttitle")
			}
			title = 0
		}

		var args []string
		if rest != "" {
			args = strings.Split(rest, ",")
			for j := range args {
				args[j] = strings.TrimSpace(args[j])
			}
		}
		switch {
		case len(args) < c.MinArgs:
			warn(n, name, "too few arguments, expecting %s, got %d", argCount(c), len(args))
			continue
		case c.MaxArgs != Unlimited && len(args) > c.MaxArgs:
			warn(n, name, "too many arguments, expecting %s, got %d", argCount(c), len(args))
			continue
		}

		for j, arg := range args {
			if msg := checkArg(c.kind(j), arg); msg != "" {
				warn(n, name, "argument %d: %s", j+1, msg)
			}
		}

	}

	if title > 0 {
		warn(title, "ttitle", "ttitle is not closed")
	}

	return warnings
}

// isComment reports whether line is a comment line.
func isComment(line string) bool {
	return strings.HasPrefix(line, "//") || line[0] == '#' || line[0] == ';'
}

// argCount returns the number of arguments expected by c, as "2 to 4".
func argCount(c Command) string {
	switch {
	case c.MaxArgs == Unlimited:
		return "at least " + strconv.Itoa(c.MinArgs)
	case c.MinArgs == c.MaxArgs:
		return strconv.Itoa(c.MinArgs)
	}
	return strconv.Itoa(c.MinArgs) + " to " + strconv.Itoa(c.MaxArgs)
}

// checkArg checks an argument of the given kind. It returns a message
// describing the problem or the empty string.
func checkArg(kind, arg string) string {
	switch kind {
	case ArgID:
		s := trimHexPrefix(arg)
		id, err := strconv.ParseUint(s, 16, 32)
		if s == "" || err != nil || id > maxCANID {
			return fmt.Sprintf("invalid CAN identifier %q", arg)
		}
	case ArgHex:
		s := trimHexPrefix(arg)
		if _, err := strconv.ParseUint(s, 16, 64); s == "" || err != nil {
			return fmt.Sprintf("invalid hexadecimal number %q", arg)
		}
	case ArgInt:
		if _, err := strconv.ParseUint(arg, 10, 64); err != nil {
			return fmt.Sprintf("invalid number %q", arg)
		}
	case ArgPayload:
		bytes := strings.Fields(arg)
		if len(bytes) == 0 {
			return "empty payload"
		}
		for _, b := range bytes {
			if len(b) != 2 || !isHex(b[0]) || !isHex(b[1]) {
				return fmt.Sprintf("invalid payload byte %q", b)
			}
		}
		if len(bytes) > MaxPayload {
			return fmt.Sprintf("payload has %d bytes, at most %d are allowed", len(bytes), MaxPayload)
		}
	}
	return ""
}

func trimHexPrefix(s string) string {
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
