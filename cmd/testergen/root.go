// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Linhanmic/tester-template-engine/validator"
)

// app contains the state shared by the commands.
type app struct {
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger

	logLevel  string
	logFormat string
}

// newRootCmd returns the root command. The commands write their output to
// stdout and the warnings and the logs to stderr.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	cmd := &cobra.Command{
		Use:           "testergen",
		Short:         "Generate Tester scripts from templates",
		Long:          "Testergen generates Tester scripts for CAN bus testing from templates and data files.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch a.logFormat {
			case "text", "json":
			default:
				return fmt.Errorf("invalid log format %q, expecting text or json", a.logFormat)
			}
			a.logger = newLogger(a.logLevel, a.logFormat, a.stderr)
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	cmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "log format: text or json")
	cmd.AddCommand(
		newGenerateCmd(a),
		newRunCmd(a),
		newWatchCmd(a),
		newValidateCmd(a),
		newEncodeCmd(a),
		newDecodeCmd(a),
		newDumpCmd(a),
	)
	return cmd
}

// newLogger returns a logger that writes to w with the given level and
// format. An unknown level is treated as "info".
func newLogger(level, format string, w io.Writer) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: l}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// newValidator returns the validator for the given version of the
// language. If commands is not empty, it is the name of a YAML file with
// the command table.
func newValidator(commands, version string) (*validator.Validator, error) {
	table := validator.DefaultCommands
	if commands != "" {
		f, err := os.Open(commands)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		table, err = validator.LoadCommands(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", commands, err)
		}
	}
	return validator.New(table, version)
}

// printWarnings prints the warnings of the script generated from name.
func (a *app) printWarnings(name string, warnings []validator.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(a.stderr, "%s %s: %s\n", styleWarning.Render("warning:"), name, w)
	}
}
