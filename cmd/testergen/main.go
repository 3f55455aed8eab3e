// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Testergen generates Tester scripts from templates and data files.
//
// Usage:
//
//	testergen <command> [arguments]
//
// The commands are:
//
//	generate    render a template and write the script
//	run         render the jobs of a configuration file
//	watch       render the jobs again when their files change
//	validate    validate a script
//	encode      encode CAN signals
//	decode      decode a CAN signal from frame data
//	dump        print the tree of a template
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// exitError is returned by a command that completed but must exit with a
// status code different from zero, for example when a script has warnings.
type exitError struct {
	Code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if e, ok := err.(*exitError); ok {
			stop()
			os.Exit(e.Code)
		}
		fmt.Fprintln(os.Stderr, styleError.Render(err.Error()))
		stop()
		os.Exit(1)
	}
}
