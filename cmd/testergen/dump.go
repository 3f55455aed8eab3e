// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	tester "github.com/Linhanmic/tester-template-engine"
	"github.com/Linhanmic/tester-template-engine/ast/astutil"
)

func newDumpCmd(a *app) *cobra.Command {
	var vars bool
	cmd := &cobra.Command{
		Use:   "dump template",
		Short: "Print the tree of a template",
		Long:  "Dump parses a template and prints its tree. With --vars it prints the global variables\nreferenced by the template instead.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			tmpl, err := tester.New(&tester.Options{Logger: a.logger}).Build(args[0], string(src))
			if err != nil {
				return err
			}
			if vars {
				if names := tmpl.Variables(); len(names) > 0 {
					fmt.Fprintln(a.stdout, strings.Join(names, "\n"))
				}
				return nil
			}
			return astutil.Dump(a.stdout, tmpl.Tree())
		},
	}
	cmd.Flags().BoolVar(&vars, "vars", false, "print the referenced variables")
	return cmd
}
