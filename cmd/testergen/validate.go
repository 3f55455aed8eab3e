// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	var version, commands string
	cmd := &cobra.Command{
		Use:   "validate script...",
		Short: "Validate scripts",
		Long: "Validate checks the commands of Tester scripts and prints the warnings.\n" +
			"The name \"-\" reads the script from the standard input. It exits with status 2\n" +
			"if a script has warnings.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := newValidator(commands, version)
			if err != nil {
				return err
			}
			warned := false
			for _, name := range args {
				f, err := openOrStdin(name)
				if err != nil {
					return err
				}
				text, err := io.ReadAll(f)
				f.Close()
				if err != nil {
					return err
				}
				warnings := v.Validate(string(text))
				if len(warnings) == 0 {
					fmt.Fprintf(a.stdout, "%s %s\n", styleOK.Render("ok"), name)
					continue
				}
				warned = true
				a.printWarnings(name, warnings)
			}
			if warned {
				return &exitError{Code: 2}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&version, "version", "", "language version of the scripts, as v1.1.0")
	cmd.Flags().StringVar(&commands, "commands", "", "YAML file with the command table")
	return cmd
}
