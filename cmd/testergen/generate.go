// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Linhanmic/tester-template-engine/registry"
)

// generateFlags are the flags of the generate command.
type generateFlags struct {
	template string
	output   string
	data     []string
	verbose  bool
	version  string
	commands string
	report   string
	strict   bool
	comma    string
	encoding string
}

func newGenerateCmd(a *app) *cobra.Command {
	var flags generateFlags
	cmd := &cobra.Command{
		Use:   "generate -t template [-o output] [-d data]...",
		Short: "Render a template and write the script",
		Long: "Generate renders a template with the variables of the data files and writes the script.\n\n" +
			"A data file is given as \"path\", and its variable has the name of the file without the\n" +
			"extension, or as \"name=path\". CSV, JSON, YAML and HCL files are supported.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.generate(cmd, &flags)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&flags.template, "template", "t", "", "template file")
	f.StringVarP(&flags.output, "output", "o", "", "output file, standard output if not given")
	f.StringArrayVarP(&flags.data, "data", "d", nil, "data file, can be repeated")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "print the variables and the progress")
	f.StringVar(&flags.version, "version", "", "language version of the script, as v1.1.0")
	f.StringVar(&flags.commands, "commands", "", "YAML file with the command table")
	f.StringVar(&flags.report, "report", "", "write an HTML report to the given file")
	f.BoolVar(&flags.strict, "strict", false, "exit with status 2 if the script has warnings")
	f.StringVar(&flags.comma, "csv-comma", "", "CSV field delimiter, auto detected if not given")
	f.StringVar(&flags.encoding, "csv-encoding", "", "CSV encoding, as gbk")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func (a *app) generate(cmd *cobra.Command, flags *generateFlags) error {

	conf := &Config{CSV: CSVConfig{Comma: flags.comma, Encoding: flags.encoding}}
	if len([]rune(flags.comma)) > 1 {
		return fmt.Errorf("invalid CSV delimiter %q", flags.comma)
	}
	for _, d := range flags.data {
		if _, file := splitData(d); file == "" {
			return fmt.Errorf("invalid data file %q", d)
		}
	}
	v, err := newValidator(flags.commands, flags.version)
	if err != nil {
		return err
	}

	logger := a.logger
	if flags.verbose {
		logger = newLogger("debug", a.logFormat, a.stderr)
	}
	g := &generator{logger: logger, validator: v, csv: conf.csvOptions()}
	job := Job{
		Name:     registry.VarName(flags.template),
		Template: flags.template,
		Output:   flags.output,
		Data:     flags.data,
	}

	script, err := g.generate(cmd.Context(), job)
	if err != nil {
		return err
	}
	if flags.output == "" {
		if _, err := io.WriteString(a.stdout, script.Text); err != nil {
			return err
		}
	} else if flags.verbose {
		fmt.Fprintf(a.stderr, "%s %s\n", styleOK.Render("generated"), flags.output)
	}
	a.printWarnings(flags.template, script.Warnings)

	if flags.report != "" {
		results := []jobResult{{Job: job, Script: script}}
		if err := writeReport(flags.report, results); err != nil {
			return err
		}
	}
	if flags.strict && len(script.Warnings) > 0 {
		return &exitError{Code: 2}
	}
	return nil
}

// errNoJobs is returned when there are no jobs to run.
var errNoJobs = errors.New("no jobs to run")

// openOrStdin is used by the commands reading a file or the standard input.
func openOrStdin(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}
