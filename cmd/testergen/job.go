// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tester "github.com/Linhanmic/tester-template-engine"
	"github.com/Linhanmic/tester-template-engine/registry"
	"github.com/Linhanmic/tester-template-engine/validator"
)

// generator generates the scripts of jobs.
type generator struct {
	logger    *slog.Logger
	validator *validator.Validator
	csv       *registry.CSVOptions
}

// generate generates the script of job and, if job has an output file,
// writes it.
func (g *generator) generate(ctx context.Context, job Job) (*tester.Script, error) {

	reg := registry.New(&registry.Options{CSV: g.csv, Logger: g.logger})
	for _, d := range job.Data {
		if err := loadData(reg, d); err != nil {
			return nil, err
		}
	}
	for name, v := range job.Vars {
		if err := reg.Set(name, v); err != nil {
			return nil, err
		}
	}

	src, err := os.ReadFile(job.Template)
	if err != nil {
		return nil, err
	}
	engine := tester.New(&tester.Options{Logger: g.logger, Validator: g.validator})
	tmpl, err := engine.Build(job.Template, string(src))
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, name := range tmpl.Variables() {
		if _, ok := reg.Get(name); !ok {
			missing = append(missing, name)
		}
	}
	if missing != nil {
		g.logger.Warn("template references undefined variables", "job", job.Name, "variables", strings.Join(missing, ", "))
	}

	script, err := tmpl.Generate(ctx, reg.Snapshot())
	if err != nil {
		return nil, err
	}
	if job.Output != "" {
		if err := script.WriteFile(job.Output); err != nil {
			return nil, err
		}
		g.logger.Info("script written", "job", job.Name, "file", job.Output, "warnings", len(script.Warnings))
	}
	return script, nil
}

// loadData loads a data file given as "path" or "name=path" into reg.
func loadData(reg *registry.Registry, d string) error {
	name, file := splitData(d)
	if name == "" {
		return reg.LoadFile(file)
	}
	format := registry.FormatOf(file)
	if format == "" {
		return fmt.Errorf("%s: %w", file, registry.ErrUnsupportedFormat)
	}
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	return reg.Load(name, format, file, f)
}
