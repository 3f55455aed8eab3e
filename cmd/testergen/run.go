// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	tester "github.com/Linhanmic/tester-template-engine"
)

// jobResult is the result of a job.
type jobResult struct {
	Job    Job
	Script *tester.Script
	Err    error
}

// runFlags are the flags of the run and watch commands.
type runFlags struct {
	jobs   int
	only   []string
	report string
	strict bool
}

func newRunCmd(a *app) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "run config.yaml",
		Short: "Render the jobs of a configuration file",
		Long: "Run renders concurrently the jobs of a YAML configuration file and writes their scripts.\n" +
			"A failed job does not stop the other jobs.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := LoadConfig(args[0])
			if err != nil {
				return err
			}
			results, err := a.runJobs(cmd.Context(), conf, &flags)
			if err != nil {
				return err
			}
			return a.summarize(results, &flags)
		},
	}
	addRunFlags(cmd, &flags)
	return cmd
}

func addRunFlags(cmd *cobra.Command, flags *runFlags) {
	f := cmd.Flags()
	f.IntVarP(&flags.jobs, "jobs", "j", runtime.NumCPU(), "number of jobs to run concurrently")
	f.StringSliceVar(&flags.only, "only", nil, "run only the jobs with these names")
	f.StringVar(&flags.report, "report", "", "write an HTML report to the given file")
	f.BoolVar(&flags.strict, "strict", false, "exit with status 2 if a script has warnings")
}

// runJobs runs the jobs of conf and returns their results in the order of
// the configuration.
func (a *app) runJobs(ctx context.Context, conf *Config, flags *runFlags) ([]jobResult, error) {

	jobs := conf.Jobs
	if len(flags.only) > 0 {
		only := map[string]bool{}
		for _, name := range flags.only {
			only[name] = true
		}
		jobs = nil
		for _, job := range conf.Jobs {
			if only[job.Name] {
				jobs = append(jobs, job)
			}
		}
		if jobs == nil {
			return nil, errNoJobs
		}
	}
	if flags.jobs < 1 {
		return nil, fmt.Errorf("invalid number of jobs %d", flags.jobs)
	}

	v, err := newValidator(conf.Commands, conf.Version)
	if err != nil {
		return nil, err
	}
	g := &generator{logger: a.logger, validator: v, csv: conf.csvOptions()}

	results := make([]jobResult, len(jobs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(flags.jobs)
	for i, job := range jobs {
		i, job := i, job
		eg.Go(func() error {
			script, err := g.generate(ctx, job)
			results[i] = jobResult{Job: job, Script: script, Err: err}
			if err != nil {
				a.logger.Debug("job failed", "job", job.Name, "error", err)
			}
			// Only the cancellation of ctx stops the other jobs.
			return ctx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// summarize prints the results and writes the report. It returns an error
// if a job failed.
func (a *app) summarize(results []jobResult, flags *runFlags) error {
	failed, warned := 0, 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			fmt.Fprintf(a.stderr, "%s %s: %s\n", styleError.Render("failed"), r.Job.Name, r.Err)
		default:
			if len(r.Script.Warnings) > 0 {
				warned++
			}
			a.printWarnings(r.Job.Template, r.Script.Warnings)
			fmt.Fprintf(a.stdout, "%s %s\n", styleOK.Render("ok"), r.Job.Name)
		}
	}
	if flags.report != "" {
		if err := writeReport(flags.report, results); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(results))
	}
	if flags.strict && warned > 0 {
		return &exitError{Code: 2}
	}
	return nil
}
