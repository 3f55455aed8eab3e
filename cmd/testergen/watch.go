// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchDelay is the time waited after a change before running the jobs, so
// that a burst of changes runs them once.
const watchDelay = 100 * time.Millisecond

func newWatchCmd(a *app) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "watch config.yaml",
		Short: "Render the jobs again when their files change",
		Long: "Watch runs the jobs of a configuration file, like run, and runs them again each time\n" +
			"the configuration file, a template or a data file changes.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watch(cmd.Context(), args[0], &flags)
		},
	}
	addRunFlags(cmd, &flags)
	return cmd
}

// watchedFiles returns the absolute paths of the files used by conf.
func watchedFiles(config string, conf *Config) map[string]bool {
	files := map[string]bool{}
	add := func(name string) {
		if name == "" {
			return
		}
		if abs, err := filepath.Abs(name); err == nil {
			files[abs] = true
		}
	}
	add(config)
	add(conf.Commands)
	for _, job := range conf.Jobs {
		add(job.Template)
		for _, d := range job.Data {
			_, file := splitData(d)
			add(file)
		}
	}
	return files
}

func (a *app) watch(ctx context.Context, config string, flags *runFlags) error {

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	var files map[string]bool
	dirs := map[string]bool{}

	// run loads the configuration, watches the directories of its files and
	// runs the jobs.
	run := func() error {
		conf, err := LoadConfig(config)
		if err != nil {
			return err
		}
		files = watchedFiles(config, conf)
		for name := range files {
			dir := filepath.Dir(name)
			if dirs[dir] {
				continue
			}
			if err := watcher.Add(dir); err != nil {
				return err
			}
			dirs[dir] = true
			a.logger.Debug("watching directory", "dir", dir)
		}
		results, err := a.runJobs(ctx, conf, flags)
		if err != nil {
			return err
		}
		return a.summarize(results, flags)
	}

	if err := run(); err != nil {
		if files == nil {
			return err
		}
		fmt.Fprintln(a.stderr, styleError.Render(err.Error()))
	}
	fmt.Fprintln(a.stderr, styleTitle.Render("watching for changes, press Ctrl+C to stop"))

	timer := time.NewTimer(watchDelay)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if abs, err := filepath.Abs(event.Name); err != nil || !files[abs] {
				continue
			}
			a.logger.Debug("file changed", "file", event.Name, "op", event.Op.String())
			timer.Reset(watchDelay)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Error("watcher error", "error", err)
		case <-timer.C:
			if err := run(); err != nil {
				fmt.Fprintln(a.stderr, styleError.Render(err.Error()))
			}
		}
	}
}
