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
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/Linhanmic/tester-template-engine/registry"
)

// Config is the configuration of the run and watch commands.
//
//	version: v1.1.0
//	csv:
//	  encoding: gbk
//	jobs:
//	  - name: speed
//	    template: speed.tpl
//	    output: out/speed.txt
//	    data: [signals.csv, limits=limits.yaml]
//	    vars:
//	      title: speed sweep
type Config struct {
	Version  string    `yaml:"version"`  // language version, as "v1.1.0".
	Commands string    `yaml:"commands"` // YAML file with the command table.
	CSV      CSVConfig `yaml:"csv"`
	Jobs     []Job     `yaml:"jobs"`
}

// CSVConfig contains the options to read CSV files.
type CSVConfig struct {
	Comma    string `yaml:"comma"`    // field delimiter, auto detected if empty.
	Encoding string `yaml:"encoding"` // encoding name, as "gbk".
}

// Job is a script to generate.
type Job struct {
	Name     string                 `yaml:"name"`
	Template string                 `yaml:"template"`
	Output   string                 `yaml:"output"`
	Data     []string               `yaml:"data"` // files as "path" or "name=path".
	Vars     map[string]interface{} `yaml:"vars"`
}

// LoadConfig reads the configuration from the named file. The paths in the
// configuration are relative to the directory of the file.
func LoadConfig(name string) (*Config, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	conf, err := decodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	conf.resolve(filepath.Dir(name))
	return conf, nil
}

// decodeConfig decodes and checks a configuration.
func decodeConfig(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var conf Config
	if err := dec.Decode(&conf); err != nil {
		if err == io.EOF {
			return nil, errors.New("empty configuration")
		}
		return nil, err
	}
	if len(conf.Jobs) == 0 {
		return nil, errors.New("no jobs")
	}
	if n := utf8.RuneCountInString(conf.CSV.Comma); n > 1 {
		return nil, fmt.Errorf("invalid CSV comma %q", conf.CSV.Comma)
	}
	names := map[string]bool{}
	for i := range conf.Jobs {
		job := &conf.Jobs[i]
		if job.Template == "" {
			return nil, fmt.Errorf("job %d: missing template", i+1)
		}
		if job.Name == "" {
			job.Name = registry.VarName(job.Template)
		}
		if names[job.Name] {
			return nil, fmt.Errorf("job %s is repeated", job.Name)
		}
		names[job.Name] = true
		for _, d := range job.Data {
			if _, file := splitData(d); file == "" {
				return nil, fmt.Errorf("job %s: invalid data file %q", job.Name, d)
			}
		}
	}
	return &conf, nil
}

// resolve makes the relative paths of conf relative to dir.
func (conf *Config) resolve(dir string) {
	join := func(name string) string {
		if name == "" || filepath.IsAbs(name) {
			return name
		}
		return filepath.Join(dir, name)
	}
	conf.Commands = join(conf.Commands)
	for i := range conf.Jobs {
		job := &conf.Jobs[i]
		job.Template = join(job.Template)
		job.Output = join(job.Output)
		for j, d := range job.Data {
			if name, file := splitData(d); name != "" {
				job.Data[j] = name + "=" + join(file)
			} else {
				job.Data[j] = join(file)
			}
		}
	}
}

// csvOptions returns the CSV options of conf.
func (conf *Config) csvOptions() *registry.CSVOptions {
	if conf.CSV.Comma == "" && conf.CSV.Encoding == "" {
		return nil
	}
	opts := &registry.CSVOptions{Encoding: conf.CSV.Encoding}
	if conf.CSV.Comma != "" {
		opts.Comma, _ = utf8.DecodeRuneInString(conf.CSV.Comma)
	}
	return opts
}

// splitData splits a data file argument "name=path" in name and path. If
// there is no name, it returns the empty string and d.
func splitData(d string) (name, file string) {
	if i := strings.IndexByte(d, '='); i > 0 && !strings.ContainsAny(d[:i], `/\.`) {
		return d[:i], d[i+1:]
	}
	return "", d
}
