// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/filesync/pkg/records"
	"github.com/walteh/filesync/pkg/relocate"
	"gitlab.com/tozd/go/errors"
)

// DefaultFileName is tried as YAML, then HCL
const DefaultFileName = ".filesync"

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📦 Job is one input directory synced into one output directory
type Job struct {
	Name            string   `json:"name,omitempty" yaml:"name,omitempty"`
	InDirectory     string   `json:"in_directory" yaml:"in_directory"`
	OutDirectory    string   `json:"out_directory" yaml:"out_directory"`
	RecordsFile     string   `json:"records_file" yaml:"records_file"`
	Mode            string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	DeleteAfter     bool     `json:"delete_after,omitempty" yaml:"delete_after,omitempty"`
	Ignore          []string `json:"ignore,omitempty" yaml:"ignore,omitempty"`
	RecordsBackend  string   `json:"records_backend,omitempty" yaml:"records_backend,omitempty"`
	ContinueOnError bool     `json:"continue_on_error,omitempty" yaml:"continue_on_error,omitempty"`
}

// 📚 Config represents the complete configuration
type Config struct {
	Async bool  `json:"async,omitempty" yaml:"async,omitempty"`
	Jobs  []Job `json:"jobs" yaml:"jobs"`

	location string
}

// Location is the file the config was loaded from, empty when built in code
func (cfg *Config) Location() string {
	return cfg.location
}

// 🎯 Load loads the configuration from a file on the OS filesystem
func Load(ctx context.Context, path string) (*Config, error) {
	return LoadFs(ctx, afero.NewOsFs(), path)
}

// 🎯 LoadFs loads the configuration from a file on fsys.
// Relative job paths are resolved against the config file's directory.
func LoadFs(ctx context.Context, fsys afero.Fs, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg, err := parse(ctx, path, data)
	if err != nil {
		return nil, err
	}

	cfg.location = path
	cfg.resolve(filepath.Dir(path))

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	logger.Debug().Str("path", path).Int("jobs", len(cfg.Jobs)).Bool("async", cfg.Async).Msg("configuration loaded")
	return cfg, nil
}

func parse(ctx context.Context, path string, data []byte) (*Config, error) {
	if p := GetParser(path); p != nil {
		cfg, err := p.Parse(ctx, data)
		if err != nil {
			return nil, errors.Errorf("parsing config: %w", err)
		}
		return cfg, nil
	}

	if filepath.Base(path) != DefaultFileName {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// no extension to go on, try YAML first
	cfg, err := (&YAMLParser{}).Parse(ctx, data)
	if err == nil {
		return cfg, nil
	}
	cfg, err = (&HCLParser{}).Parse(ctx, data)
	if err == nil {
		return cfg, nil
	}
	return nil, errors.Errorf("failed to parse %s as YAML or HCL: %w", DefaultFileName, err)
}

// resolve makes relative job paths relative to dir
func (cfg *Config) resolve(dir string) {
	join := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i := range cfg.Jobs {
		cfg.Jobs[i].InDirectory = join(cfg.Jobs[i].InDirectory)
		cfg.Jobs[i].OutDirectory = join(cfg.Jobs[i].OutDirectory)
		cfg.Jobs[i].RecordsFile = join(cfg.Jobs[i].RecordsFile)
	}
}

// 🔍 Validate checks if the configuration is valid and fills defaults
func (cfg *Config) Validate() error {
	if len(cfg.Jobs) == 0 {
		return errors.Errorf("at least one job is required")
	}

	names := make(map[string]bool, len(cfg.Jobs))
	for i := range cfg.Jobs {
		job := &cfg.Jobs[i]
		if err := job.Validate(); err != nil {
			return errors.Errorf("job %d: %w", i+1, err)
		}
		if names[job.Name] {
			return errors.Errorf("job %d: duplicate job name %q", i+1, job.Name)
		}
		names[job.Name] = true
	}
	return nil
}

// 🔍 Validate checks a single job, cleans its paths and fills defaults
func (j *Job) Validate() error {
	if j.InDirectory == "" {
		return errors.Errorf("in_directory is required")
	}
	if j.OutDirectory == "" {
		return errors.Errorf("out_directory is required")
	}
	if j.RecordsFile == "" {
		return errors.Errorf("records_file is required")
	}

	j.InDirectory = filepath.Clean(j.InDirectory)
	j.OutDirectory = filepath.Clean(j.OutDirectory)
	j.RecordsFile = filepath.Clean(j.RecordsFile)

	mode, err := relocate.ParseMode(j.Mode)
	if err != nil {
		return errors.Errorf("mode: %w", err)
	}
	j.Mode = mode.String()

	backend, err := records.ParseBackend(j.RecordsBackend, j.RecordsFile)
	if err != nil {
		return errors.Errorf("records_backend: %w", err)
	}
	j.RecordsBackend = string(backend)

	if j.Name == "" {
		j.Name = filepath.Base(j.InDirectory)
	}
	return nil
}

// 📝 String returns a string representation of the job
func (j Job) String() string {
	mode := j.Mode
	if mode == "" {
		mode = string(relocate.ModeMove)
	}
	return fmt.Sprintf("%s: %s -> %s (%s, records %s)", j.Name, j.InDirectory, j.OutDirectory, mode, j.RecordsFile)
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	parts := make([]string, 0, len(cfg.Jobs))
	for _, j := range cfg.Jobs {
		parts = append(parts, j.String())
	}
	return strings.Join(parts, "; ")
}
