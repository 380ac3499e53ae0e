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

package opts

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/walteh/filesync/pkg/config"
	"github.com/walteh/filesync/pkg/operation"
	"github.com/walteh/filesync/pkg/records"
	"github.com/walteh/filesync/pkg/relocate"
	"gitlab.com/tozd/go/errors"
)

// EnvPrefix is prepended to every flag name when read from the environment
const EnvPrefix = "FILESYNC"

// flag names, shared with the environment as FILESYNC_<NAME>
const (
	FlagConfig          = "config"
	FlagDebug           = "debug"
	FlagInDirectory     = "in_directory"
	FlagOutDirectory    = "out_directory"
	FlagRecordsFile     = "records_file"
	FlagDeleteAfter     = "delete_after"
	FlagMode            = "mode"
	FlagIgnore          = "ignore"
	FlagRecordsBackend  = "records_backend"
	FlagContinueOnError = "continue_on_error"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Fs    afero.Fs
	Viper *viper.Viper
}

// New creates root options reading flags and FILESYNC_ environment variables
func New(fsys afero.Fs) *RootOpts {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return &RootOpts{Fs: fsys, Viper: v}
}

// AddJobFlags registers the job flags on flags and binds them to viper
func (o *RootOpts) AddJobFlags(flags *pflag.FlagSet) error {
	flags.StringP(FlagConfig, "c", "", "job file (.yaml, .yml, .hcl, .json); defaults to ./"+config.DefaultFileName+" when present")
	flags.BoolP(FlagDebug, "d", false, "enable debug logging")
	flags.String(FlagInDirectory, "", "directory scanned for new files")
	flags.String(FlagOutDirectory, "", "directory new files are moved or copied to")
	flags.String(FlagRecordsFile, "", "file holding the names already processed")
	flags.Bool(FlagDeleteAfter, false, "delete each original after it is processed")
	flags.String(FlagMode, "", "transfer mode: move, copy or copy-then-delete (default move)")
	flags.StringSlice(FlagIgnore, nil, "glob of file names to leave alone (repeatable)")
	flags.String(FlagRecordsBackend, "", "records backend: text or bolt (default from the records file extension)")
	flags.Bool(FlagContinueOnError, false, "log per-file relocation failures instead of aborting")

	if err := o.Viper.BindPFlags(flags); err != nil {
		return errors.Errorf("binding flags: %w", err)
	}
	return nil
}

// Debug reports whether debug logging was requested
func (o *RootOpts) Debug() bool {
	return o.Viper.GetBool(FlagDebug)
}

// Config returns the jobs to run. An explicit job file wins, then the job
// flags, then a job file named config.DefaultFileName in the working directory.
// With a job file, the non-path job flags override every job.
func (o *RootOpts) Config(ctx context.Context) (*config.Config, error) {
	logger := zerolog.Ctx(ctx)

	if path := o.Viper.GetString(FlagConfig); path != "" {
		cfg, err := config.LoadFs(ctx, o.Fs, path)
		if err != nil {
			return nil, err
		}
		if err := o.applyOverrides(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if o.Viper.GetString(FlagInDirectory) == "" {
		if ok, _ := afero.Exists(o.Fs, config.DefaultFileName); ok {
			logger.Debug().Str("path", config.DefaultFileName).Msg("using default job file")
			cfg, err := config.LoadFs(ctx, o.Fs, config.DefaultFileName)
			if err != nil {
				return nil, err
			}
			if err := o.applyOverrides(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
	}

	job := config.Job{
		InDirectory:     o.Viper.GetString(FlagInDirectory),
		OutDirectory:    o.Viper.GetString(FlagOutDirectory),
		RecordsFile:     o.Viper.GetString(FlagRecordsFile),
		Mode:            o.Viper.GetString(FlagMode),
		DeleteAfter:     o.Viper.GetBool(FlagDeleteAfter),
		Ignore:          o.Viper.GetStringSlice(FlagIgnore),
		RecordsBackend:  o.Viper.GetString(FlagRecordsBackend),
		ContinueOnError: o.Viper.GetBool(FlagContinueOnError),
	}
	cfg := &config.Config{Jobs: []config.Job{job}}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("%w (pass --%s or --%s, --%s and --%s)", err, FlagConfig, FlagInDirectory, FlagOutDirectory, FlagRecordsFile)
	}
	return cfg, nil
}

// ErrFlagWithJobFile is returned when a job path flag is combined with a job file
var ErrFlagWithJobFile = errors.Base("flag cannot be combined with a job file")

// applyOverrides lets explicitly set flags win over job file values. Path
// flags name a single job and are refused.
func (o *RootOpts) applyOverrides(cfg *config.Config) error {
	for _, name := range []string{FlagInDirectory, FlagOutDirectory, FlagRecordsFile} {
		if o.Viper.IsSet(name) {
			return errors.Errorf("--%s: %w", name, ErrFlagWithJobFile)
		}
	}

	for i := range cfg.Jobs {
		job := &cfg.Jobs[i]
		if o.Viper.IsSet(FlagMode) {
			job.Mode = o.Viper.GetString(FlagMode)
		}
		if o.Viper.IsSet(FlagRecordsBackend) {
			job.RecordsBackend = o.Viper.GetString(FlagRecordsBackend)
		}
		if o.Viper.IsSet(FlagDeleteAfter) {
			job.DeleteAfter = o.Viper.GetBool(FlagDeleteAfter)
		}
		if o.Viper.IsSet(FlagContinueOnError) {
			job.ContinueOnError = o.Viper.GetBool(FlagContinueOnError)
		}
		if o.Viper.IsSet(FlagIgnore) {
			job.Ignore = append(job.Ignore, o.Viper.GetStringSlice(FlagIgnore)...)
		}
	}

	if err := cfg.Validate(); err != nil {
		return errors.Errorf("applying flags: %w", err)
	}
	return nil
}

// Plan pairs each configured job with its operator
type Plan struct {
	Async     bool
	Operators []operation.Operator

	jobs map[string]config.Job
}

// Job returns the job an operator was built from
func (p *Plan) Job(op operation.Operator) config.Job {
	return p.jobs[op.Name()]
}

// Plan loads the config and builds one operator per job
func (o *RootOpts) Plan(ctx context.Context) (*Plan, error) {
	cfg, err := o.Config(ctx)
	if err != nil {
		return nil, errors.Errorf("loading jobs: %w", err)
	}

	plan := &Plan{
		Async: cfg.Async,
		jobs:  make(map[string]config.Job, len(cfg.Jobs)),
	}
	for _, job := range cfg.Jobs {
		op, err := o.Operator(job)
		if err != nil {
			return nil, errors.Errorf("job %s: %w", job.Name, err)
		}
		plan.Operators = append(plan.Operators, op)
		plan.jobs[op.Name()] = job
	}
	return plan, nil
}

// Operator builds the operator for a validated job
func (o *RootOpts) Operator(job config.Job) (operation.Operator, error) {
	store, err := records.Open(o.Fs, records.Backend(job.RecordsBackend), job.RecordsFile)
	if err != nil {
		return nil, errors.Errorf("opening records store: %w", err)
	}

	policies := operation.DefaultPolicies()
	if job.ContinueOnError {
		policies = policies.WithContinueOnError()
	}

	return operation.New(operation.Options{
		Name:     job.Name,
		Fs:       o.Fs,
		InDir:    job.InDirectory,
		OutDir:   job.OutDirectory,
		Store:    store,
		Mode:     relocate.Mode(job.Mode),
		Ignore:   job.Ignore,
		Policies: policies,
	})
}
