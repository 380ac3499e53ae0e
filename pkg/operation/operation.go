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

package operation

import (
	"context"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/filesync/pkg/log"
	"github.com/walteh/filesync/pkg/records"
	"github.com/walteh/filesync/pkg/relocate"
	"github.com/walteh/filesync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Operator defines the sync processor for one job
type Operator interface {
	// Name identifies the job in logs and summaries
	Name() string
	// Paths returns the directories and records file the job touches
	Paths() Paths
	// Initialize creates missing directories and the records store
	Initialize(ctx context.Context) error
	// LoadRecordSet reads the names already processed
	LoadRecordSet(ctx context.Context) (*records.Set, error)
	// ProcessFiles relocates every unrecorded regular file and records it
	ProcessFiles(ctx context.Context, deleteAfter bool) (*status.Summary, error)
	// ClearInputDirectory deletes the regular files directly in the input directory
	ClearInputDirectory(ctx context.Context) error
	// ClearRecordsFile forgets every processed name
	ClearRecordsFile(ctx context.Context) error
	// Status lists the files the next pass would relocate without touching anything
	Status(ctx context.Context) ([]PendingFile, error)
}

// 📂 Paths are the locations a job reads and writes
type Paths struct {
	In      string
	Out     string
	Records string
}

// 📄 PendingFile is a file the next pass would relocate
type PendingFile = status.PendingFile

// 🔧 Options contains configuration for the operator
type Options struct {
	// Name identifies the job, defaults to the input directory
	Name string
	// Fs is the filesystem files are relocated on, defaults to the OS filesystem
	Fs afero.Fs
	// InDir is the directory scanned for new files
	InDir string
	// OutDir is where new files are relocated to
	OutDir string
	// Store persists the record set
	Store records.Store
	// Mode selects move, copy or copy-then-delete, defaults to move
	Mode relocate.Mode
	// Ignore holds doublestar patterns matched against file names
	Ignore []string
	// Policies decides what happens on each error kind, defaults to DefaultPolicies
	Policies PolicyTable
	// Logger receives console lines, defaults to the logger in the context
	Logger *log.Logger
}

// 🏭 New creates a new operator with the given options
func New(opts Options) (Operator, error) {
	if opts.InDir == "" {
		return nil, errors.Errorf("input directory is required")
	}
	if opts.OutDir == "" {
		return nil, errors.Errorf("output directory is required")
	}
	if opts.Store == nil {
		return nil, errors.Errorf("records store is required")
	}
	if samePath(opts.InDir, opts.OutDir) {
		return nil, errors.Errorf("input and output directories must differ: %s", opts.InDir)
	}

	mode, err := relocate.ParseMode(string(opts.Mode))
	if err != nil {
		return nil, errors.Errorf("parsing mode: %w", err)
	}

	for _, pattern := range opts.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid ignore pattern %q", pattern)
		}
	}

	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	policies := opts.Policies
	if policies == nil {
		policies = DefaultPolicies()
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(filepath.Clean(opts.InDir))
	}

	return &operator{
		name:     name,
		fs:       fsys,
		inDir:    filepath.Clean(opts.InDir),
		outDir:   filepath.Clean(opts.OutDir),
		store:    opts.Store,
		mode:     mode,
		ignore:   append([]string(nil), opts.Ignore...),
		policies: policies,
		logger:   opts.Logger,
	}, nil
}

// 🎮 operator implements the Operator interface
type operator struct {
	name     string
	fs       afero.Fs
	inDir    string
	outDir   string
	store    records.Store
	mode     relocate.Mode
	ignore   []string
	policies PolicyTable
	logger   *log.Logger
}

func (o *operator) Name() string {
	return o.name
}

func (o *operator) Paths() Paths {
	return Paths{In: o.inDir, Out: o.outDir, Records: o.store.Path()}
}

// console returns the configured logger or the one carried by ctx
func (o *operator) console(ctx context.Context) *log.Logger {
	if o.logger != nil {
		return o.logger
	}
	return log.FromContext(ctx)
}

// Initialize implements Operator.Initialize
func (o *operator) Initialize(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	for _, dir := range []string{o.inDir, o.outDir} {
		if err := o.fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Errorf("creating directory %s: %w", dir, err)
		}
		logger.Debug().Str("dir", dir).Msg("directory ready")
	}

	if err := o.store.Ensure(ctx); err != nil {
		return errors.Errorf("preparing records store: %w", err)
	}
	return nil
}

// LoadRecordSet implements Operator.LoadRecordSet
func (o *operator) LoadRecordSet(ctx context.Context) (*records.Set, error) {
	set, err := o.store.Load(ctx)
	if err != nil {
		return nil, errors.Errorf("loading record set: %w", err)
	}
	return set, nil
}

// ClearRecordsFile implements Operator.ClearRecordsFile
func (o *operator) ClearRecordsFile(ctx context.Context) error {
	if err := o.store.Clear(ctx); err != nil {
		return errors.Errorf("clearing records: %w", err)
	}
	o.console(ctx).Successf("cleared records in %s", o.store.Path())
	return nil
}

func samePath(a, b string) bool {
	return absPath(a) == absPath(b)
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
