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

package operation_test

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/filesync/pkg/log"
	"github.com/walteh/filesync/pkg/operation"
	"github.com/walteh/filesync/pkg/records"
	"github.com/walteh/filesync/pkg/relocate"
	"gitlab.com/tozd/go/errors"
)

const recordsPath = "/records/files_added.txt"

// 🧪 testEnv is an in-memory input/output/records layout
type testEnv struct {
	ctx     context.Context
	fs      afero.Fs
	console *bytes.Buffer
	store   records.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fsys := afero.NewMemMapFs()
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)

	return &testEnv{
		ctx:     logger.WithContext(context.Background()),
		fs:      fsys,
		console: &bytes.Buffer{},
		store:   records.NewTextStore(fsys, recordsPath),
	}
}

// operator builds and initializes an operator on the env
func (e *testEnv) operator(t *testing.T, mutate func(*operation.Options)) operation.Operator {
	t.Helper()

	opts := operation.Options{
		Name:   "test",
		Fs:     e.fs,
		InDir:  "/in",
		OutDir: "/out",
		Store:  e.store,
		Mode:   relocate.ModeMove,
		Logger: log.New(e.console, zerolog.Nop()),
	}
	if mutate != nil {
		mutate(&opts)
	}

	op, err := operation.New(opts)
	require.NoError(t, err, "creating operator")
	require.NoError(t, op.Initialize(e.ctx), "initializing operator")
	return op
}

func (e *testEnv) write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, e.fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(e.fs, path, []byte(content), 0o644))
}

func (e *testEnv) read(t *testing.T, path string) string {
	t.Helper()
	content, err := afero.ReadFile(e.fs, path)
	require.NoError(t, err, "reading %s", path)
	return string(content)
}

func (e *testEnv) exists(t *testing.T, path string) bool {
	t.Helper()
	ok, err := afero.Exists(e.fs, path)
	require.NoError(t, err)
	return ok
}

func (e *testEnv) files(t *testing.T, dir string) []string {
	t.Helper()
	infos, err := afero.ReadDir(e.fs, dir)
	require.NoError(t, err)
	var names []string
	for _, info := range infos {
		if info.Mode().IsRegular() {
			names = append(names, info.Name())
		}
	}
	return names
}

func TestNew(t *testing.T) {
	store := records.NewTextStore(afero.NewMemMapFs(), "/r.txt")

	tests := []struct {
		name        string
		opts        operation.Options
		errContains string
	}{
		{
			name: "valid_defaults",
			opts: operation.Options{InDir: "/in", OutDir: "/out", Store: store},
		},
		{
			name:        "missing_input",
			opts:        operation.Options{OutDir: "/out", Store: store},
			errContains: "input directory is required",
		},
		{
			name:        "missing_output",
			opts:        operation.Options{InDir: "/in", Store: store},
			errContains: "output directory is required",
		},
		{
			name:        "missing_store",
			opts:        operation.Options{InDir: "/in", OutDir: "/out"},
			errContains: "records store is required",
		},
		{
			name:        "same_directories",
			opts:        operation.Options{InDir: "/data", OutDir: "/data/", Store: store},
			errContains: "must differ",
		},
		{
			name:        "unknown_mode",
			opts:        operation.Options{InDir: "/in", OutDir: "/out", Store: store, Mode: "teleport"},
			errContains: "unknown transfer mode",
		},
		{
			name:        "bad_ignore_pattern",
			opts:        operation.Options{InDir: "/in", OutDir: "/out", Store: store, Ignore: []string{"[abc"}},
			errContains: "invalid ignore pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := operation.New(tt.opts)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "in", op.Name(), "name should default to the input directory")
			assert.Equal(t, operation.Paths{In: "/in", Out: "/out", Records: "/r.txt"}, op.Paths())
		})
	}
}

func TestInitialize(t *testing.T) {
	env := newTestEnv(t)
	op := env.operator(t, nil)

	assert.True(t, env.exists(t, "/in"), "input directory should exist")
	assert.True(t, env.exists(t, "/out"), "output directory should exist")
	assert.True(t, env.exists(t, recordsPath), "records file should exist")
	assert.Empty(t, env.read(t, recordsPath))

	env.write(t, recordsPath, "a.txt\n")
	require.NoError(t, op.Initialize(env.ctx), "initializing twice should not fail")
	assert.Equal(t, "a.txt\n", env.read(t, recordsPath), "existing records should be kept")
}

func TestLoadRecordSet(t *testing.T) {
	env := newTestEnv(t)
	op := env.operator(t, nil)

	env.write(t, recordsPath, "a.txt  \n\nb.txt\r\na.txt\n")

	set, err := op.LoadRecordSet(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, set.Names())

	require.NoError(t, env.fs.Remove(recordsPath))
	_, err = op.LoadRecordSet(env.ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist), "missing records file should surface as not found")
}

func TestProcessFilesMove(t *testing.T) {
	env := newTestEnv(t)
	op := env.operator(t, nil)

	env.write(t, "/in/b.txt", "bravo")
	env.write(t, "/in/a.txt", "alpha")

	summary, err := op.ProcessFiles(env.ctx, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "b.txt"}, summary.Relocated, "files should be handled in name order")
	assert.Equal(t, "alpha", env.read(t, "/out/a.txt"))
	assert.Equal(t, "bravo", env.read(t, "/out/b.txt"))
	assert.Empty(t, env.files(t, "/in"), "moved files should leave the input directory")
	assert.Equal(t, "a.txt\nb.txt\n", env.read(t, recordsPath))
	assert.False(t, summary.Aborted)

	assert.Contains(t, env.console.String(), "moved")
	assert.Contains(t, env.console.String(), "processed")
}

func TestProcessFilesCopy(t *testing.T) {
	env := newTestEnv(t)
	op := env.operator(t, func(o *operation.Options) { o.Mode = relocate.ModeCopy })

	env.write(t, "/in/a.txt", "alpha")
	env.write(t, "/in/b.txt", "bravo")

	summary, err := op.ProcessFiles(env.ctx, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "b.txt"}, summary.Relocated)
	assert.Equal(t, []string{"a.txt", "b.txt"}, env.files(t, "/out"))
	assert.Equal(t, []string{"a.txt", "b.txt"}, env.files(t, "/in"), "copies should leave the originals")
	assert.Equal(t, "a.txt\nb.txt\n", env.read(t, recordsPath))
	assert.Empty(t, summary.Deleted)
}

func TestProcessFilesSkipsRecorded(t *testing.T) {
	env := newTestEnv(t)
	op := env.operator(t, nil)

	env.write(t, recordsPath, "a.txt\n")
	env.write(t, "/in/a.txt", "alpha")
	env.write(t, "/in/c.txt", "charlie")

	summary, err := op.ProcessFiles(env.ctx, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"c.txt"}, summary.Relocated)
	assert.Equal(t, []string{"a.txt"}, summary.Skipped)
	assert.Equal(t, []string{"a.txt"}, env.files(t, "/in"), "recorded file should stay untouched")
	assert.Equal(t, []string{"c.txt"}, env.files(t, "/out"))
	assert.Equal(t, "a.txt\nc.txt\n", env.read(t, recordsPath))
}

func TestProcessFilesDeleteAfter(t *testing.T) {
	t.Run("move_swallows_missing_source", func(t *testing.T) {
		env := newTestEnv(t)
		op := env.operator(t, nil)
		env.write(t, "/in/a.txt", "alpha")

		summary, err := op.ProcessFiles(env.ctx, true)
		require.NoError(t, err, "a source removed by the move must not fail the pass")

		assert.Equal(t, []string{"a.txt"}, summary.Relocated)
		assert.Equal(t, []string{"a.txt"}, summary.NotFound)
		assert.Empty(t, summary.Failed)
		assert.Contains(t, env.console.String(), "file not found for deletion")
		assert.Equal(t, "a.txt\n", env.read(t, recordsPath))
	})

	t.Run("copy_deletes_source", func(t *testing.T) {
		env := newTestEnv(t)
		op := env.operator(t, func(o *operation.Options) { o.Mode = relocate.ModeCopy })
		env.write(t, "/in/a.txt", "alpha")

		summary, err := op.ProcessFiles(env.ctx, true)
		require.NoError(t, err)

		assert.Equal(t, []string{"a.txt"}, summary.Deleted)
		assert.Empty(t, env.files(t, "/in"))
		assert.Equal(t, "alpha", env.read(t, "/out/a.txt"))
	})

	t.Run("copy_then_delete_mode", func(t *testing.T) {
		env := newTestEnv(t)
		op := env.operator(t, func(o *operation.Options) { o.Mode = relocate.ModeCopyThenDelete })
		env.write(t, "/in/a.txt", "alpha")

		summary, err := op.ProcessFiles(env.ctx, false)
		require.NoError(t, err)

		assert.Equal(t, []string{"a.txt"}, summary.Relocated)
		assert.Equal(t, []string{"a.txt"}, summary.Deleted)
		assert.Empty(t, env.files(t, "/in"))
		assert.Equal(t, "alpha", env.read(t, "/out/a.txt"))
		assert.Contains(t, env.console.String(), "copied")
	})
}

func TestProcessFilesIdempotent(t *testing.T) {
	for _, mode := range []relocate.Mode{relocate.ModeMove, relocate.ModeCopy, relocate.ModeCopyThenDelete} {
		t.Run(mode.String(), func(t *testing.T) {
			env := newTestEnv(t)
			op := env.operator(t, func(o *operation.Options) { o.Mode = mode })
			env.write(t, "/in/a.txt", "alpha")
			env.write(t, "/in/b.txt", "bravo")

			_, err := op.ProcessFiles(env.ctx, false)
			require.NoError(t, err)
			recordsAfterFirst := env.read(t, recordsPath)
			outAfterFirst := env.files(t, "/out")

			summary, err := op.ProcessFiles(env.ctx, false)
			require.NoError(t, err)

			assert.Empty(t, summary.Relocated, "second pass should relocate nothing")
			assert.False(t, summary.Changed())
			assert.Equal(t, recordsAfterFirst, env.read(t, recordsPath))
			assert.Equal(t, outAfterFirst, env.files(t, "/out"))
		})
	}
}

func TestProcessFilesNeverRelocatesRecordedAgain(t *testing.T) {
	env := newTestEnv(t)
	op := env.operator(t, nil)

	env.write(t, "/in/a.txt", "first")
	_, err := op.ProcessFiles(env.ctx, false)
	require.NoError(t, err)

	env.write(t, "/in/a.txt", "second")
	summary, err := op.ProcessFiles(env.ctx, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt"}, summary.Skipped)
	assert.Equal(t, "second", env.read(t, "/in/a.txt"), "reappearing file should stay in place")
	assert.Equal(t, "first", env.read(t, "/out/a.txt"), "output copy should be untouched")
	assert.Equal(t, "a.txt\n", env.read(t, recordsPath), "name should be recorded exactly once")
}

func TestProcessFilesCollisionAborts(t *testing.T) {
	env := newTestEnv(t)
	op := env.operator(t, nil)

	env.write(t, "/in/a.txt", "alpha")
	env.write(t, "/in/b.txt", "new bravo")
	env.write(t, "/in/c.txt", "charlie")
	env.write(t, "/out/b.txt", "old bravo")

	summary, err := op.ProcessFiles(env.ctx, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, relocate.ErrCollision))

	var stepErr *operation.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, operation.StepRelocate, stepErr.Step)
	assert.Equal(t, "b.txt", stepErr.Name)
	assert.Equal(t, operation.KindAlreadyExists, stepErr.Kind)

	require.NotNil(t, summary)
	assert.True(t, summary.Aborted)
	assert.Equal(t, []string{"a.txt"}, summary.Relocated)

	assert.Equal(t, "new bravo", env.read(t, "/in/b.txt"), "colliding source should be kept")
	assert.Equal(t, "old bravo", env.read(t, "/out/b.txt"), "existing destination should be kept")
	assert.True(t, env.exists(t, "/in/c.txt"), "files after the collision should not be touched")
	assert.Equal(t, "a.txt\n", env.read(t, recordsPath), "files relocated before the abort should be recorded")
}

func TestProcessFilesIgnore(t *testing.T) {
	env := newTestEnv(t)
	op := env.operator(t, func(o *operation.Options) { o.Ignore = []string{"*.tmp", ".*"} })

	env.write(t, "/in/a.txt", "alpha")
	env.write(t, "/in/b.tmp", "partial")
	env.write(t, "/in/.hidden", "dot")

	summary, err := op.ProcessFiles(env.ctx, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt"}, summary.Relocated)
	assert.Equal(t, []string{".hidden", "b.tmp"}, summary.Ignored)
	assert.Equal(t, []string{".hidden", "b.tmp"}, env.files(t, "/in"))
	assert.Equal(t, "a.txt\n", env.read(t, recordsPath), "ignored names should not be recorded")
}

func TestProcessFilesRecordsFileInInput(t *testing.T) {
	env := newTestEnv(t)
	env.store = records.NewTextStore(env.fs, "/in/records.txt")
	op := env.operator(t, nil)

	env.write(t, "/in/a.txt", "alpha")
	env.write(t, "/in/.records.txt.tmp-123", "leftover")

	summary, err := op.ProcessFiles(env.ctx, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt"}, summary.Relocated)
	assert.Equal(t, 1, summary.Total, "records file and its temp files are not candidates")
	assert.False(t, env.exists(t, "/out/records.txt"))
	assert.Equal(t, "a.txt\n", env.read(t, "/in/records.txt"))
}

func TestProcessFilesUnrecordableName(t *testing.T) {
	env := newTestEnv(t)
	op := env.operator(t, nil)

	env.write(t, "/in/bad\nname.txt", "x")
	env.write(t, "/in/good.txt", "y")

	summary, err := op.ProcessFiles(env.ctx, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"good.txt"}, summary.Relocated)
	assert.Equal(t, []string{"bad\nname.txt"}, summary.Ignored)
	assert.True(t, env.exists(t, "/in/bad\nname.txt"))
	assert.Equal(t, "good.txt\n", env.read(t, recordsPath))
}

func TestProcessFilesTrailingWhitespaceName(t *testing.T) {
	env := newTestEnv(t)
	op := env.operator(t, func(o *operation.Options) { o.Mode = relocate.ModeCopy })

	env.write(t, "/in/a.txt ", "x")
	env.write(t, "/in/b.txt\t", "y")
	env.write(t, "/in/good.txt", "z")

	for run := 1; run <= 2; run++ {
		summary, err := op.ProcessFiles(env.ctx, false)
		require.NoError(t, err, "run %d", run)
		assert.Equal(t, []string{"a.txt ", "b.txt\t"}, summary.Ignored, "run %d", run)
	}

	assert.False(t, env.exists(t, "/out/a.txt "))
	assert.Equal(t, "good.txt\n", env.read(t, recordsPath))
	assert.Contains(t, env.console.String(), "cannot be stored in the records file")
}

func TestProcessFilesNothingNew(t *testing.T) {
	env := newTestEnv(t)
	op := env.operator(t, nil)

	env.write(t, recordsPath, "a.txt\n")
	env.write(t, "/in/a.txt", "x")

	summary, err := op.ProcessFiles(env.ctx, false)
	require.NoError(t, err)
	assert.Empty(t, summary.Relocated)
	assert.Contains(t, env.console.String(), "no new files to process")

	env.console.Reset()
	env.write(t, "/in/b.txt", "y")
	_, err = op.ProcessFiles(env.ctx, false)
	require.NoError(t, err)
	assert.NotContains(t, env.console.String(), "no new files to process")
}

func TestProcessFilesSkipsDirectories(t *testing.T) {
	env := newTestEnv(t)
	op := env.operator(t, nil)

	env.write(t, "/in/nested/inner.txt", "inner")
	env.write(t, "/in/a.txt", "alpha")

	summary, err := op.ProcessFiles(env.ctx, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt"}, summary.Relocated)
	assert.Equal(t, "inner", env.read(t, "/in/nested/inner.txt"))
	assert.False(t, env.exists(t, "/out/nested"))
}

func TestProcessFilesCancelled(t *testing.T) {
	env := newTestEnv(t)
	op := env.operator(t, nil)
	env.write(t, "/in/a.txt", "alpha")

	ctx, cancel := context.WithCancel(env.ctx)
	cancel()

	summary, err := op.ProcessFiles(ctx, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, summary)
	assert.True(t, summary.Aborted)
	assert.True(t, env.exists(t, "/in/a.txt"))
	assert.Empty(t, env.read(t, recordsPath))
}

func TestProcessFilesPolicies(t *testing.T) {
	permErr := &os.PathError{Op: "rename", Path: "/in/a.txt", Err: fs.ErrPermission}

	t.Run("relocate_error_aborts_by_default", func(t *testing.T) {
		env := newTestEnv(t)
		env.fs = &faultyFs{Fs: env.fs, renameErr: map[string]error{"/in/a.txt": permErr}}
		env.store = records.NewTextStore(env.fs, recordsPath)
		op := env.operator(t, nil)
		env.write(t, "/in/a.txt", "alpha")
		env.write(t, "/in/b.txt", "bravo")

		_, err := op.ProcessFiles(env.ctx, false)
		require.Error(t, err)

		var stepErr *operation.StepError
		require.True(t, errors.As(err, &stepErr))
		assert.Equal(t, operation.KindPermissionDenied, stepErr.Kind)
		assert.True(t, env.exists(t, "/in/b.txt"), "pass should stop at the first failure")
	})

	t.Run("continue_on_error_logs_and_continues", func(t *testing.T) {
		env := newTestEnv(t)
		env.fs = &faultyFs{Fs: env.fs, renameErr: map[string]error{"/in/a.txt": permErr}}
		env.store = records.NewTextStore(env.fs, recordsPath)
		op := env.operator(t, func(o *operation.Options) {
			o.Policies = operation.DefaultPolicies().WithContinueOnError()
		})
		env.write(t, "/in/a.txt", "alpha")
		env.write(t, "/in/b.txt", "bravo")

		summary, err := op.ProcessFiles(env.ctx, false)
		require.NoError(t, err)

		require.Len(t, summary.Failed, 1)
		assert.Equal(t, "a.txt", summary.Failed[0].Name)
		assert.Equal(t, []string{"b.txt"}, summary.Relocated)
		assert.Equal(t, "b.txt\n", env.read(t, recordsPath), "failed file should not be recorded")
		assert.Contains(t, env.console.String(), "permission_denied")
	})

	t.Run("continue_on_error_still_aborts_on_collision", func(t *testing.T) {
		env := newTestEnv(t)
		op := env.operator(t, func(o *operation.Options) {
			o.Policies = operation.DefaultPolicies().WithContinueOnError()
		})
		env.write(t, "/in/a.txt", "alpha")
		env.write(t, "/out/a.txt", "existing")

		_, err := op.ProcessFiles(env.ctx, false)
		require.Error(t, err)
		assert.True(t, errors.Is(err, relocate.ErrCollision))
	})

	t.Run("delete_source_permission_aborts_after_recording", func(t *testing.T) {
		env := newTestEnv(t)
		env.fs = &faultyFs{Fs: env.fs, removeErr: map[string]error{
			"/in/a.txt": &os.PathError{Op: "remove", Path: "/in/a.txt", Err: fs.ErrPermission},
		}}
		env.store = records.NewTextStore(env.fs, recordsPath)
		op := env.operator(t, func(o *operation.Options) { o.Mode = relocate.ModeCopyThenDelete })
		env.write(t, "/in/a.txt", "alpha")

		_, err := op.ProcessFiles(env.ctx, false)
		require.Error(t, err)

		var stepErr *operation.StepError
		require.True(t, errors.As(err, &stepErr))
		assert.Equal(t, operation.StepDeleteSource, stepErr.Step)
		assert.Equal(t, "a.txt\n", env.read(t, recordsPath), "copied file should be recorded before the abort")
	})
}

func TestClearInputDirectory(t *testing.T) {
	env := newTestEnv(t)
	env.store = records.NewTextStore(env.fs, "/in/records.txt")
	op := env.operator(t, func(o *operation.Options) { o.Ignore = []string{"*.tmp"} })

	env.write(t, "/in/a.txt", "alpha")
	env.write(t, "/in/b.tmp", "partial")
	env.write(t, "/in/sub/keep.txt", "keep")

	require.NoError(t, op.ClearInputDirectory(env.ctx))

	assert.Equal(t, []string{"records.txt"}, env.files(t, "/in"), "only the records file should remain")
	assert.Equal(t, "keep", env.read(t, "/in/sub/keep.txt"), "sub-directories should be untouched")
	assert.Contains(t, env.console.String(), "cleared 2 file(s)")
}

func TestClearInputDirectoryIgnoresVanishedFiles(t *testing.T) {
	env := newTestEnv(t)
	env.fs = &faultyFs{Fs: env.fs, removeErr: map[string]error{
		"/in/a.txt": &os.PathError{Op: "remove", Path: "/in/a.txt", Err: fs.ErrNotExist},
	}}
	env.store = records.NewTextStore(env.fs, recordsPath)
	op := env.operator(t, nil)

	env.write(t, "/in/a.txt", "alpha")
	env.write(t, "/in/b.txt", "bravo")

	require.NoError(t, op.ClearInputDirectory(env.ctx))
	assert.False(t, env.exists(t, "/in/b.txt"))
}

func TestClearRecordsFile(t *testing.T) {
	env := newTestEnv(t)
	op := env.operator(t, nil)

	env.write(t, "/in/a.txt", "alpha")
	_, err := op.ProcessFiles(env.ctx, false)
	require.NoError(t, err)

	require.NoError(t, op.ClearRecordsFile(env.ctx))

	set, err := op.LoadRecordSet(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
	assert.Empty(t, env.read(t, recordsPath))
}

func TestStatus(t *testing.T) {
	env := newTestEnv(t)
	op := env.operator(t, func(o *operation.Options) { o.Ignore = []string{"*.tmp"} })

	env.write(t, recordsPath, "a.txt\n")
	env.write(t, "/in/a.txt", "alpha")
	env.write(t, "/in/b.png", "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	env.write(t, "/in/c.txt", "hello world\n")
	env.write(t, "/in/d.tmp", "partial")

	pending, err := op.Status(env.ctx)
	require.NoError(t, err)

	require.Len(t, pending, 2)
	assert.Equal(t, "b.png", pending[0].Name)
	assert.Equal(t, "image/png", pending[0].MIME)
	assert.Equal(t, "c.txt", pending[1].Name)
	assert.Equal(t, int64(len("hello world\n")), pending[1].Size)
	assert.Contains(t, pending[1].MIME, "text/plain")

	assert.Equal(t, []string{"a.txt", "b.png", "c.txt", "d.tmp"}, env.files(t, "/in"), "status should not move anything")
	assert.Equal(t, "a.txt\n", env.read(t, recordsPath))
}

func TestProcessFilesBoltStore(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	env.fs = afero.NewOsFs()
	env.store = records.NewBoltStore(filepath.Join(dir, "state", "records.db"))

	op := env.operator(t, func(o *operation.Options) {
		o.InDir = filepath.Join(dir, "in")
		o.OutDir = filepath.Join(dir, "out")
	})

	env.write(t, filepath.Join(dir, "in", "a.txt"), "alpha")
	env.write(t, filepath.Join(dir, "in", "b.txt"), "bravo")

	summary, err := op.ProcessFiles(env.ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, summary.Relocated)

	set, err := op.LoadRecordSet(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, set.Names())

	summary, err = op.ProcessFiles(env.ctx, false)
	require.NoError(t, err)
	assert.Empty(t, summary.Relocated)
}

// 🔧 faultyFs fails selected renames and removes
type faultyFs struct {
	afero.Fs
	renameErr map[string]error
	removeErr map[string]error
}

func (f *faultyFs) Rename(oldname, newname string) error {
	if err, ok := f.renameErr[oldname]; ok {
		return err
	}
	return f.Fs.Rename(oldname, newname)
}

func (f *faultyFs) Remove(name string) error {
	if err, ok := f.removeErr[name]; ok {
		return err
	}
	return f.Fs.Remove(name)
}
