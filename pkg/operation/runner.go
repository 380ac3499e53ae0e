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

	"github.com/rs/zerolog"
	"github.com/walteh/filesync/pkg/log"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// ErrOverlappingJobs is returned when async jobs would share a path
var ErrOverlappingJobs = errors.Base("jobs share a path and cannot run concurrently")

// Action is run once per job
type Action func(ctx context.Context, op Operator) error

// 🏃 OperationRunner executes an action over many jobs
type OperationRunner struct {
	async bool
}

// 🏗️ NewRunner creates a new runner
func NewRunner(async bool) *OperationRunner {
	return &OperationRunner{
		async: async,
	}
}

// 🏃 Run executes action for every operator
func (r *OperationRunner) Run(ctx context.Context, ops []Operator, action Action) error {
	if r.async && len(ops) > 1 {
		return r.runAsync(ctx, ops, action)
	}
	return r.runSync(ctx, ops, action)
}

// 🔄 runSync runs jobs one after another, stopping at the first error
func (r *OperationRunner) runSync(ctx context.Context, ops []Operator, action Action) error {
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("operation cancelled: %w", err)
		}
		if err := action(ctx, op); err != nil {
			return errors.Errorf("job %s: %w", op.Name(), err)
		}
	}
	return nil
}

// ⚡ runAsync runs jobs concurrently. The first failure cancels the rest.
func (r *OperationRunner) runAsync(ctx context.Context, ops []Operator, action Action) error {
	if err := checkOverlap(ops); err != nil {
		return err
	}

	parent := log.FromContext(ctx)
	g, gctx := errgroup.WithContext(ctx)
	for _, op := range ops {
		g.Go(func() error {
			jobCtx := log.NewContext(gctx, parent.Fork())
			jobCtx = zerolog.Ctx(gctx).With().Str("job", op.Name()).Logger().WithContext(jobCtx)
			if err := action(jobCtx, op); err != nil {
				return errors.Errorf("job %s: %w", op.Name(), err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return nil
}

// checkOverlap refuses job sets where any path of one job is a path of another
func checkOverlap(ops []Operator) error {
	owner := make(map[string]string)
	for _, op := range ops {
		p := op.Paths()
		seen := make(map[string]bool, 3)
		for _, path := range []string{p.In, p.Out, p.Records} {
			key := absPath(path)
			if seen[key] {
				continue
			}
			seen[key] = true
			if other, ok := owner[key]; ok {
				return errors.Errorf("%w: %s and %s both use %s", ErrOverlappingJobs, other, op.Name(), path)
			}
			owner[key] = op.Name()
		}
	}
	return nil
}
