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

	"github.com/rs/zerolog"
	"github.com/walteh/filesync/pkg/log"
	"github.com/walteh/filesync/pkg/records"
	"github.com/walteh/filesync/pkg/relocate"
	"github.com/walteh/filesync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// ProcessFiles implements Operator.ProcessFiles.
// The summary is returned even when the pass aborts; the record set is
// saved in both cases so every relocated file stays recorded.
func (o *operator) ProcessFiles(ctx context.Context, deleteAfter bool) (*status.Summary, error) {
	logger := zerolog.Ctx(ctx)
	console := o.console(ctx)

	set, err := o.LoadRecordSet(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := o.scan(ctx)
	if err != nil {
		return nil, err
	}

	console.StartJob(ctx, log.JobOperation{
		Name:    o.name,
		InDir:   o.inDir,
		OutDir:  o.outDir,
		Records: o.store.Path(),
		Mode:    o.mode.String(),
	})
	defer console.EndJob(ctx)

	tracker := status.NewTracker(o.name)
	tracker.Start(ctx, len(entries))

	before := set.Len()
	runErr := o.processEntries(ctx, set, entries, deleteAfter, tracker)
	if runErr != nil {
		tracker.Abort(ctx, runErr)
	}

	if set.Len() != before {
		if err := o.store.Save(ctx, set); err != nil {
			if runErr == nil {
				runErr = errors.Errorf("saving record set: %w", err)
			} else {
				logger.Error().Err(err).Msg("saving record set after abort")
			}
		}
	}

	summary := tracker.Finish(ctx)
	if runErr != nil {
		return summary, errors.Errorf("processing %s: %w", o.name, runErr)
	}
	return summary, nil
}

func (o *operator) processEntries(ctx context.Context, set *records.Set, entries []entry, deleteAfter bool, tracker *status.Tracker) error {
	logger := zerolog.Ctx(ctx)
	console := o.console(ctx)
	deleteSource := deleteAfter || o.mode.DeletesSource()
	pending := 0

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("pass cancelled: %w", err)
		}

		if e.ignored != "" {
			if e.ignored == reasonUnrecordable {
				console.Warningf("%q: %s", e.name, reasonUnrecordable)
			}
			tracker.Track(ctx, e.name, status.OutcomeIgnored, nil)
			console.LogFileOperation(ctx, log.FileOperation{
				Name:   e.name,
				Event:  log.EventIgnored,
				Action: "ignored",
				Detail: e.ignored,
			})
			continue
		}

		if set.Contains(e.name) {
			logger.Debug().Str("file", e.name).Msg("already recorded")
			tracker.Track(ctx, e.name, status.OutcomeSkipped, nil)
			continue
		}

		pending++
		dst := filepath.Join(o.outDir, e.name)
		if err := relocate.Relocate(o.fs, o.mode, e.path, dst); err != nil {
			if _, herr := o.handle(ctx, StepRelocate, e.name, err); herr != nil {
				return herr
			}
			tracker.Track(ctx, e.name, status.OutcomeFailed, err)
			continue
		}

		set.Add(e.name)
		tracker.Track(ctx, e.name, status.OutcomeRelocated, nil)
		console.LogFileOperation(ctx, log.FileOperation{
			Name:   e.name,
			Event:  log.EventRelocated,
			Action: o.mode.Verb(),
			Detail: "processed",
		})

		if !deleteSource {
			continue
		}

		if err := relocate.Remove(o.fs, e.path); err != nil {
			kind, herr := o.handle(ctx, StepDeleteSource, e.name, err)
			if herr != nil {
				return herr
			}
			outcome := status.OutcomeFailed
			if kind == KindNotFound {
				outcome = status.OutcomeNotFound
			}
			tracker.Track(ctx, e.name, outcome, err)
			continue
		}

		tracker.Track(ctx, e.name, status.OutcomeDeleted, nil)
		console.LogFileOperation(ctx, log.FileOperation{
			Name:   e.name,
			Event:  log.EventDeleted,
			Action: "deleted",
		})
	}

	if pending == 0 {
		console.Infof("no new files to process in %s", o.inDir)
	}
	return nil
}
