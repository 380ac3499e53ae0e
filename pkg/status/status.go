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

package status

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// 📊 Outcome is what a pass did with one input file
type Outcome int

const (
	OutcomeUnknown   Outcome = iota
	OutcomeRelocated         // Moved or copied, name recorded
	OutcomeSkipped           // Already in the record set
	OutcomeIgnored           // Matched an ignore rule or has an unrecordable name
	OutcomeDeleted           // Source removed after relocation
	OutcomeNotFound          // Source already gone when the delete step ran
	OutcomeFailed            // A step failed and the policy let the pass continue
)

// String returns a string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeRelocated:
		return "relocated"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeDeleted:
		return "deleted"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// follow-up outcomes describe a second step on a file already counted
func (o Outcome) followUp() bool {
	return o == OutcomeDeleted || o == OutcomeNotFound
}

// 📄 FileResult is one tracked outcome
type FileResult struct {
	Name    string
	Outcome Outcome
	Err     error
}

// 📋 Summary collects the outcomes of one pass, in the order they happened
type Summary struct {
	Job       string
	Total     int
	Relocated []string
	Skipped   []string
	Ignored   []string
	Deleted   []string
	NotFound  []string
	Failed    []FileResult
	Aborted   bool
}

// Count returns how many files ended with outcome
func (s *Summary) Count(outcome Outcome) int {
	switch outcome {
	case OutcomeRelocated:
		return len(s.Relocated)
	case OutcomeSkipped:
		return len(s.Skipped)
	case OutcomeIgnored:
		return len(s.Ignored)
	case OutcomeDeleted:
		return len(s.Deleted)
	case OutcomeNotFound:
		return len(s.NotFound)
	case OutcomeFailed:
		return len(s.Failed)
	default:
		return 0
	}
}

// Changed reports whether the pass touched the filesystem
func (s *Summary) Changed() bool {
	return len(s.Relocated) > 0 || len(s.Deleted) > 0
}

// 📈 Tracker records per-file outcomes and reports progress
type Tracker struct {
	formatter FileFormatter

	mu        sync.Mutex
	summary   Summary
	processed int
}

// 🏭 NewTracker creates a tracker for the named job
func NewTracker(job string) *Tracker {
	return &Tracker{
		formatter: NewDefaultFileFormatter(),
		summary:   Summary{Job: job},
	}
}

// Start resets progress for a pass over total candidates
func (t *Tracker) Start(ctx context.Context, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.summary = Summary{Job: t.summary.Job, Total: total}
	t.processed = 0
	zerolog.Ctx(ctx).Debug().
		Str("job", t.summary.Job).
		Int("total", total).
		Msg(t.formatter.FormatProgress(0, total))
}

// Track records one outcome. Follow-up outcomes (deleted, not found) do not
// advance progress since the file was already counted.
func (t *Tracker) Track(ctx context.Context, name string, outcome Outcome, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch outcome {
	case OutcomeRelocated:
		t.summary.Relocated = append(t.summary.Relocated, name)
	case OutcomeSkipped:
		t.summary.Skipped = append(t.summary.Skipped, name)
	case OutcomeIgnored:
		t.summary.Ignored = append(t.summary.Ignored, name)
	case OutcomeDeleted:
		t.summary.Deleted = append(t.summary.Deleted, name)
	case OutcomeNotFound:
		t.summary.NotFound = append(t.summary.NotFound, name)
	case OutcomeFailed:
		t.summary.Failed = append(t.summary.Failed, FileResult{Name: name, Outcome: outcome, Err: err})
	}

	if !outcome.followUp() {
		t.processed++
	}

	ev := zerolog.Ctx(ctx).Debug()
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Str("job", t.summary.Job).
		Str("file", name).
		Str("outcome", outcome.String()).
		Int("processed", t.processed).
		Int("total", t.summary.Total).
		Msg(t.formatter.FormatOutcome(name, outcome))
}

// Abort marks the pass as stopped early
func (t *Tracker) Abort(ctx context.Context, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.summary.Aborted = true
	zerolog.Ctx(ctx).Debug().Err(err).Str("job", t.summary.Job).Msg(t.formatter.FormatError(err))
}

// Finish closes the pass and returns a copy of the summary
func (t *Tracker) Finish(ctx context.Context) *Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	zerolog.Ctx(ctx).Debug().
		Str("job", t.summary.Job).
		Int("processed", t.processed).
		Int("total", t.summary.Total).
		Msg(t.formatter.FormatProgress(t.processed, t.summary.Total))

	out := t.summary
	out.Relocated = append([]string(nil), t.summary.Relocated...)
	out.Skipped = append([]string(nil), t.summary.Skipped...)
	out.Ignored = append([]string(nil), t.summary.Ignored...)
	out.Deleted = append([]string(nil), t.summary.Deleted...)
	out.NotFound = append([]string(nil), t.summary.NotFound...)
	out.Failed = append([]FileResult(nil), t.summary.Failed...)
	return &out
}

// Processed returns how many candidates have been handled so far
func (t *Tracker) Processed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.processed
}
