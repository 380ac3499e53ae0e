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
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"
)

// 📄 PendingFile is a file the next pass would relocate
type PendingFile struct {
	Name string
	Size int64
	MIME string
}

// 🎯 RenderSummary renders the per-outcome counts of a pass as a table
func RenderSummary(s *Summary) (string, error) {
	data := pterm.TableData{
		{"Outcome", "Files"},
	}
	for _, o := range []Outcome{
		OutcomeRelocated,
		OutcomeSkipped,
		OutcomeIgnored,
		OutcomeDeleted,
		OutcomeNotFound,
		OutcomeFailed,
	} {
		data = append(data, []string{o.String(), fmt.Sprintf("%d", s.Count(o))})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", errors.Errorf("rendering summary table: %w", err)
	}

	var b strings.Builder
	title := s.Job
	if title == "" {
		title = "summary"
	}
	if s.Aborted {
		title += " (aborted)"
	}
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(out)

	for _, f := range s.Failed {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("❌ %s: %v", f.Name, f.Err))
	}
	return b.String(), nil
}

// 🎯 RenderPending renders the dry-run listing
func RenderPending(files []PendingFile) (string, error) {
	if len(files) == 0 {
		return "nothing to sync", nil
	}

	data := pterm.TableData{
		{"File", "Size", "Type"},
	}
	var total int64
	for _, f := range files {
		data = append(data, []string{f.Name, FormatSize(f.Size), f.MIME})
		total += f.Size
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", errors.Errorf("rendering pending table: %w", err)
	}
	return fmt.Sprintf("%s\n%d file(s), %s", out, len(files), FormatSize(total)), nil
}
