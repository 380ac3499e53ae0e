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

	"github.com/walteh/filesync/pkg/log"
	"github.com/walteh/filesync/pkg/relocate"
	"gitlab.com/tozd/go/errors"
)

// ClearInputDirectory implements Operator.ClearInputDirectory.
// Sub-directories and the records file are left alone. Ignore patterns do
// not protect a file here.
func (o *operator) ClearInputDirectory(ctx context.Context) error {
	console := o.console(ctx)

	entries, err := o.scan(ctx)
	if err != nil {
		return err
	}

	removed := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("clearing cancelled: %w", err)
		}

		if err := relocate.Remove(o.fs, e.path); err != nil {
			if _, herr := o.handle(ctx, StepClearInput, e.name, err); herr != nil {
				return errors.Errorf("clearing input directory: %w", herr)
			}
			continue
		}

		removed++
		console.LogFileOperation(ctx, log.FileOperation{
			Name:   e.name,
			Event:  log.EventDeleted,
			Action: "deleted",
			Detail: "cleared",
		})
	}

	console.Successf("cleared %d file(s) from %s", removed, o.inDir)
	return nil
}
