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
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/filesync/pkg/records"
	"gitlab.com/tozd/go/errors"
)

const reasonUnrecordable = "name cannot be stored in the records file"

// 📄 entry is a regular file found directly in the input directory
type entry struct {
	name string
	path string
	info os.FileInfo
	// ignored is the reason the file is reported but never relocated
	ignored string
}

// scan lists the regular files in the input directory, sorted by name.
// The records file and its temp files are dropped silently.
func (o *operator) scan(ctx context.Context) ([]entry, error) {
	logger := zerolog.Ctx(ctx)

	infos, err := afero.ReadDir(o.fs, o.inDir)
	if err != nil {
		return nil, errors.Errorf("reading input directory: %w", err)
	}

	entries := make([]entry, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		path := filepath.Join(o.inDir, name)

		if !info.Mode().IsRegular() {
			logger.Debug().Str("file", name).Str("mode", info.Mode().String()).Msg("skipping non-regular entry")
			continue
		}
		if records.Owns(o.store, path) {
			logger.Debug().Str("file", name).Msg("skipping records file")
			continue
		}

		e := entry{name: name, path: path, info: info}
		if !records.Recordable(name) {
			e.ignored = reasonUnrecordable
		} else if pattern, ok := o.shouldIgnore(ctx, name); ok {
			e.ignored = pattern
		}
		entries = append(entries, e)
	}

	logger.Debug().Str("dir", o.inDir).Int("files", len(entries)).Msg("scanned input directory")
	return entries, nil
}

// 🔍 shouldIgnore returns the first ignore pattern matching name
func (o *operator) shouldIgnore(ctx context.Context, name string) (string, bool) {
	for _, pattern := range o.ignore {
		matched, err := doublestar.Match(pattern, name)
		if err != nil {
			zerolog.Ctx(ctx).Debug().Str("pattern", pattern).Str("file", name).Err(err).Msg("error matching pattern")
			continue
		}
		if matched {
			zerolog.Ctx(ctx).Debug().Str("file", name).Str("pattern", pattern).Msg("file ignored by pattern")
			return pattern, true
		}
	}
	return "", false
}
