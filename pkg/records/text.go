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

package records

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

const recordsFileMode os.FileMode = 0o644

// 📄 TextStore keeps the set in a flat text file, one name per line
type TextStore struct {
	fs   afero.Fs
	path string
}

// NewTextStore creates a text store at path on fsys
func NewTextStore(fsys afero.Fs, path string) *TextStore {
	return &TextStore{fs: fsys, path: filepath.Clean(path)}
}

func (s *TextStore) Path() string {
	return s.path
}

// Ensure creates the parent directory and an empty records file if needed
func (s *TextStore) Ensure(ctx context.Context) error {
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Errorf("creating records directory: %w", err)
	}

	f, err := s.fs.OpenFile(s.path, os.O_CREATE|os.O_WRONLY, recordsFileMode)
	if err != nil {
		return errors.Errorf("creating records file: %w", err)
	}
	if err := f.Close(); err != nil {
		return errors.Errorf("closing records file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", s.path).Msg("records file ready")
	return nil
}

// Load reads the records file
func (s *TextStore) Load(ctx context.Context) (*Set, error) {
	f, err := s.fs.Open(s.path)
	if err != nil {
		return nil, errors.Errorf("opening records file: %w", err)
	}
	defer f.Close()

	set, err := ParseSet(f)
	if err != nil {
		return nil, errors.Errorf("parsing records file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", s.path).Int("records", set.Len()).Msg("loaded records")
	return set, nil
}

// Save writes the set to a temp file beside the records file and renames it into place
func (s *TextStore) Save(ctx context.Context, set *Set) (err error) {
	dir := filepath.Dir(s.path)

	tmp, err := afero.TempFile(s.fs, dir, tempPrefix(s.path)+"*")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = s.fs.Remove(tmpName)
		}
	}()

	if _, err = set.WriteTo(tmp); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return errors.Errorf("syncing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}
	if err = s.fs.Chmod(tmpName, recordsFileMode); err != nil {
		return errors.Errorf("setting records file mode: %w", err)
	}
	if err = s.fs.Rename(tmpName, s.path); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", s.path).Int("records", set.Len()).Msg("saved records")
	return nil
}

// Clear replaces the records file with an empty one
func (s *TextStore) Clear(ctx context.Context) error {
	if err := s.Save(ctx, NewSet()); err != nil {
		return errors.Errorf("clearing records file: %w", err)
	}
	return nil
}
