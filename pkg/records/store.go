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
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// 💾 Store persists a Set between runs
type Store interface {
	// Path returns the location of the records file
	Path() string
	// Ensure creates the records file (and its parent directory) when absent
	Ensure(ctx context.Context) error
	// Load reads the full set from storage
	Load(ctx context.Context) (*Set, error)
	// Save replaces the stored set atomically
	Save(ctx context.Context, set *Set) error
	// Clear discards every stored name
	Clear(ctx context.Context) error
}

// Backend names a Store implementation
type Backend string

const (
	BackendText Backend = "text"
	BackendBolt Backend = "bolt"
)

// ErrUnknownBackend is returned for backend names other than text and bolt.
var ErrUnknownBackend = errors.Base("unknown records backend")

// 🔍 ParseBackend resolves a backend name. An empty name is inferred from
// the records file extension: .db and .bolt select bolt, anything else text.
func ParseBackend(name, path string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(name))) {
	case BackendText:
		return BackendText, nil
	case BackendBolt:
		return BackendBolt, nil
	case "":
		switch strings.ToLower(filepath.Ext(path)) {
		case ".db", ".bolt":
			return BackendBolt, nil
		default:
			return BackendText, nil
		}
	default:
		return "", errors.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// 🏭 Open returns the store for backend at path.
// The bolt backend always works on the OS filesystem.
func Open(fsys afero.Fs, backend Backend, path string) (Store, error) {
	if path == "" {
		return nil, errors.New("records path is required")
	}
	switch backend {
	case BackendText, "":
		return NewTextStore(fsys, path), nil
	case BackendBolt:
		return NewBoltStore(path), nil
	default:
		return nil, errors.Errorf("%w: %q", ErrUnknownBackend, string(backend))
	}
}

// Owns reports whether path is the store's records file or one of the
// temporary files it writes next to it.
func Owns(store Store, path string) bool {
	rec := absPath(store.Path())
	path = absPath(path)
	if path == rec {
		return true
	}
	if filepath.Dir(path) != filepath.Dir(rec) {
		return false
	}
	return strings.HasPrefix(filepath.Base(path), tempPrefix(rec))
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func tempPrefix(path string) string {
	return "." + filepath.Base(path) + ".tmp-"
}
