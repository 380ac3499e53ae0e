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

package relocate

import (
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// 🚚 Mode selects how a file leaves the input directory
type Mode string

const (
	ModeMove           Mode = "move"
	ModeCopy           Mode = "copy"
	ModeCopyThenDelete Mode = "copy-then-delete"
)

// ErrCollision is returned when the destination already has an entry with the same name.
var ErrCollision = errors.Base("destination already exists")

// ErrUnknownMode is returned by ParseMode for anything other than the three modes.
var ErrUnknownMode = errors.Base("unknown transfer mode")

// 🔍 ParseMode parses a mode name, empty means move
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeMove:
		return ModeMove, nil
	case ModeCopy:
		return ModeCopy, nil
	case ModeCopyThenDelete, "copy_then_delete":
		return ModeCopyThenDelete, nil
	default:
		return "", errors.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// String returns the mode name
func (m Mode) String() string {
	return string(m)
}

// DeletesSource reports whether the mode always removes the original after copying.
func (m Mode) DeletesSource() bool {
	return m == ModeCopyThenDelete
}

// Verb is the past-tense word used in user-facing messages.
func (m Mode) Verb() string {
	if m == ModeMove {
		return "moved"
	}
	return "copied"
}

// swapped in tests to simulate cross-device renames
var renameFunc = func(fsys afero.Fs, src, dst string) error {
	if _, ok := fsys.(*afero.OsFs); ok {
		return linkRename(src, dst)
	}
	return fsys.Rename(src, dst)
}

// linkRename moves src to dst without replacing an existing dst: the hard
// link fails when dst exists, then src is unlinked. Filesystems without hard
// links fall back to a plain rename.
func linkRename(src, dst string) error {
	err := os.Link(src, dst)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrExist):
		return errors.Errorf("%w: %s", ErrCollision, dst)
	case isEXDEV(err):
		return err
	default:
		return os.Rename(src, dst)
	}

	if err := os.Remove(src); err != nil {
		_ = os.Remove(dst)
		return errors.Errorf("unlinking source: %w", err)
	}
	return nil
}

// 📦 Relocate transfers src to dst according to mode.
// An existing dst yields ErrCollision. Copies create dst exclusively and moves
// on the OS filesystem go through a hard link, so a dst that appears after the
// check is not replaced either. A rename on filesystems without hard links
// still has that window.
func Relocate(fsys afero.Fs, mode Mode, src, dst string) error {
	if err := checkCollision(fsys, dst); err != nil {
		return err
	}

	switch mode {
	case ModeMove:
		return Move(fsys, src, dst)
	case ModeCopy, ModeCopyThenDelete:
		return Copy(fsys, src, dst)
	default:
		return errors.Errorf("%w: %q", ErrUnknownMode, string(mode))
	}
}

// Move renames src to dst, falling back to copy and remove across devices.
func Move(fsys afero.Fs, src, dst string) error {
	err := renameFunc(fsys, src, dst)
	if err == nil {
		return nil
	}
	if !isEXDEV(err) {
		return errors.Errorf("renaming %s: %w", src, err)
	}

	if err := Copy(fsys, src, dst); err != nil {
		return errors.Errorf("copying across devices: %w", err)
	}
	if err := fsys.Remove(src); err != nil {
		return errors.Errorf("removing source after cross-device copy: %w", err)
	}
	return nil
}

// Copy streams src into a newly created dst, keeping the permission bits.
func Copy(fsys afero.Fs, src, dst string) (err error) {
	in, err := fsys.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Errorf("reading source info: %w", err)
	}

	out, err := fsys.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return errors.Errorf("%w: %s", ErrCollision, dst)
		}
		return errors.Errorf("creating destination file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = out.Close()
			_ = fsys.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return errors.Errorf("copying file content: %w", err)
	}
	if err = out.Sync(); err != nil {
		return errors.Errorf("syncing destination file: %w", err)
	}
	if err = out.Close(); err != nil {
		return errors.Errorf("closing destination file: %w", err)
	}
	return nil
}

// 🗑️ Remove deletes a single file
func Remove(fsys afero.Fs, path string) error {
	if err := fsys.Remove(path); err != nil {
		return errors.Errorf("deleting file: %w", err)
	}
	return nil
}

// Lstat stats path without following a final symlink when the filesystem allows it.
func Lstat(fsys afero.Fs, path string) (os.FileInfo, error) {
	if l, ok := fsys.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return fsys.Stat(path)
}

func checkCollision(fsys afero.Fs, dst string) error {
	_, err := Lstat(fsys, dst)
	if err == nil {
		return errors.Errorf("%w: %s", ErrCollision, dst)
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return errors.Errorf("checking destination: %w", err)
}
