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
	"bufio"
	"io"
	"strings"
	"unicode"

	"gitlab.com/tozd/go/errors"
)

// maxLineSize bounds a single record line when parsing.
const maxLineSize = 1 << 20

// 📇 Set is the collection of file names already processed.
// It remembers insertion order so that persisted output is stable.
type Set struct {
	names []string
	index map[string]struct{}
}

// 🏭 NewSet creates a set holding the given names
func NewSet(names ...string) *Set {
	s := &Set{index: make(map[string]struct{}, len(names))}
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add inserts name and reports whether it was new. Empty names are ignored.
func (s *Set) Add(name string) bool {
	if name == "" {
		return false
	}
	if _, ok := s.index[name]; ok {
		return false
	}
	s.index[name] = struct{}{}
	s.names = append(s.names, name)
	return true
}

// Contains reports membership
func (s *Set) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Len returns the number of distinct names
func (s *Set) Len() int {
	return len(s.names)
}

// Names returns a copy of the names in insertion order
func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Recordable reports whether name survives a round trip through the records
// file: no line breaks and no trailing whitespace, which ParseSet trims.
func Recordable(name string) bool {
	if name == "" || strings.ContainsAny(name, "\r\n") {
		return false
	}
	return strings.TrimRightFunc(name, unicode.IsSpace) == name
}

// 📖 ParseSet reads one name per line, trimming trailing whitespace and
// dropping blank lines. Repeated lines collapse into one entry.
func ParseSet(r io.Reader) (*Set, error) {
	s := NewSet()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	for scanner.Scan() {
		s.Add(strings.TrimRightFunc(scanner.Text(), unicode.IsSpace))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Errorf("scanning records: %w", err)
	}
	return s, nil
}

// 📝 WriteTo writes the set one name per line, newline terminated
func (s *Set) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	for _, n := range s.names {
		written, err := bw.WriteString(n + "\n")
		total += int64(written)
		if err != nil {
			return total, errors.Errorf("writing record: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return total, errors.Errorf("flushing records: %w", err)
	}
	return total, nil
}
