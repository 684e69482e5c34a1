// Zaparoo Launcher
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Launcher.
//
// Zaparoo Launcher is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Launcher is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Launcher.  If not, see <http://www.gnu.org/licenses/>.

package freshness

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Table maps game names to the FILETIME of the last known executable
// modification.
type Table map[string]int64

// Store persists a Table as a flat text file with two lines per game: the
// name, then the timestamp. There is no header and no count.
type Store struct {
	fs   afero.Fs
	path string
}

func NewStore(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the table. A missing file is an empty table.
func (s *Store) Load() (Table, error) {
	f, err := s.fs.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Table{}, nil
	} else if err != nil {
		return Table{}, fmt.Errorf("failed to open freshness file: %w", err)
	}
	defer func() { _ = f.Close() }()

	t, err := Parse(f)
	if err != nil {
		return t, fmt.Errorf("failed to read freshness file: %w", err)
	}
	return t, nil
}

// Save replaces the file with t. The new table is written to a temp file
// first so a failed write never leaves a truncated table behind.
func (s *Store) Save(t Table) error {
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create freshness dir: %w", err)
	}

	tmp := s.path + ".tmp"
	f, err := s.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := Write(f, t); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to replace freshness file: %w", err)
	}
	return nil
}

// Parse reads name/timestamp line pairs. A pair whose timestamp isn't an
// integer is skipped, as is a trailing name with no timestamp.
func Parse(r io.Reader) (Table, error) {
	t := Table{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		name := strings.TrimRight(sc.Text(), "\r")
		if !sc.Scan() {
			log.Debug().Str("name", name).Msg("freshness: ignoring trailing entry")
			break
		}
		raw := strings.TrimSpace(sc.Text())
		ft, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || name == "" {
			log.Debug().Str("name", name).Str("value", raw).Msg("freshness: skipping malformed entry")
			continue
		}
		t[name] = ft
	}
	return t, sc.Err()
}

// Write writes t sorted by name. Names that would break the line format
// are left out.
func Write(w io.Writer, t Table) error {
	names := make([]string, 0, len(t))
	for name := range t {
		if strings.ContainsAny(name, "\r\n") {
			log.Warn().Str("name", name).Msg("freshness: name has a line break, not saving")
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)

	bw := bufio.NewWriter(w)
	for _, name := range names {
		if _, err := fmt.Fprintf(bw, "%s\n%d\n", name, t[name]); err != nil {
			return fmt.Errorf("failed to write freshness entry: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write freshness file: %w", err)
	}
	return nil
}
