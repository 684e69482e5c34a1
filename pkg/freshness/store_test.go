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
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFileTime(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(fileTimeEpochDelta), ToFileTime(time.Unix(0, 0)))

	ts := time.Date(2026, 3, 14, 15, 9, 26, 535897900, time.UTC)
	assert.True(t, ts.Equal(FromFileTime(ToFileTime(ts))))

	// Sub-100ns precision is dropped.
	assert.Equal(t, ToFileTime(ts), ToFileTime(ts.Add(99*time.Nanosecond)))
}

func TestParse(t *testing.T) {
	t.Parallel()

	input := "Pong\n133900000000000000\r\n" +
		"Broken\nnot-a-number\n" +
		"Space Race\n133900000000000001\n" +
		"Dangling"

	got, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, Table{
		"Pong":       133900000000000000,
		"Space Race": 133900000000000001,
	}, got)
}

func TestWrite_Sorted(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Table{"b": 2, "a": 1, "bad\nname": 3}))
	assert.Equal(t, "a\n1\nb\n2\n", buf.String())
}

func TestStore_LoadMissing(t *testing.T) {
	t.Parallel()

	s := NewStore(afero.NewMemMapFs(), "/data/freshness.txt")
	got, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_SaveReplacesAtomically(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	s := NewStore(fs, "/data/freshness.txt")

	require.NoError(t, s.Save(Table{"Pong": 1}))
	require.NoError(t, s.Save(Table{"Pong": 2, "Tetris": 3}))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Table{"Pong": 2, "Tetris": 3}, got)

	exists, err := afero.Exists(fs, "/data/freshness.txt.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_SaveFailureKeepsOldFile(t *testing.T) {
	t.Parallel()

	base := afero.NewMemMapFs()
	require.NoError(t, NewStore(base, "/data/freshness.txt").Save(Table{"Pong": 1}))

	ro := NewStore(afero.NewReadOnlyFs(base), "/data/freshness.txt")
	require.Error(t, ro.Save(Table{"Pong": 2}))

	got, err := ro.Load()
	require.NoError(t, err)
	assert.Equal(t, Table{"Pong": 1}, got)
}

func TestParse_NeverFails(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		input := rapid.String().Draw(t, "input")
		_, err := Parse(strings.NewReader(input))
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
	})
}

func TestWriteParse_RoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		names := rapid.SliceOfDistinct(
			rapid.StringMatching(`[A-Za-z0-9 :'!-]{1,24}`),
			func(s string) string { return s },
		).Draw(t, "names")
		in := Table{}
		for _, n := range names {
			in[n] = rapid.Int64().Draw(t, "ft")
		}

		var buf bytes.Buffer
		if err := Write(&buf, in); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		out, err := Parse(&buf)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if len(out) != len(in) {
			t.Fatalf("got %d records, want %d", len(out), len(in))
		}
		for n, ft := range in {
			if out[n] != ft {
				t.Fatalf("record %q: got %d, want %d", n, out[n], ft)
			}
		}
	})
}
