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

package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortByName(t *testing.T) {
	t.Parallel()

	gs := []Game{{Name: "doom"}, {Name: "Asteroids"}, {Name: "Doom"}, {Name: "quake"}}
	SortByName(gs)

	names := make([]string, 0, len(gs))
	for _, g := range gs {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"Asteroids", "Doom", "doom", "quake"}, names)
}

func TestFind(t *testing.T) {
	t.Parallel()

	gs := []Game{{Name: "Doom", Exe: "/a"}, {Name: "Quake", Exe: "/b"}}

	g, ok := Find(gs, "Quake")
	assert.True(t, ok)
	assert.Equal(t, "/b", g.Exe)

	_, ok = Find(gs, "quake")
	assert.False(t, ok)
}

func TestSplitArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "spaces only", in: "   ", want: nil},
		{name: "simple", in: "-w 1920 -h 1080", want: []string{"-w", "1920", "-h", "1080"}},
		{name: "quoted", in: `-config "my config.cfg" -x`, want: []string{"-config", "my config.cfg", "-x"}},
		{name: "empty quotes", in: `-name ""`, want: []string{"-name", ""}},
		{name: "tabs", in: "a\tb", want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SplitArgs(tt.in))
		})
	}
}
