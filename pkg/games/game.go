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

// Package games describes launchable games and how they are found on disk.
package games

import (
	"sort"
	"strings"
)

const (
	DefaultPlayers = 1
	DefaultVolume  = 100
	InfoFile       = "game.ini"
	InfoSection    = "game"
)

// Game is the immutable description of one launchable game. Name is the
// identity key: two games with the same name are the same game.
type Game struct {
	Name        string
	Description string
	Version     string
	// Exe is the absolute path to the game executable.
	Exe string
	// Folder is the working directory the game is started in.
	Folder  string
	Args    []string
	Players int
	// Volume is the desired master volume (0-100) while the game runs.
	Volume int
	// Hooks enables keyboard activity tracking (and so the idle timeout)
	// for this game.
	Hooks bool
}

// SortByName orders games alphabetically, ignoring case.
func SortByName(gs []Game) {
	sort.SliceStable(gs, func(i, j int) bool {
		a, b := strings.ToLower(gs[i].Name), strings.ToLower(gs[j].Name)
		if a == b {
			return gs[i].Name < gs[j].Name
		}
		return a < b
	})
}

// Find returns the game with the given name.
func Find(gs []Game, name string) (Game, bool) {
	for _, g := range gs {
		if g.Name == name {
			return g, true
		}
	}
	return Game{}, false
}

// SplitArgs splits a launch argument string on whitespace, keeping double
// quoted sections together and stripping the quotes.
func SplitArgs(s string) []string {
	var (
		args    []string
		current strings.Builder
		quoted  bool
		started bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case !quoted && (r == ' ' || r == '\t'):
			if started {
				args = append(args, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if started {
		args = append(args, current.String())
	}
	return args
}
