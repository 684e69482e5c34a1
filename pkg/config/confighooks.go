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

package config

import "slices"

// Hooks configures the global keyboard hook used for idle detection.
type Hooks struct {
	DisabledGames   []string `toml:"disabled_games,omitempty,multiline"`
	Disabled        bool     `toml:"disabled,omitempty"`
	AlwaysLogCompat bool     `toml:"always_log_compat,omitempty"`
	SkipCompatCheck bool     `toml:"skip_compat_check,omitempty"`
}

func (c *Instance) HooksDisabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Hooks.Disabled
}

func (c *Instance) SetHooksDisabled(disabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Hooks.Disabled = disabled
}

// HooksDisabledGames returns the names of games that never get hooked.
func (c *Instance) HooksDisabledGames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.vals.Hooks.DisabledGames)
}

func (c *Instance) SetHooksDisabledGames(names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Hooks.DisabledGames = slices.Clone(names)
}

// AlwaysLogHookCompat makes the bitness probe run (and log) even for games
// that aren't hooked.
func (c *Instance) AlwaysLogHookCompat() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Hooks.AlwaysLogCompat
}

// SkipHookCompatCheck hooks without probing the game's bitness.
func (c *Instance) SkipHookCompatCheck() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Hooks.SkipCompatCheck
}

func (c *Instance) SetSkipHookCompatCheck(skip bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Hooks.SkipCompatCheck = skip
}
