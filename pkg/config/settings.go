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

import (
	"slices"
	"time"
)

// LauncherSettings is a point-in-time snapshot of everything the session
// supervisor and freshness tracker need. A session keeps the snapshot it
// was launched with, so config edits only apply to the next session.
type LauncherSettings struct {
	HooksDisabledFor    []string
	IdleTimeout         time.Duration
	WatchdogWarmup      time.Duration
	WatchdogInterval    time.Duration
	RetentionWindow     time.Duration
	RecheckInterval     time.Duration
	HooksDisabled       bool
	AlwaysLogHookCompat bool
	SkipHookCompatCheck bool
}

// DefaultLauncherSettings returns the settings used with an empty config.
func DefaultLauncherSettings() LauncherSettings {
	return LauncherSettings{
		IdleTimeout:      DefaultIdleTimeout,
		WatchdogWarmup:   DefaultWatchdogWarmup,
		WatchdogInterval: DefaultWatchdogInterval,
		RetentionWindow:  DefaultRetentionDays * 24 * time.Hour,
		RecheckInterval:  DefaultRecheckInterval,
	}
}

// LauncherSettings snapshots the current config values.
func (c *Instance) LauncherSettings() LauncherSettings {
	return LauncherSettings{
		IdleTimeout:         c.IdleTimeout(),
		WatchdogWarmup:      c.WatchdogWarmup(),
		WatchdogInterval:    c.WatchdogInterval(),
		RetentionWindow:     c.FreshnessRetention(),
		RecheckInterval:     c.FreshnessRecheckInterval(),
		HooksDisabledFor:    c.HooksDisabledGames(),
		HooksDisabled:       c.HooksDisabled(),
		AlwaysLogHookCompat: c.AlwaysLogHookCompat(),
		SkipHookCompatCheck: c.SkipHookCompatCheck(),
	}
}

// HooksEnabledFor reports whether a game may be hooked, given its own
// hooks flag and the global and per-game disablement settings.
func (s LauncherSettings) HooksEnabledFor(name string, gameHooks bool) bool {
	if s.HooksDisabled || !gameHooks {
		return false
	}
	return !slices.Contains(s.HooksDisabledFor, name)
}
