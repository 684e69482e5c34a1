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
	"fmt"
	"time"
)

const (
	DefaultIdleTimeout      = 8 * time.Minute
	DefaultWatchdogWarmup   = 2500 * time.Millisecond
	DefaultWatchdogInterval = 5 * time.Second
)

// Session configures how a running game is supervised. Durations use Go
// syntax ("8m", "2500ms").
type Session struct {
	IdleTimeout      string `toml:"idle_timeout,omitempty"`
	WatchdogWarmup   string `toml:"watchdog_warmup,omitempty"`
	WatchdogInterval string `toml:"watchdog_interval,omitempty"`
}

// parseDuration parses s, returning def for an empty string.
func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if d < 0 {
		return def, fmt.Errorf("negative duration %q", s)
	}
	return d, nil
}

// IdleTimeout returns how long a hooked game may go without keyboard input
// before it is asked to close. Zero disables the timeout.
func (c *Instance) IdleTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, _ := parseDuration(c.vals.Session.IdleTimeout, DefaultIdleTimeout)
	return d
}

// SetIdleTimeout sets the idle timeout from a duration string. Pass an empty
// string to restore the default.
func (c *Instance) SetIdleTimeout(duration string) error {
	if _, err := parseDuration(duration, 0); err != nil {
		return fmt.Errorf("invalid idle timeout: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Session.IdleTimeout = duration
	return nil
}

// WatchdogWarmup returns the delay before the first responsiveness check.
func (c *Instance) WatchdogWarmup() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, _ := parseDuration(c.vals.Session.WatchdogWarmup, DefaultWatchdogWarmup)
	return d
}

// WatchdogInterval returns the delay between responsiveness checks.
func (c *Instance) WatchdogInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, _ := parseDuration(c.vals.Session.WatchdogInterval, DefaultWatchdogInterval)
	if d == 0 {
		return DefaultWatchdogInterval
	}
	return d
}

// SetWatchdogInterval sets the polling interval from a duration string.
func (c *Instance) SetWatchdogInterval(duration string) error {
	d, err := parseDuration(duration, DefaultWatchdogInterval)
	if err != nil {
		return fmt.Errorf("invalid watchdog interval: %w", err)
	}
	if d == 0 {
		return fmt.Errorf("invalid watchdog interval: must be greater than zero")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Session.WatchdogInterval = duration
	return nil
}
