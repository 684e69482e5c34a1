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
	DefaultRetentionDays   = 14
	DefaultRecheckInterval = time.Hour
)

// Freshness configures the new/updated badges shown on games.
type Freshness struct {
	RetentionDays   *int   `toml:"retention_days,omitempty"`
	RecheckInterval string `toml:"recheck_interval,omitempty"`
}

// FreshnessRetention returns how long a new or updated badge stays visible.
func (c *Instance) FreshnessRetention() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	days := DefaultRetentionDays
	if c.vals.Freshness.RetentionDays != nil && *c.vals.Freshness.RetentionDays >= 0 {
		days = *c.vals.Freshness.RetentionDays
	}
	return time.Duration(days) * 24 * time.Hour
}

func (c *Instance) SetFreshnessRetentionDays(days int) error {
	if days < 0 {
		return fmt.Errorf("invalid retention: %d days", days)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Freshness.RetentionDays = &days
	return nil
}

// FreshnessRecheckInterval returns how often badges are re-evaluated while
// any game has one.
func (c *Instance) FreshnessRecheckInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, _ := parseDuration(c.vals.Freshness.RecheckInterval, DefaultRecheckInterval)
	if d == 0 {
		return DefaultRecheckInterval
	}
	return d
}
