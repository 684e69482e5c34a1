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
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/games"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Rechecker re-runs the tracker on an interval while any game has a badge,
// so badges expire without a restart. It stops itself once no badges are
// left and is re-armed by Ensure after the next pass that adds one.
type Rechecker struct {
	clock    clockwork.Clock
	tracker  *Tracker
	games    func() []games.Game
	onChange func(map[string]Status)
	timer    clockwork.Timer
	interval time.Duration
	stopped  bool
	mu       syncutil.Mutex
}

// NewRechecker creates a stopped rechecker. gamesFn returns the current game
// list and onChange is called with all badges after a pass that changed any.
func NewRechecker(
	clock clockwork.Clock,
	interval time.Duration,
	tracker *Tracker,
	gamesFn func() []games.Game,
	onChange func(map[string]Status),
) *Rechecker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Rechecker{
		clock:    clock,
		interval: interval,
		tracker:  tracker,
		games:    gamesFn,
		onChange: onChange,
	}
}

// Ensure arms the timer if a game has a badge and it isn't already armed.
func (r *Rechecker) Ensure() {
	if !r.tracker.HasBadges() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped || r.timer != nil {
		return
	}
	r.timer = r.clock.AfterFunc(r.interval, r.recheck)
	log.Debug().Dur("interval", r.interval).Msg("freshness: recheck scheduled")
}

// Armed reports whether a recheck is pending.
func (r *Rechecker) Armed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timer != nil
}

func (r *Rechecker) recheck() {
	changed := r.tracker.Evaluate(r.games(), false)
	if changed && r.onChange != nil {
		r.onChange(r.tracker.Badges())
	}

	badged := r.tracker.HasBadges()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	if !badged {
		log.Debug().Msg("freshness: no badges left, recheck stopped")
		r.timer = nil
		return
	}
	r.timer = r.clock.AfterFunc(r.interval, r.recheck)
}

func (r *Rechecker) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
