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

// Package freshness tracks which games are new or recently updated, across
// launcher restarts.
package freshness

import (
	"maps"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/games"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type Status int

const (
	Stale Status = iota
	New
	Updated
)

func (s Status) String() string {
	switch s {
	case New:
		return "new"
	case Updated:
		return "updated"
	default:
		return "stale"
	}
}

// Tracker classifies games as New, Updated or Stale by comparing each
// executable's modification time with the persisted table.
//
// A stored timestamp is the executable's modification time when the game
// was first seen. It's left alone while the game shows Updated, and set to
// the current time when a badge expires, which closes the freshness window:
// from then on the executable looks older than its record.
//
// Between passes an unchanged game keeps the badge it has. Only a first
// sighting or the startup pass grants New. After a restart a New badge ages
// from the stored mod time, not from when the game was first seen.
type Tracker struct {
	fs        afero.Fs
	store     *Store
	clock     clockwork.Clock
	badges    map[string]Status
	badgedAt  map[string]time.Time
	retention time.Duration
	mu        syncutil.Mutex
}

func NewTracker(fs afero.Fs, store *Store, clock clockwork.Clock, retention time.Duration) *Tracker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Tracker{
		fs:        fs,
		store:     store,
		clock:     clock,
		retention: retention,
		badges:    make(map[string]Status),
		badgedAt:  make(map[string]time.Time),
	}
}

// Evaluate runs one classification pass over gs and reports whether any
// game's badge changed. initial marks the pass done when the game list is
// first built: it shows every unchanged game still inside its window as
// New and prunes records of games that are gone.
func (t *Tracker) Evaluate(gs []games.Game, initial bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	table, err := t.store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("freshness: using partial table")
	}

	dirty := false
	changed := false
	present := make(map[string]struct{}, len(gs))
	next := make(map[string]Status, len(gs))

	for _, g := range gs {
		present[g.Name] = struct{}{}
		prev := t.badges[g.Name]

		fi, err := t.fs.Stat(g.Exe)
		if err != nil {
			log.Debug().Err(err).Str("game", g.Name).Msg("freshness: can't stat executable")
			next[g.Name] = prev
			continue
		}
		mod := ToFileTime(fi.ModTime())

		var st Status
		rec, ok := table[g.Name]
		switch {
		case !ok:
			st = New
			table[g.Name] = mod
			dirty = true
			t.badgedAt[g.Name] = now
		case mod > rec:
			st = Updated
			if prev != Updated {
				t.badgedAt[g.Name] = FromFileTime(mod)
			}
		case mod < rec:
			// Older than its record: the window was closed, or the clock
			// went backwards. Neither is an update.
			st = Stale
			if !initial && prev == New {
				st = New
			}
		case initial:
			st = New
			if _, ok := t.badgedAt[g.Name]; !ok {
				t.badgedAt[g.Name] = FromFileTime(rec)
			}
		default:
			st = prev
		}

		if st != Stale {
			start, ok := t.badgedAt[g.Name]
			if !ok {
				start = now
				t.badgedAt[g.Name] = start
			}
			if now.Sub(start) > t.retention {
				log.Debug().
					Str("game", g.Name).
					Str("badge", st.String()).
					Time("since", start).
					Msg("freshness: badge expired")
				st = Stale
				if helpers.IsClockReliable(now) {
					table[g.Name] = ToFileTime(now)
					dirty = true
				}
			}
		}

		if st == Stale {
			delete(t.badgedAt, g.Name)
		}
		if st != prev {
			changed = true
		}
		next[g.Name] = st
	}

	if initial {
		for name := range table {
			if _, ok := present[name]; !ok {
				log.Debug().Str("game", name).Msg("freshness: pruning record")
				delete(table, name)
				dirty = true
			}
		}
	}

	for name := range t.badgedAt {
		if _, ok := present[name]; !ok {
			delete(t.badgedAt, name)
		}
	}
	t.badges = next

	if dirty {
		if err := t.store.Save(table); err != nil {
			log.Error().Err(err).Str("path", t.store.Path()).Msg("freshness: failed to save table")
		}
	}

	return changed
}

// Status returns the current badge of a game.
func (t *Tracker) Status(name string) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.badges[name]
}

// Badges returns a copy of every game's current badge.
func (t *Tracker) Badges() map[string]Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.badges)
}

// HasBadges reports whether any game shows New or Updated.
func (t *Tracker) HasBadges() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, st := range t.badges {
		if st != Stale {
			return true
		}
	}
	return false
}
