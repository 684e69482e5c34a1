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

package state

import (
	"context"
	"maps"
	"slices"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/freshness"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/games"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/notifications"
)

// State holds the runtime state of the launcher service.
//
// LOCKING RULES: mu protects all mutable fields. Never send to
// Notifications while holding it. Lock, modify, copy what the
// notification needs, unlock, then send.
type State struct {
	ctx           context.Context
	ctxCancelFunc context.CancelFunc
	Notifications chan<- notifications.Notification
	badges        map[string]freshness.Status
	games         []games.Game
	mu            syncutil.RWMutex
	stopService   bool
}

func NewState() (state *State, notificationCh <-chan notifications.Notification) {
	// Room for a burst of badge and session events while a UI redraws.
	ns := make(chan notifications.Notification, 500)
	ctx, ctxCancelFunc := context.WithCancel(context.Background())
	return &State{
		Notifications: ns,
		ctx:           ctx,
		ctxCancelFunc: ctxCancelFunc,
		badges:        make(map[string]freshness.Status),
	}, ns
}

func (s *State) GetContext() context.Context {
	return s.ctx
}

func (s *State) StopService() {
	s.mu.Lock()
	s.stopService = true
	s.mu.Unlock()
	s.ctxCancelFunc()
}

func (s *State) ShouldStopService() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stopService
}

// SetGames replaces the game list. Consumers are told only when the set of
// names changed.
func (s *State) SetGames(gs []games.Game) {
	s.mu.Lock()
	prev := names(s.games)
	s.games = slices.Clone(gs)
	next := names(s.games)
	s.mu.Unlock()

	if !slices.Equal(prev, next) {
		notifications.Discovered(s.Notifications, next)
	}
}

func (s *State) Games() []games.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.games)
}

func (s *State) FindGame(name string) (games.Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return games.Find(s.games, name)
}

// SetBadges replaces every game's freshness badge and tells consumers.
func (s *State) SetBadges(badges map[string]freshness.Status) {
	s.mu.Lock()
	s.badges = maps.Clone(badges)
	payload := make(map[string]string, len(badges))
	for name, status := range badges {
		payload[name] = status.String()
	}
	s.mu.Unlock()

	notifications.Freshness(s.Notifications, payload)
}

func (s *State) Badges() map[string]freshness.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.badges)
}

// Badge returns name's badge. Unknown games are Stale.
func (s *State) Badge(name string) freshness.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.badges[name]
}

func names(gs []games.Game) []string {
	out := make([]string, 0, len(gs))
	for _, g := range gs {
		out = append(out, g.Name)
	}
	return out
}
