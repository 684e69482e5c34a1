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

// Package inputmon watches for keyboard activity anywhere on the system
// while a game runs. Activity resets the session's idle timer.
//
// The Windows hook sees every key-down on the desktop, not only the game's.
// Keys pressed in another program count as activity too. The X11 hook is
// narrower: it samples the display's idle counter (keyboard and pointer)
// and only counts input while a window of the game, of a process the game
// started, or of unknown owner has focus.
package inputmon

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
)

var ErrAlreadyHooked = errors.New("keyboard hook already installed")

// Hook is a platform input source. Start installs it and calls keyDown for
// every key-down it observes, possibly from an OS thread of its own. Stop
// removes it.
type Hook interface {
	Start(keyDown func()) error
	Stop() error
}

// Monitor owns at most one installed Hook at a time and republishes its
// key-down events.
type Monitor struct {
	hook    Hook
	onKey  atomic.Pointer[func()]
	keys   atomic.Uint64
	mu     syncutil.Mutex
	hooked bool
}

func NewMonitor(hook Hook) *Monitor {
	return &Monitor{hook: hook}
}

// Start installs the hook and calls onKey for each key-down. A second
// Start while hooked fails with ErrAlreadyHooked.
func (m *Monitor) Start(onKey func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.hooked {
		return ErrAlreadyHooked
	}

	m.onKey.Store(&onKey)
	if err := m.hook.Start(m.keyDown); err != nil {
		m.onKey.Store(nil)
		return fmt.Errorf("failed to install keyboard hook: %w", err)
	}
	m.hooked = true
	log.Debug().Msg("inputmon: keyboard hook installed")
	return nil
}

func (m *Monitor) keyDown() {
	m.keys.Add(1)

	if fn := m.onKey.Load(); fn != nil && *fn != nil {
		(*fn)()
	}
}

// Stop removes the hook. Calling it when nothing is installed does
// nothing. A failed removal is returned but the monitor still counts as
// unhooked, since the OS drops the hook when the launcher exits anyway.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hooked {
		return nil
	}
	m.hooked = false
	m.onKey.Store(nil)

	if err := m.hook.Stop(); err != nil {
		return fmt.Errorf("failed to remove keyboard hook: %w", err)
	}
	log.Debug().Uint64("keys", m.keys.Load()).Msg("inputmon: keyboard hook removed")
	return nil
}

func (m *Monitor) Hooked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hooked
}

// Keys returns how many key-downs were seen.
func (m *Monitor) Keys() uint64 {
	return m.keys.Load()
}
