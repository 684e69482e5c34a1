//go:build !windows

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

package inputmon

import (
	"fmt"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/x11"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
)

// PollInterval is how often the X11 idle counter is sampled.
const PollInterval = 250 * time.Millisecond

// maxAncestry bounds the walk from the focused window's process up to the
// game.
const maxAncestry = 8

type idleSource interface {
	IdleTime() (time.Duration, error)
	ActivePID() int
	Close()
}

func connectX11() (idleSource, error) {
	c, err := x11.Connect()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// X11Hook reports input activity by sampling the MIT-SCREEN-SAVER idle
// counter. Activity only counts while the focused window belongs to pid
// or one of its descendants, or its owner can't be told.
type X11Hook struct {
	clock    clockwork.Clock
	connect  func() (idleSource, error)
	parentOf func(pid int) (int, error)
	stop     chan struct{}
	pid      int
	mu       syncutil.Mutex
	running  bool
}

func NewX11Hook(clock clockwork.Clock, pid int) *X11Hook {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &X11Hook{
		clock:    clock,
		pid:      pid,
		connect:  connectX11,
		parentOf: parentPID,
	}
}

func (h *X11Hook) Start(keyDown func()) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return ErrAlreadyHooked
	}

	src, err := h.connect()
	if err != nil {
		return err
	}
	if _, err := src.IdleTime(); err != nil {
		src.Close()
		return fmt.Errorf("idle counter unavailable: %w", err)
	}

	h.stop = make(chan struct{})
	h.running = true
	ticker := h.clock.NewTicker(PollInterval)
	go h.loop(src, ticker, h.clock.Now(), keyDown, h.stop)
	return nil
}

func (h *X11Hook) loop(
	src idleSource,
	ticker clockwork.Ticker,
	sampled time.Time,
	keyDown func(),
	stop <-chan struct{},
) {
	defer src.Close()
	defer ticker.Stop()

	owner := ownerCache{}
	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
		}

		idle, err := src.IdleTime()
		if err != nil {
			log.Debug().Err(err).Msg("inputmon: failed to sample idle time")
			continue
		}
		now := h.clock.Now()
		// Without new input the counter grows by the time between samples.
		if idle < now.Sub(sampled) && h.focused(src, &owner) {
			keyDown()
		}
		sampled = now
	}
}

// ownerCache remembers the last focused PID checked, so the process tree
// is only walked when focus moves.
type ownerCache struct {
	pid   int
	owned bool
}

func (h *X11Hook) focused(src idleSource, cache *ownerCache) bool {
	if h.pid == 0 {
		return true
	}
	pid := src.ActivePID()
	if pid == 0 || pid == h.pid {
		return true
	}
	if pid != cache.pid {
		cache.pid = pid
		cache.owned = h.descends(pid)
	}
	return cache.owned
}

// descends reports whether pid was started by the game, for games run
// through a wrapper script or launcher stub.
func (h *X11Hook) descends(pid int) bool {
	for range maxAncestry {
		ppid, err := h.parentOf(pid)
		if err != nil {
			log.Debug().Err(err).Int("pid", pid).Msg("inputmon: failed to read parent process")
			return false
		}
		if ppid == h.pid {
			return true
		}
		if ppid <= 1 || ppid == pid {
			return false
		}
		pid = ppid
	}
	return false
}

func parentPID(pid int) (int, error) {
	p, err := process.NewProcess(int32(pid)) //nolint:gosec // PIDs fit in int32
	if err != nil {
		return 0, fmt.Errorf("failed to open process %d: %w", pid, err)
	}
	ppid, err := p.Ppid()
	if err != nil {
		return 0, fmt.Errorf("failed to read parent of %d: %w", pid, err)
	}
	return int(ppid), nil
}

func (h *X11Hook) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return nil
	}
	h.running = false
	close(h.stop)
	return nil
}
