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

package session

import (
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
)

// IdleTimer calls onExpire once the timeout passes with no Reset. Each
// Reset restarts the full timeout. Reset and Stop are safe to call from
// any goroutine, including while an expiry is running.
type IdleTimer struct {
	clock    clockwork.Clock
	timer    clockwork.Timer
	onExpire func()
	timeout  time.Duration
	gen      uint64
	mu       syncutil.Mutex
	stopped  bool
}

func NewIdleTimer(clock clockwork.Clock, timeout time.Duration, onExpire func()) *IdleTimer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &IdleTimer{
		clock:    clock,
		timeout:  timeout,
		onExpire: onExpire,
	}
}

// Start arms the timer. It's the same as Reset.
func (t *IdleTimer) Start() {
	t.Reset()
}

// Reset restarts the countdown. A callback from an earlier arming that's
// already on its way is dropped.
func (t *IdleTimer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.timer = t.clock.AfterFunc(t.timeout, func() { t.expire(gen) })
}

func (t *IdleTimer) expire(gen uint64) {
	t.mu.Lock()
	current := !t.stopped && gen == t.gen
	if current {
		t.timer = nil
	}
	t.mu.Unlock()

	if current {
		t.onExpire()
	}
}

// Stop disarms the timer for good. It doesn't wait for a running expiry.
func (t *IdleTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
