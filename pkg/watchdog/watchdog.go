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

// Package watchdog kills games that stop responding.
package watchdog

import (
	"errors"
	"sync"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/process"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

type Options struct {
	// OnHung is called after an unresponsive process was killed.
	OnHung func()
	// OnKillFailed is called when killing an unresponsive process failed.
	// The watchdog doesn't retry.
	OnKillFailed func(error)
	Clock        clockwork.Clock
	Warmup       time.Duration
	Interval     time.Duration
}

// Watchdog polls a process and kills it the first time it's found not
// responding. It stops for good after a kill attempt, when the process
// exits or when Stop is called. Restoring the launcher after the kill is
// left to whoever waits on the process.
type Watchdog struct {
	proc process.Process
	stop chan struct{}
	done chan struct{}
	opts Options
	once sync.Once
}

func New(proc process.Process, opts Options) *Watchdog {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Watchdog{
		proc: proc,
		opts: opts,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start begins polling. The first check runs after the warm-up delay.
func (w *Watchdog) Start() {
	go w.run()
}

// Stop ends polling without waiting for a check that's already running.
// It's safe to call more than once.
func (w *Watchdog) Stop() {
	w.once.Do(func() { close(w.stop) })
}

// Done is closed when the polling goroutine has exited.
func (w *Watchdog) Done() <-chan struct{} {
	return w.done
}

func (w *Watchdog) run() {
	defer close(w.done)

	select {
	case <-w.stop:
		return
	case <-w.proc.Done():
		return
	case <-w.opts.Clock.After(w.opts.Warmup):
	}

	ticker := w.opts.Clock.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	for {
		if !w.check() {
			return
		}
		select {
		case <-w.stop:
			return
		case <-w.proc.Done():
			return
		case <-ticker.Chan():
		}
	}
}

// check runs one poll and reports whether polling should go on.
func (w *Watchdog) check() bool {
	select {
	case <-w.stop:
		return false
	default:
	}
	if w.proc.Exited() {
		return false
	}

	ok, err := w.proc.Responding()
	switch {
	case errors.Is(err, process.ErrExited):
		return false
	case err != nil:
		log.Debug().Err(err).Int("pid", w.proc.PID()).Msg("watchdog: responsiveness check failed")
		return true
	case ok:
		return true
	}

	log.Warn().Int("pid", w.proc.PID()).Msg("watchdog: process not responding, killing")
	if err := w.proc.Kill(); err != nil {
		if errors.Is(err, process.ErrExited) {
			return false
		}
		log.Error().Err(err).Int("pid", w.proc.PID()).Msg("watchdog: failed to kill process")
		if w.opts.OnKillFailed != nil {
			w.opts.OnKillFailed(err)
		}
		return false
	}

	if w.opts.OnHung != nil {
		w.opts.OnHung()
	}
	return false
}
