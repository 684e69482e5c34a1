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

package watchdog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/testing/mocks"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const (
	warmup   = 2500 * time.Millisecond
	interval = 5 * time.Second
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func waitDone(t *testing.T, w *Watchdog) {
	t.Helper()
	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog did not stop")
	}
}

func newWatchdog(t *testing.T, proc *mocks.FakeProcess, opts Options) (*Watchdog, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	opts.Clock = clock
	opts.Warmup = warmup
	opts.Interval = interval
	w := New(proc, opts)
	w.Start()
	t.Cleanup(func() {
		w.Stop()
		proc.Exit(0)
		<-w.Done()
	})
	return w, clock
}

func advanceAfterWaiter(t *testing.T, clock *clockwork.FakeClock, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(d)
}

func TestWatchdog_KillsHungProcessOnce(t *testing.T) {
	t.Parallel()

	proc := mocks.NewFakeProcess(42)
	proc.SetResponding(false, nil)

	var hung atomic.Int32
	w, clock := newWatchdog(t, proc, Options{OnHung: func() { hung.Add(1) }})

	advanceAfterWaiter(t, clock, warmup)
	waitDone(t, w)

	assert.Equal(t, 1, proc.Kills())
	assert.Equal(t, int32(1), hung.Load())
	assert.True(t, proc.Exited())

	code, err := proc.Wait()
	require.NoError(t, err)
	assert.Equal(t, -1, code)
}

func TestWatchdog_NoCheckBeforeWarmup(t *testing.T) {
	t.Parallel()

	proc := mocks.NewFakeProcess(42)
	_, clock := newWatchdog(t, proc, Options{})

	advanceAfterWaiter(t, clock, warmup-time.Millisecond)
	assert.Never(t, func() bool { return proc.Checks() > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	clock.Advance(time.Millisecond)
	assert.Eventually(t, func() bool { return proc.Checks() == 1 }, time.Second, 5*time.Millisecond)
}

func TestWatchdog_PollsWhileResponding(t *testing.T) {
	t.Parallel()

	proc := mocks.NewFakeProcess(42)
	_, clock := newWatchdog(t, proc, Options{})

	advanceAfterWaiter(t, clock, warmup)
	assert.Eventually(t, func() bool { return proc.Checks() == 1 }, time.Second, 5*time.Millisecond)

	for i := 2; i <= 4; i++ {
		advanceAfterWaiter(t, clock, interval)
		want := i
		assert.Eventually(t, func() bool { return proc.Checks() == want }, time.Second, 5*time.Millisecond)
	}
	assert.Zero(t, proc.Kills())
}

func TestWatchdog_KillFailureDoesNotRetry(t *testing.T) {
	t.Parallel()

	proc := mocks.NewFakeProcess(42)
	proc.SetResponding(false, nil)
	killErr := errors.New("access denied")
	proc.SetKillErr(killErr)

	var got atomic.Value
	var hung atomic.Int32
	w, clock := newWatchdog(t, proc, Options{
		OnHung:       func() { hung.Add(1) },
		OnKillFailed: func(err error) { got.Store(err) },
	})

	advanceAfterWaiter(t, clock, warmup)
	waitDone(t, w)

	clock.Advance(10 * interval)
	assert.Equal(t, 1, proc.Kills())
	assert.Zero(t, hung.Load())
	assert.Equal(t, killErr, got.Load())
	assert.False(t, proc.Exited())
}

func TestWatchdog_ProbeErrorKeepsPolling(t *testing.T) {
	t.Parallel()

	proc := mocks.NewFakeProcess(42)
	proc.SetResponding(false, errors.New("transient"))
	_, clock := newWatchdog(t, proc, Options{})

	advanceAfterWaiter(t, clock, warmup)
	assert.Eventually(t, func() bool { return proc.Checks() == 1 }, time.Second, 5*time.Millisecond)

	advanceAfterWaiter(t, clock, interval)
	assert.Eventually(t, func() bool { return proc.Checks() == 2 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, proc.Kills())
}

func TestWatchdog_StopsWhenProcessExits(t *testing.T) {
	t.Parallel()

	proc := mocks.NewFakeProcess(42)
	w, clock := newWatchdog(t, proc, Options{})

	advanceAfterWaiter(t, clock, warmup)
	assert.Eventually(t, func() bool { return proc.Checks() == 1 }, time.Second, 5*time.Millisecond)

	proc.Exit(0)
	waitDone(t, w)

	clock.Advance(interval)
	assert.Equal(t, 1, proc.Checks())
	assert.Zero(t, proc.Kills())
}

func TestWatchdog_ExitDuringWarmup(t *testing.T) {
	t.Parallel()

	proc := mocks.NewFakeProcess(42)
	proc.SetResponding(false, nil)
	w, _ := newWatchdog(t, proc, Options{})

	proc.Exit(3)
	waitDone(t, w)
	assert.Zero(t, proc.Checks())
}

func TestWatchdog_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	proc := mocks.NewFakeProcess(42)
	w, clock := newWatchdog(t, proc, Options{})

	w.Stop()
	w.Stop()
	waitDone(t, w)

	clock.Advance(warmup)
	assert.Zero(t, proc.Checks())
}
