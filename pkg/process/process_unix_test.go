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

package process

import (
	"context"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/games"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func startShell(t *testing.T, script string) Process {
	t.Helper()
	p, err := ExecStarter{}.Start(context.Background(), games.Game{
		Name:   "shell",
		Exe:    "/bin/sh",
		Args:   []string{"-c", script},
		Folder: t.TempDir(),
	})
	require.NoError(t, err)
	return p
}

func TestExecStarter_ExitCode(t *testing.T) {
	t.Parallel()

	p := startShell(t, "exit 3")
	code, err := p.Wait()
	require.NoError(t, err)
	assert.Equal(t, 3, code)
	assert.True(t, p.Exited())

	// Wait is safe to call again.
	code, err = p.Wait()
	require.NoError(t, err)
	assert.Equal(t, 3, code)

	ok, err := p.Responding()
	assert.False(t, ok)
	require.ErrorIs(t, err, ErrExited)
	require.ErrorIs(t, p.Kill(), ErrExited)
	require.ErrorIs(t, p.CloseMainWindow(), ErrExited)
}

func TestExecStarter_MissingExecutable(t *testing.T) {
	t.Parallel()

	_, err := ExecStarter{}.Start(context.Background(), games.Game{
		Exe:    "/nonexistent/game",
		Folder: t.TempDir(),
	})
	require.Error(t, err)
}

func TestExecStarter_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ExecStarter{}.Start(ctx, games.Game{Exe: "/bin/sh"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestProcess_KillReportsSignal(t *testing.T) {
	t.Parallel()

	p := startShell(t, "sleep 30")
	ok, err := p.Responding()
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, p.Kill())
	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		require.FailNow(t, "process did not exit")
	}
	code, err := p.Wait()
	require.NoError(t, err)
	assert.Equal(t, -1, code)
}

func TestProcess_StoppedIsNotResponding(t *testing.T) {
	t.Parallel()

	p := startShell(t, "sleep 30")
	t.Cleanup(func() { _ = p.Kill() })

	require.NoError(t, unix.Kill(p.PID(), unix.SIGSTOP))
	assert.Eventually(t, func() bool {
		ok, err := p.Responding()
		return err == nil && !ok
	}, 2*time.Second, 10*time.Millisecond)
}
