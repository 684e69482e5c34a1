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
	"errors"
	"fmt"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/x11"
	"github.com/rs/zerolog/log"
	gopsproc "github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sys/unix"
)

// responding treats a stopped (SIGSTOP'd or traced) process as hung. There
// is no portable equivalent of a hung window check outside Windows.
func responding(pid int) (bool, error) {
	if err := unix.Kill(pid, 0); errors.Is(err, unix.ESRCH) {
		return false, ErrExited
	}

	//nolint:gosec // pids fit in int32
	proc, err := gopsproc.NewProcess(int32(pid))
	if err != nil {
		if errors.Is(err, gopsproc.ErrorProcessNotRunning) {
			return false, ErrExited
		}
		return false, fmt.Errorf("failed to open process %d: %w", pid, err)
	}

	status, err := proc.Status()
	if err != nil {
		return false, fmt.Errorf("failed to read status of %d: %w", pid, err)
	}
	for _, s := range status {
		switch s {
		case gopsproc.Zombie:
			return false, ErrExited
		case gopsproc.Stop:
			return false, nil
		}
	}
	return true, nil
}

// closeMainWindow closes the game's X11 windows, falling back to SIGTERM
// when there's no display or the game has no window.
func closeMainWindow(pid int) error {
	sent, err := x11.CloseWindowsByPID(pid)
	if err != nil {
		log.Debug().Err(err).Int("pid", pid).Msg("process: x11 close failed, sending SIGTERM")
	}
	if sent > 0 {
		return nil
	}

	if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return ErrExited
		}
		return fmt.Errorf("failed to signal process %d: %w", pid, err)
	}
	return nil
}
