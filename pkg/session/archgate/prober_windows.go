//go:build windows

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

package archgate

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

const (
	imageFileMachineUnknown = 0x0000
	imageFileMachineI386    = 0x014c
	imageFileMachineARMNT   = 0x01c4
)

// NativeProber reads bitness with IsWow64Process2.
type NativeProber struct{}

func (NativeProber) Self() (Bitness, error) {
	return bitness(windows.CurrentProcess())
}

func (NativeProber) Process(pid int) (Bitness, error) {
	//nolint:gosec // windows pids are 32-bit
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	switch {
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return BitnessUnknown, fmt.Errorf("%w: %w", ErrAccessDenied, err)
	case errors.Is(err, windows.ERROR_INVALID_PARAMETER):
		return BitnessUnknown, fmt.Errorf("%w: %w", ErrProcessExited, err)
	case err != nil:
		return BitnessUnknown, fmt.Errorf("failed to open process: %w", err)
	}
	defer func() { _ = windows.CloseHandle(h) }()

	return bitness(h)
}

func bitness(h windows.Handle) (Bitness, error) {
	var procMachine, nativeMachine uint16
	if err := windows.IsWow64Process2(h, &procMachine, &nativeMachine); err != nil {
		return BitnessUnknown, fmt.Errorf("IsWow64Process2 failed: %w", err)
	}
	if procMachine != imageFileMachineUnknown {
		// Running under WOW64, so a 32-bit process on a 64-bit system.
		return Bitness32, nil
	}
	switch nativeMachine {
	case imageFileMachineI386, imageFileMachineARMNT:
		return Bitness32, nil
	default:
		return Bitness64, nil
	}
}
