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

package archgate

import (
	"debug/elf"
	"debug/macho"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/shirou/gopsutil/v4/process"
)

// NativeProber reads bitness from the executable image a process runs.
type NativeProber struct{}

func (NativeProber) Self() (Bitness, error) {
	return Bitness(strconv.IntSize), nil
}

func (NativeProber) Process(pid int) (Bitness, error) {
	//nolint:gosec // pids fit in int32
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		if errors.Is(err, process.ErrorProcessNotRunning) {
			return BitnessUnknown, fmt.Errorf("%w: %w", ErrProcessExited, err)
		}
		return BitnessUnknown, fmt.Errorf("failed to open process: %w", err)
	}

	exe, err := proc.Exe()
	switch {
	case errors.Is(err, os.ErrPermission):
		return BitnessUnknown, fmt.Errorf("%w: %w", ErrAccessDenied, err)
	case errors.Is(err, os.ErrNotExist):
		return BitnessUnknown, fmt.Errorf("%w: %w", ErrProcessExited, err)
	case err != nil:
		return BitnessUnknown, fmt.Errorf("failed to read process executable: %w", err)
	}

	return imageBitness(exe)
}

func imageBitness(path string) (Bitness, error) {
	if runtime.GOOS == "darwin" {
		f, err := macho.Open(path)
		if err != nil {
			return BitnessUnknown, fmt.Errorf("failed to read Mach-O header: %w", err)
		}
		defer func() { _ = f.Close() }()
		if f.Magic == macho.Magic64 {
			return Bitness64, nil
		}
		return Bitness32, nil
	}

	f, err := elf.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return BitnessUnknown, fmt.Errorf("%w: %w", ErrAccessDenied, err)
		}
		return BitnessUnknown, fmt.Errorf("failed to read ELF header: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class == elf.ELFCLASS64 {
		return Bitness64, nil
	}
	return Bitness32, nil
}
