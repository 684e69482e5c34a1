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

package process

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	"golang.org/x/sys/windows"
)

const (
	gwOwner = 4
	wmClose = 0x0010
)

var (
	user32              = windows.NewLazySystemDLL("user32.dll")
	procIsHungAppWindow = user32.NewProc("IsHungAppWindow")
	procPostMessageW    = user32.NewProc("PostMessageW")
	procGetWindow       = user32.NewProc("GetWindow")
)

// windowSearch holds the state of the single in-flight EnumWindows call.
// Callbacks made with NewCallback are never freed, so one is shared.
var windowSearch struct {
	hwnd windows.HWND
	pid  uint32
	mu   syncutil.Mutex
}

var enumWindowsProc = sync.OnceValue(func() uintptr {
	return windows.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
		var pid uint32
		if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil {
			return 1
		}
		if pid != windowSearch.pid || !windows.IsWindowVisible(hwnd) {
			return 1
		}
		if owner, _, _ := procGetWindow.Call(uintptr(hwnd), gwOwner); owner != 0 {
			return 1
		}
		windowSearch.hwnd = hwnd
		return 0
	})
})

// mainWindow finds the first visible, unowned top-level window of pid.
func mainWindow(pid int) (windows.HWND, bool) {
	windowSearch.mu.Lock()
	defer windowSearch.mu.Unlock()

	//nolint:gosec // windows pids are 32-bit
	windowSearch.pid = uint32(pid)
	windowSearch.hwnd = 0
	// EnumWindows reports an error when the callback stops it early.
	_ = windows.EnumWindows(enumWindowsProc(), nil)
	return windowSearch.hwnd, windowSearch.hwnd != 0
}

func responding(pid int) (bool, error) {
	if !running(pid) {
		return false, ErrExited
	}
	hwnd, ok := mainWindow(pid)
	if !ok {
		return true, nil
	}
	hung, _, _ := procIsHungAppWindow.Call(uintptr(hwnd))
	return hung == 0, nil
}

func closeMainWindow(pid int) error {
	hwnd, ok := mainWindow(pid)
	if !ok {
		if !running(pid) {
			return ErrExited
		}
		return ErrNoWindow
	}
	ret, _, err := procPostMessageW.Call(uintptr(hwnd), wmClose, 0, 0)
	if ret == 0 {
		return fmt.Errorf("failed to post WM_CLOSE: %w", err)
	}
	return nil
}

const stillActive = 259

func running(pid int) bool {
	//nolint:gosec // windows pids are 32-bit
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return !errors.Is(err, windows.ERROR_INVALID_PARAMETER)
	}
	defer func() { _ = windows.CloseHandle(h) }()

	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return false
	}
	return code == stillActive
}
