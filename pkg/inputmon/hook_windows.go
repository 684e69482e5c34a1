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

package inputmon

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	"golang.org/x/sys/windows"
)

const (
	whKeyboardLL = 13
	wmKeyDown    = 0x0100
	wmSysKeyDown = 0x0104
	wmQuit       = 0x0012
	pmNoRemove   = 0x0000
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPeekMessageW        = user32.NewProc("PeekMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
)

type msg struct {
	hwnd     uintptr
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	ptX      int32
	ptY      int32
	lPrivate uint32
}

// keyDownTarget receives events from the one low-level hook this process
// may have installed.
var keyDownTarget atomic.Pointer[func()]

var keyboardProc = sync.OnceValue(func() uintptr {
	return windows.NewCallback(func(nCode, wParam, lParam uintptr) uintptr {
		if int32(nCode) >= 0 && (wParam == wmKeyDown || wParam == wmSysKeyDown) {
			if fn := keyDownTarget.Load(); fn != nil {
				(*fn)()
			}
		}
		ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
		return ret
	})
})

// KeyboardHook is a WH_KEYBOARD_LL hook. It runs on a locked OS thread with
// its own message loop, since low-level hooks are called on the installing
// thread.
type KeyboardHook struct {
	done      chan struct{}
	unhookErr error
	threadID  uint32
	mu        syncutil.Mutex
	installed bool
}

func NewKeyboardHook() *KeyboardHook {
	return &KeyboardHook{}
}

func (h *KeyboardHook) Start(keyDown func()) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.installed || !keyDownTarget.CompareAndSwap(nil, &keyDown) {
		return ErrAlreadyHooked
	}

	ready := make(chan error, 1)
	done := make(chan struct{})
	go h.loop(ready, done)

	if err := <-ready; err != nil {
		keyDownTarget.Store(nil)
		return err
	}
	h.done = done
	h.installed = true
	return nil
}

func (h *KeyboardHook) loop(ready chan<- error, done chan<- struct{}) {
	defer close(done)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var mod windows.Handle
	if err := windows.GetModuleHandleEx(0, nil, &mod); err != nil {
		ready <- fmt.Errorf("failed to get module handle: %w", err)
		return
	}

	hhk, _, err := procSetWindowsHookExW.Call(whKeyboardLL, keyboardProc(), uintptr(mod), 0)
	if hhk == 0 {
		ready <- fmt.Errorf("SetWindowsHookExW failed: %w", err)
		return
	}

	// Make sure the thread has a message queue before anyone posts to it.
	var m msg
	_, _, _ = procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmNoRemove)
	h.threadID = windows.GetCurrentThreadId()
	ready <- nil

	for {
		r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(r) <= 0 {
			break
		}
	}

	if r, _, err := procUnhookWindowsHookEx.Call(hhk); r == 0 {
		h.unhookErr = fmt.Errorf("UnhookWindowsHookEx failed: %w", err)
	}
}

func (h *KeyboardHook) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.installed {
		return nil
	}
	h.installed = false
	keyDownTarget.Store(nil)

	if r, _, err := procPostThreadMessageW.Call(uintptr(h.threadID), wmQuit, 0, 0); r == 0 {
		return fmt.Errorf("failed to stop hook thread: %w", err)
	}

	select {
	case <-h.done:
	case <-time.After(time.Second):
		return errors.New("hook thread did not exit")
	}
	return h.unhookErr
}
