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

// Package platforms describes the OS-specific pieces the launcher needs:
// where its files live, how games are started and how keyboard activity
// and process bitness are observed.
package platforms

import (
	"errors"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/inputmon"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/process"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/session/archgate"
)

var ErrNotSupported = errors.New("operation not supported on this platform")

const (
	PlatformIDLinux   = "linux"
	PlatformIDMac     = "mac"
	PlatformIDWindows = "windows"
)

// Settings defines all simple settings/configuration values available for a
// platform.
type Settings struct {
	// DataDir is where persistent state such as the freshness table is
	// kept. WARNING: This value should be accessed using the DataDir
	// function in the helpers package.
	DataDir string
	// ConfigDir is where the config file is stored. WARNING: This value
	// should be accessed using the ConfigDir function in the helpers
	// package.
	ConfigDir string
	// TempDir holds logs and the pid file. Expect it to be deleted.
	TempDir string
}

// Platform is the central interface that defines how the launcher interacts
// with a supported OS.
type Platform interface {
	// ID returns the unique ID of this platform.
	ID() string
	// Settings returns all simple platform-specific settings such as paths.
	Settings() Settings
	// NewKeyboardHook returns an input hook for a session running the game
	// with the given pid. Each session gets a fresh hook.
	NewKeyboardHook(pid int) inputmon.Hook
	// Starter returns how games are started on this platform.
	Starter() process.Starter
	// Prober returns the process bitness prober used before hooking.
	Prober() archgate.Prober
}
