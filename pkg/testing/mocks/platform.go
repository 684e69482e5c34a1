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

package mocks

import (
	"github.com/ZaparooProject/zaparoo-launcher/pkg/inputmon"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/platforms"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/process"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/session/archgate"
	"github.com/stretchr/testify/mock"
)

// MockPlatform is a testify mock of platforms.Platform.
type MockPlatform struct {
	mock.Mock
}

func (m *MockPlatform) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPlatform) Settings() platforms.Settings {
	args := m.Called()
	return args.Get(0).(platforms.Settings) //nolint:forcetypeassert // mock
}

func (m *MockPlatform) NewKeyboardHook(pid int) inputmon.Hook {
	args := m.Called(pid)
	return args.Get(0).(inputmon.Hook) //nolint:forcetypeassert // mock
}

func (m *MockPlatform) Starter() process.Starter {
	args := m.Called()
	return args.Get(0).(process.Starter) //nolint:forcetypeassert // mock
}

func (m *MockPlatform) Prober() archgate.Prober {
	args := m.Called()
	return args.Get(0).(archgate.Prober) //nolint:forcetypeassert // mock
}

// NewMockPlatform returns a platform rooted at dir with the given test
// doubles. Each session gets hook.
func NewMockPlatform(dir string, starter *MockStarter, hook *MockHook, prober *MockProber) *MockPlatform {
	m := &MockPlatform{}
	m.On("ID").Return("mock").Maybe()
	m.On("Settings").Return(platforms.Settings{
		DataDir:   dir,
		ConfigDir: dir,
		TempDir:   dir,
	}).Maybe()
	m.On("NewKeyboardHook", mock.Anything).Return(hook).Maybe()
	m.On("Starter").Return(starter).Maybe()
	m.On("Prober").Return(prober).Maybe()
	return m
}
