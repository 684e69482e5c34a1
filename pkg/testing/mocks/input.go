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
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/session/archgate"
	"github.com/stretchr/testify/mock"
)

// MockHook is a testify mock of inputmon.Hook. Press simulates a key-down
// once Start has been called.
type MockHook struct {
	mock.Mock
	keyDown func()
	mu      syncutil.Mutex
}

func (m *MockHook) Start(keyDown func()) error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return err //nolint:wrapcheck // mock passthrough
	}
	m.mu.Lock()
	m.keyDown = keyDown
	m.mu.Unlock()
	return nil
}

func (m *MockHook) Stop() error {
	args := m.Called()
	m.mu.Lock()
	m.keyDown = nil
	m.mu.Unlock()
	return args.Error(0) //nolint:wrapcheck // mock passthrough
}

// Press delivers one key-down. It reports false if no hook is installed.
func (m *MockHook) Press() bool {
	m.mu.Lock()
	fn := m.keyDown
	m.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// MockProber is a testify mock of archgate.Prober.
type MockProber struct {
	mock.Mock
}

func (m *MockProber) Self() (archgate.Bitness, error) {
	args := m.Called()
	return args.Get(0).(archgate.Bitness), args.Error(1) //nolint:wrapcheck,forcetypeassert // mock
}

func (m *MockProber) Process(pid int) (archgate.Bitness, error) {
	args := m.Called(pid)
	return args.Get(0).(archgate.Bitness), args.Error(1) //nolint:wrapcheck,forcetypeassert // mock
}

// MatchingProber returns a prober reporting 64-bit for everything.
func MatchingProber() *MockProber {
	m := &MockProber{}
	m.On("Self").Return(archgate.Bitness64, nil)
	m.On("Process", mock.Anything).Return(archgate.Bitness64, nil)
	return m
}
