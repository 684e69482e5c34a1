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
	"context"
	"sync"
	"sync/atomic"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/games"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/process"
	"github.com/stretchr/testify/mock"
)

// FakeProcess is a controllable process.Process. It stays running until
// Exit or a successful Kill.
type FakeProcess struct {
	respondErr  error
	killErr     error
	closeErr    error
	done        chan struct{}
	kills       atomic.Int32
	closes      atomic.Int32
	checks      atomic.Int32
	pid         int
	code        int
	once        sync.Once
	mu          syncutil.Mutex
	exited      atomic.Bool
	responding  bool
	exitOnClose bool
}

func NewFakeProcess(pid int) *FakeProcess {
	return &FakeProcess{
		pid:        pid,
		done:       make(chan struct{}),
		responding: true,
	}
}

// Exit ends the process with code. Only the first call has any effect.
func (p *FakeProcess) Exit(code int) {
	p.once.Do(func() {
		p.mu.Lock()
		p.code = code
		p.mu.Unlock()
		p.exited.Store(true)
		close(p.done)
	})
}

func (p *FakeProcess) SetResponding(ok bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responding = ok
	p.respondErr = err
}

func (p *FakeProcess) SetKillErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.killErr = err
}

func (p *FakeProcess) SetCloseErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeErr = err
}

// SetExitOnClose makes CloseMainWindow end the process with code 0, like
// a game that quits cleanly when asked.
func (p *FakeProcess) SetExitOnClose(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exitOnClose = v
}

func (p *FakeProcess) Kills() int { return int(p.kills.Load()) }
func (p *FakeProcess) Closes() int { return int(p.closes.Load()) }
func (p *FakeProcess) Checks() int { return int(p.checks.Load()) }

func (p *FakeProcess) PID() int { return p.pid }

func (p *FakeProcess) Done() <-chan struct{} { return p.done }

func (p *FakeProcess) Wait() (int, error) {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.code, nil
}

func (p *FakeProcess) Exited() bool { return p.exited.Load() }

func (p *FakeProcess) Responding() (bool, error) {
	p.checks.Add(1)
	if p.Exited() {
		return false, process.ErrExited
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.responding, p.respondErr
}

func (p *FakeProcess) CloseMainWindow() error {
	p.closes.Add(1)
	if p.Exited() {
		return process.ErrExited
	}
	p.mu.Lock()
	err, exit := p.closeErr, p.exitOnClose
	p.mu.Unlock()
	if err != nil {
		return err
	}
	if exit {
		p.Exit(0)
	}
	return nil
}

func (p *FakeProcess) Kill() error {
	p.kills.Add(1)
	if p.Exited() {
		return process.ErrExited
	}
	p.mu.Lock()
	err := p.killErr
	p.mu.Unlock()
	if err != nil {
		return err
	}
	p.Exit(-1)
	return nil
}

// MockStarter is a testify mock of process.Starter.
type MockStarter struct {
	mock.Mock
}

func (m *MockStarter) Start(ctx context.Context, game games.Game) (process.Process, error) {
	args := m.Called(ctx, game)
	if p, ok := args.Get(0).(process.Process); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
