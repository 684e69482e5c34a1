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

// Package process starts games and wraps the running OS process with the
// queries the session supervisor needs.
package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync/atomic"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/games"
	"github.com/rs/zerolog/log"
)

var (
	// ErrExited means the process was gone before the operation could run.
	ErrExited = errors.New("process has exited")
	// ErrNoWindow means the process has no top-level window to close.
	ErrNoWindow = errors.New("process has no main window")
)

// Process is a running game. All methods are safe for concurrent use.
type Process interface {
	PID() int
	// Done is closed once the process has exited.
	Done() <-chan struct{}
	// Wait blocks until the process exits and returns its exit code. A
	// process killed by a signal reports -1.
	Wait() (int, error)
	Exited() bool
	// Responding reports whether the process answers the OS's "are you
	// alive" check. A process without a window counts as responding.
	Responding() (bool, error)
	// CloseMainWindow politely asks the game to quit.
	CloseMainWindow() error
	Kill() error
}

type Starter interface {
	Start(ctx context.Context, game games.Game) (Process, error)
}

// ExecStarter starts games as child processes.
type ExecStarter struct{}

func (ExecStarter) Start(ctx context.Context, game games.Game) (Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("start cancelled: %w", err)
	}

	//nolint:gosec // launching the configured game executable is the point
	cmd := exec.Command(game.Exe, game.Args...)
	cmd.Dir = game.Folder
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", game.Exe, err)
	}

	p := &execProcess{
		cmd:  cmd,
		done: make(chan struct{}),
	}
	go p.wait()

	log.Info().
		Str("game", game.Name).
		Int("pid", cmd.Process.Pid).
		Strs("args", game.Args).
		Msg("process: started")
	return p, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	done   chan struct{}
	err    error
	code   int
	exited atomic.Bool
}

func (p *execProcess) wait() {
	err := p.cmd.Wait()
	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
			err = nil
		} else {
			code = -1
		}
	}
	p.code, p.err = code, err
	p.exited.Store(true)
	close(p.done)
}

func (p *execProcess) PID() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Done() <-chan struct{} {
	return p.done
}

func (p *execProcess) Wait() (int, error) {
	<-p.done
	return p.code, p.err
}

func (p *execProcess) Exited() bool {
	return p.exited.Load()
}

func (p *execProcess) Responding() (bool, error) {
	if p.Exited() {
		return false, ErrExited
	}
	return responding(p.PID())
}

func (p *execProcess) CloseMainWindow() error {
	if p.Exited() {
		return ErrExited
	}
	return closeMainWindow(p.PID())
}

func (p *execProcess) Kill() error {
	if p.Exited() {
		return ErrExited
	}
	err := p.cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return ErrExited
	}
	if err != nil {
		return fmt.Errorf("failed to kill process %d: %w", p.PID(), err)
	}
	return nil
}
