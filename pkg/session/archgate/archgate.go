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

// Package archgate decides whether a game may be keyboard hooked. A
// low-level hook only works when the launcher and the game have the same
// bitness.
package archgate

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Bitness int

const (
	BitnessUnknown Bitness = 0
	Bitness32      Bitness = 32
	Bitness64      Bitness = 64
)

var (
	ErrBitnessMismatch = errors.New("bitness mismatch")
	ErrAccessDenied    = errors.New("access denied")
	ErrProcessExited   = errors.New("process exited")
)

// MismatchError is the probe result when the two bitnesses differ.
type MismatchError struct {
	Launcher Bitness
	Game     Bitness
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("game is %d-bit but launcher is %d-bit", e.Game, e.Launcher)
}

func (*MismatchError) Unwrap() error {
	return ErrBitnessMismatch
}

// Prober reads process bitness. Process errors should wrap ErrAccessDenied
// or ErrProcessExited when that's the cause.
type Prober interface {
	Self() (Bitness, error)
	Process(pid int) (Bitness, error)
}

// Policy is the per-launch hook configuration.
type Policy struct {
	// HooksEnabled is true when the game and settings allow hooking.
	HooksEnabled bool
	// AlwaysLogCompat probes (and logs) even when hooks are disabled.
	AlwaysLogCompat bool
	// SkipCheck hooks without probing.
	SkipCheck bool
}

type Gate struct {
	prober Prober
}

func New(prober Prober) *Gate {
	return &Gate{prober: prober}
}

// CanHook reports whether pid may be hooked. The error, if any, is a
// diagnostic explaining a refusal; it never means the launch failed.
func (g *Gate) CanHook(pid int, p Policy) (bool, error) {
	if !p.HooksEnabled && !p.AlwaysLogCompat {
		return false, nil
	}
	if p.HooksEnabled && p.SkipCheck {
		log.Debug().Int("pid", pid).Msg("archgate: skipping compatibility check")
		return true, nil
	}

	err := g.probe(pid)
	level := zerolog.InfoLevel
	if err != nil {
		level = zerolog.WarnLevel
	}
	log.WithLevel(level).
		Err(err).
		Int("pid", pid).
		Bool("hooks", p.HooksEnabled).
		Msg("archgate: hook compatibility checked")

	if err != nil {
		return false, err
	}
	return p.HooksEnabled, nil
}

func (g *Gate) probe(pid int) error {
	self, err := g.prober.Self()
	if err != nil {
		return fmt.Errorf("failed to read launcher bitness: %w", err)
	}
	game, err := g.prober.Process(pid)
	if err != nil {
		return fmt.Errorf("failed to read game bitness: %w", err)
	}
	if self != game {
		return &MismatchError{Launcher: self, Game: game}
	}
	return nil
}

// Describe turns a CanHook diagnostic into a message for the user.
func Describe(err error) string {
	var mismatch *MismatchError
	switch {
	case errors.As(err, &mismatch):
		return fmt.Sprintf(
			"Idle timeout disabled: this game is %d-bit. Run the %d-bit launcher to enable it.",
			mismatch.Game, mismatch.Game,
		)
	case errors.Is(err, ErrAccessDenied):
		return "Idle timeout disabled: access to the game process was denied. Try running the launcher as administrator."
	case errors.Is(err, ErrProcessExited):
		return "Idle timeout disabled: the game exited before it could be checked."
	default:
		return "Idle timeout disabled: the game could not be checked for compatibility."
	}
}
