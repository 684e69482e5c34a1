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

package session

import (
	"fmt"
	"sync/atomic"

	"github.com/pkg/errors"
)

// State is where the launcher is in a game session's lifetime.
type State int32

const (
	Idle State = iota
	Starting
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Starting:
		return "starting"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

var ErrInvalidTransition = errors.New("invalid session state transition")

// TransitionError is a state change whose expected starting state didn't
// match. Actual is the state observed when the change was refused.
type TransitionError struct {
	From   State
	To     State
	Actual State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move session from %s to %s: state is %s", e.From, e.To, e.Actual)
}

func (*TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// StateMachine holds the single session state. Every change goes through
// Transition, which is a compare-and-swap.
type StateMachine struct {
	v atomic.Int32
}

func (m *StateMachine) Load() State {
	return State(m.v.Load())
}

func allowed(from, to State) bool {
	switch {
	case from == Idle && to == Starting:
	case from == Starting && to == Running:
	case from == Running && to == Idle:
	// a launch whose process never started
	case from == Starting && to == Idle:
	default:
		return false
	}
	return true
}

// Transition moves the state from one value to another. It fails with a
// *TransitionError if the pair isn't a legal step or the current state
// isn't from.
func (m *StateMachine) Transition(from, to State) error {
	if !allowed(from, to) || !m.v.CompareAndSwap(int32(from), int32(to)) {
		return errors.WithStack(&TransitionError{From: from, To: to, Actual: m.Load()})
	}
	return nil
}
