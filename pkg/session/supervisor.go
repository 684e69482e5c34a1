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

// Package session supervises the one game that may run at a time. It owns
// the launch state machine and, while a game runs, its watchdog, keyboard
// hook and idle timer. Teardown happens once, when the process exits.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/games"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/inputmon"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/notifications"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/process"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/session/archgate"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/watchdog"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var ErrSessionActive = errors.New("another game is already running")

type Config struct {
	// Settings is read once per session, when the process has started.
	Settings func() config.LauncherSettings
	Starter  process.Starter
	Gate     *archgate.Gate
	// NewHook returns the keyboard hook for a session's process.
	NewHook func(pid int) inputmon.Hook
	Clock   clockwork.Clock
	// Notifications receives session events. Sends block, so whoever
	// reads it must keep up. Nil drops events.
	Notifications chan<- notifications.Notification
	// OnRunningChanged hands the "game executing" flag to the UI. It's
	// the only call the supervisor makes that may block on the UI.
	OnRunningChanged func(running bool)
}

// ActiveSession is everything tied to one running game. It's torn down
// exactly once.
type ActiveSession struct {
	StartedAt time.Time
	proc      process.Process
	watchdog  *watchdog.Watchdog
	idle      *IdleTimer
	monitor   *inputmon.Monitor
	done      chan struct{}
	ID        string
	Game      games.Game
	teardown  sync.Once
}

// Info is a read-only snapshot of the active session.
type Info struct {
	StartedAt time.Time
	ID        string
	Game      games.Game
	PID       int
	// Keys counts key-downs the keyboard hook has seen this session.
	Keys   uint64
	Hooked bool
}

type Supervisor struct {
	cfg    Config
	active *ActiveSession
	state  StateMachine
	mu     syncutil.RWMutex
}

func NewSupervisor(cfg Config) *Supervisor {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Settings == nil {
		cfg.Settings = config.DefaultLauncherSettings
	}
	if cfg.Starter == nil {
		cfg.Starter = process.ExecStarter{}
	}
	return &Supervisor{cfg: cfg}
}

func (s *Supervisor) State() State {
	return s.state.Load()
}

// Active returns the running session, if any.
func (s *Supervisor) Active() (Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == nil {
		return Info{}, false
	}
	return s.active.info(), true
}

func (a *ActiveSession) info() Info {
	info := Info{
		ID:        a.ID,
		Game:      a.Game,
		PID:       a.proc.PID(),
		StartedAt: a.StartedAt,
	}
	if a.monitor != nil {
		info.Hooked = a.monitor.Hooked()
		info.Keys = a.monitor.Keys()
	}
	return info
}

// Launch starts game and supervises it until it exits. It returns
// ErrSessionActive without starting anything if a game is already
// starting or running.
func (s *Supervisor) Launch(ctx context.Context, game games.Game) (Info, error) {
	if !s.TryBeginLaunch(game) {
		return Info{}, ErrSessionActive
	}

	proc, err := s.cfg.Starter.Start(ctx, game)
	if err != nil {
		s.AbortLaunch(game)
		s.notifyError(notifications.SeverityError, game.Name, "", "Failed to start game.", err)
		return Info{}, fmt.Errorf("failed to launch %s: %w", game.Name, err)
	}

	sess, err := s.OnProcessStarted(game, proc)
	if err != nil {
		return Info{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sess.info(), nil
}

// TryBeginLaunch claims the session for game. It returns false, and tells
// the user, if another game is already starting or running.
func (s *Supervisor) TryBeginLaunch(game games.Game) bool {
	if err := s.state.Transition(Idle, Starting); err != nil {
		log.Warn().Err(err).Str("game", game.Name).Msg("session: launch rejected, game already active")
		if s.cfg.Notifications != nil {
			notifications.Rejected(s.cfg.Notifications, game.Name)
		}
		return false
	}
	log.Info().Str("game", game.Name).Msg("session: launch admitted")
	return true
}

// AbortLaunch releases a claim taken by TryBeginLaunch when the process
// couldn't be started.
func (s *Supervisor) AbortLaunch(game games.Game) {
	if err := s.state.Transition(Starting, Idle); err != nil {
		s.reportViolation(game.Name, "", err)
	}
}

// OnProcessStarted moves a claimed launch to Running and starts
// supervising proc. If no launch was claimed the process is killed and the
// violation reported.
func (s *Supervisor) OnProcessStarted(game games.Game, proc process.Process) (*ActiveSession, error) {
	sess := &ActiveSession{
		ID:        uuid.New().String(),
		Game:      game,
		StartedAt: s.cfg.Clock.Now(),
		proc:      proc,
		done:      make(chan struct{}),
	}

	// Running and the active session become visible together, so Shutdown
	// never sees a running state without a session to stop.
	s.mu.Lock()
	err := s.state.Transition(Starting, Running)
	if err == nil {
		s.active = sess
	}
	s.mu.Unlock()
	if err != nil {
		s.reportViolation(game.Name, "", err)
		if kerr := proc.Kill(); kerr != nil && !errors.Is(kerr, process.ErrExited) {
			log.Error().Err(kerr).Int("pid", proc.PID()).Msg("session: failed to kill untracked process")
		}
		return nil, err
	}

	settings := s.cfg.Settings()

	log.Info().
		Str("game", game.Name).
		Str("session", sess.ID).
		Int("pid", proc.PID()).
		Msg("session: game running")
	if s.cfg.Notifications != nil {
		notifications.Started(s.cfg.Notifications, game.Name, sess.ID)
	}
	s.setRunning(true)

	s.startInput(sess, settings)

	sess.watchdog = watchdog.New(proc, watchdog.Options{
		Clock:    s.cfg.Clock,
		Warmup:   settings.WatchdogWarmup,
		Interval: settings.WatchdogInterval,
		OnHung: func() {
			s.notifyError(notifications.SeverityWarning, game.Name, sess.ID,
				"The game stopped responding and was closed.", nil)
		},
		OnKillFailed: func(err error) {
			s.notifyError(notifications.SeverityError, game.Name, sess.ID,
				"The game stopped responding and could not be closed.", err)
		},
	})
	sess.watchdog.Start()

	go s.awaitExit(sess)
	return sess, nil
}

// startInput hooks the keyboard and arms the idle timer when the game and
// settings allow it. Any failure leaves the session running without an
// idle timeout.
func (s *Supervisor) startInput(sess *ActiveSession, settings config.LauncherSettings) {
	if s.cfg.Gate == nil || s.cfg.NewHook == nil {
		return
	}
	if settings.IdleTimeout <= 0 {
		log.Debug().Str("game", sess.Game.Name).Msg("session: idle timeout disabled, not hooking keyboard")
		return
	}

	policy := archgate.Policy{
		HooksEnabled:    settings.HooksEnabledFor(sess.Game.Name, sess.Game.Hooks),
		AlwaysLogCompat: settings.AlwaysLogHookCompat,
		SkipCheck:       settings.SkipHookCompatCheck,
	}
	ok, diag := s.cfg.Gate.CanHook(sess.proc.PID(), policy)
	if diag != nil && policy.HooksEnabled {
		s.notifyError(notifications.SeverityWarning, sess.Game.Name, sess.ID, archgate.Describe(diag), diag)
	}
	if !ok {
		return
	}

	proc := sess.proc
	idle := NewIdleTimer(s.cfg.Clock, settings.IdleTimeout, func() {
		log.Info().Str("game", sess.Game.Name).Msg("session: idle timeout, closing game")
		if err := proc.CloseMainWindow(); err != nil && !errors.Is(err, process.ErrExited) {
			log.Warn().Err(err).Int("pid", proc.PID()).Msg("session: failed to close idle game")
		}
	})

	monitor := inputmon.NewMonitor(s.cfg.NewHook(proc.PID()))
	if err := monitor.Start(idle.Reset); err != nil {
		s.notifyError(notifications.SeverityWarning, sess.Game.Name, sess.ID,
			"Keyboard activity can't be tracked, so the idle timeout is off.", err)
		return
	}
	idle.Start()

	s.mu.Lock()
	sess.monitor = monitor
	sess.idle = idle
	s.mu.Unlock()
}

func (s *Supervisor) awaitExit(sess *ActiveSession) {
	code, err := sess.proc.Wait()
	if err != nil {
		log.Warn().Err(err).Str("game", sess.Game.Name).Msg("session: wait for game failed")
	}
	s.teardown(sess, code)
}

func (s *Supervisor) teardown(sess *ActiveSession, code int) {
	sess.teardown.Do(func() {
		defer close(sess.done)

		sess.watchdog.Stop()
		var keys uint64
		if sess.idle != nil {
			sess.idle.Stop()
		}
		if sess.monitor != nil {
			keys = sess.monitor.Keys()
			if err := sess.monitor.Stop(); err != nil {
				log.Warn().Err(err).Str("game", sess.Game.Name).Msg("session: failed to remove keyboard hook")
				s.notifyError(notifications.SeverityWarning, sess.Game.Name, sess.ID,
					"The keyboard hook could not be removed.", err)
			}
		}

		abnormal := code != 0
		ev := log.Info()
		if abnormal {
			ev = log.Warn()
		}
		ev.Str("game", sess.Game.Name).
			Str("session", sess.ID).
			Int("code", code).
			Uint64("keys", keys).
			Dur("duration", s.cfg.Clock.Since(sess.StartedAt)).
			Msg("session: game exited")

		// ended goes out while the session still holds Running, so it
		// always precedes the next session's started.
		if s.cfg.Notifications != nil {
			notifications.Ended(s.cfg.Notifications, notifications.SessionEndedParams{
				Game:      sess.Game.Name,
				SessionID: sess.ID,
				ExitCode:  code,
				Abnormal:  abnormal,
			})
		}

		s.mu.Lock()
		if s.active == sess {
			s.active = nil
		}
		err := s.state.Transition(Running, Idle)
		s.mu.Unlock()
		if err != nil {
			s.reportViolation(sess.Game.Name, sess.ID, err)
		}
		s.setRunning(false)
	})
}

// Shutdown asks the running game to close and waits for it to exit. If
// ctx ends first the game is killed. It returns once the session is torn
// down, or immediately when nothing is running.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	sess := s.active
	s.mu.RUnlock()
	if sess == nil {
		return nil
	}

	err := sess.proc.CloseMainWindow()
	if err != nil && !errors.Is(err, process.ErrExited) {
		log.Debug().Err(err).Msg("session: close request failed, killing")
	} else {
		select {
		case <-sess.done:
			return nil
		case <-ctx.Done():
		}
	}

	if err := sess.proc.Kill(); err != nil && !errors.Is(err, process.ErrExited) {
		return fmt.Errorf("failed to stop %s: %w", sess.Game.Name, err)
	}
	<-sess.done
	return nil
}

func (s *Supervisor) setRunning(running bool) {
	if s.cfg.OnRunningChanged != nil {
		s.cfg.OnRunningChanged(running)
	}
}

// reportViolation logs a state machine inconsistency with its stack and
// tells the UI. It never panics.
func (s *Supervisor) reportViolation(game, sessionID string, err error) {
	log.Error().Stack().Err(err).Str("game", game).Msg("session: state machine violation")
	s.notifyError(notifications.SeverityError, game, sessionID, "Internal launcher error.", err)
}

func (s *Supervisor) notifyError(sev notifications.Severity, game, sessionID, msg string, cause error) {
	if s.cfg.Notifications == nil {
		return
	}
	notifications.Error(s.cfg.Notifications, sev, game, sessionID, msg, cause)
}
