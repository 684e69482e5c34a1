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

// Package service wires the launcher together: game discovery, freshness
// badges, the notification broker and the session supervisor.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/freshness"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/games"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/notifications"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/platforms"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/broker"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service/state"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/session"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/session/archgate"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// ErrGameNotFound is returned by Launch for a name that isn't discovered.
var ErrGameNotFound = errors.New("game not found")

// shutdownGrace is how long Stop lets a running game close on its own
// before killing it.
const shutdownGrace = 5 * time.Second

type Options struct {
	// Fs is used for discovery and the freshness table. Defaults to the
	// OS filesystem.
	Fs    afero.Fs
	Clock clockwork.Clock
	// OnRunningChanged is handed to the supervisor. See session.Config.
	OnRunningChanged func(running bool)
	// Watch enables refreshing the game list when the games folder
	// changes. It needs the real filesystem.
	Watch bool
}

type Service struct {
	pl        platforms.Platform
	cfg       *config.Instance
	st        *state.State
	broker    *broker.Broker
	sup       *session.Supervisor
	tracker   *freshness.Tracker
	rechecker *freshness.Rechecker
	watcher   *games.Watcher
	fs        afero.Fs
	done      chan struct{}
	gamesDir  string
	refreshMu syncutil.Mutex
}

func setupEnvironment(pl platforms.Platform) error {
	if _, ok := helpers.HasUserDir(); ok {
		log.Info().Msg("using 'user' directory for storage")
	}

	log.Info().Msg("creating platform directories")
	dirs := []string{
		helpers.ConfigDir(pl),
		pl.Settings().TempDir,
		helpers.DataDir(pl),
	}
	for _, dir := range dirs {
		err := os.MkdirAll(dir, 0o750)
		if err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// Start discovers games, runs the first freshness pass and gets the
// supervisor ready to launch. The service runs until Stop.
func Start(pl platforms.Platform, cfg *config.Instance, opts Options) (*Service, error) {
	log.Info().Msgf("version: %s", config.AppVersion)

	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	if _, ok := opts.Fs.(*afero.OsFs); ok {
		if err := setupEnvironment(pl); err != nil {
			log.Error().Err(err).Msg("error setting up environment")
			return nil, err
		}
	}

	st, ns := state.NewState()
	notifBroker := broker.NewBroker(st.GetContext(), ns)
	notifBroker.Start()

	settings := cfg.LauncherSettings()
	s := &Service{
		pl:       pl,
		cfg:      cfg,
		st:       st,
		broker:   notifBroker,
		fs:       opts.Fs,
		done:     make(chan struct{}),
		gamesDir: cfg.GamesDir(helpers.DefaultGamesDir()),
	}

	if err := s.fs.MkdirAll(s.gamesDir, 0o750); err != nil {
		st.StopService()
		return nil, fmt.Errorf("failed to create games dir: %w", err)
	}

	log.Info().Str("dir", s.gamesDir).Msg("discovering games")
	found, err := games.DiscoverGames(s.fs, s.gamesDir)
	if err != nil {
		st.StopService()
		return nil, fmt.Errorf("failed to discover games: %w", err)
	}
	st.SetGames(found)

	store := freshness.NewStore(s.fs, filepath.Join(helpers.DataDir(pl), config.FreshnessFile))
	s.tracker = freshness.NewTracker(s.fs, store, opts.Clock, settings.RetentionWindow)
	s.tracker.Evaluate(found, true)
	st.SetBadges(s.tracker.Badges())

	s.rechecker = freshness.NewRechecker(opts.Clock, settings.RecheckInterval, s.tracker, st.Games, st.SetBadges)
	s.rechecker.Ensure()

	if opts.Watch {
		s.watcher, err = games.NewWatcher(s.gamesDir, opts.Clock, func() {
			if err := s.Refresh(); err != nil {
				log.Warn().Err(err).Msg("failed to refresh games")
			}
		})
		if err != nil {
			log.Warn().Err(err).Msg("games folder won't be watched")
		}
	}

	s.sup = session.NewSupervisor(session.Config{
		Settings:         cfg.LauncherSettings,
		Starter:          pl.Starter(),
		Gate:             archgate.New(pl.Prober()),
		NewHook:          pl.NewKeyboardHook,
		Clock:            opts.Clock,
		Notifications:    st.Notifications,
		OnRunningChanged: opts.OnRunningChanged,
	})

	go func() {
		<-st.GetContext().Done()
		log.Info().Msg("service context cancelled, running cleanup")
		notifBroker.Stop()
		log.Info().Msg("service cleanup completed")
		close(s.done)
	}()

	log.Info().Int("games", len(found)).Msg("service fully initialized")
	return s, nil
}

// Refresh rediscovers games and updates their badges.
func (s *Service) Refresh() error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	found, err := games.DiscoverGames(s.fs, s.gamesDir)
	if err != nil {
		return fmt.Errorf("failed to discover games: %w", err)
	}
	s.st.SetGames(found)

	if s.tracker.Evaluate(found, false) {
		s.st.SetBadges(s.tracker.Badges())
	}
	s.rechecker.Ensure()
	return nil
}

// Launch starts the named game.
func (s *Service) Launch(ctx context.Context, name string) (session.Info, error) {
	game, ok := s.st.FindGame(name)
	if !ok {
		return session.Info{}, fmt.Errorf("%w: %s", ErrGameNotFound, name)
	}
	info, err := s.sup.Launch(ctx, game)
	if err != nil {
		return session.Info{}, fmt.Errorf("failed to launch: %w", err)
	}
	return info, nil
}

func (s *Service) Games() []games.Game {
	return s.st.Games()
}

func (s *Service) Badges() map[string]freshness.Status {
	return s.st.Badges()
}

func (s *Service) Badge(name string) freshness.Status {
	return s.st.Badge(name)
}

func (s *Service) Session() (session.Info, bool) {
	return s.sup.Active()
}

func (s *Service) SessionState() session.State {
	return s.sup.State()
}

func (s *Service) GamesDir() string {
	return s.gamesDir
}

func (s *Service) Subscribe(size int) (<-chan notifications.Notification, int) {
	return s.broker.Subscribe(size)
}

func (s *Service) Unsubscribe(id int) {
	s.broker.Unsubscribe(id)
}

// Done is closed once the service has stopped.
func (s *Service) Done() <-chan struct{} {
	return s.done
}

// Stop closes any running game, stops background work and waits for the
// broker to drain.
func (s *Service) Stop() error {
	if s.st.ShouldStopService() {
		<-s.done
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		return s.sup.Shutdown(ctx)
	})
	g.Go(func() error {
		s.rechecker.Stop()
		return nil
	})
	if s.watcher != nil {
		g.Go(s.watcher.Close)
	}
	err := g.Wait()

	s.st.StopService()
	<-s.done
	if err != nil {
		return fmt.Errorf("error stopping service: %w", err)
	}
	return nil
}
