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

// Package cli holds the command line flags shared by every launcher build
// and the non-interactive modes behind them.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/ZaparooProject/zaparoo-launcher/internal/telemetry"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/freshness"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/games"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/notifications"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/platforms"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrServiceStopped is returned by LaunchAndWait when the service goes away
// before the session ends.
var ErrServiceStopped = errors.New("service stopped")

type Flags struct {
	Version  *bool
	List     *bool
	Daemon   *bool
	Launch   *string
	GamesDir *string
	Debug    *bool
	fs       *flag.FlagSet
}

// SetupFlags registers the common flags on the default flag set. Builds can
// add their own flags before calling Pre.
func SetupFlags() *Flags {
	return NewFlags(flag.CommandLine)
}

func NewFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		fs: fs,
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
		List: fs.Bool(
			"list",
			false,
			"print discovered games and their badges, then exit",
		),
		Daemon: fs.Bool(
			"daemon",
			false,
			"run the launcher with no menu until interrupted",
		),
		Launch: fs.String(
			"launch",
			"",
			"launch a game by name and wait for it to exit",
		),
		GamesDir: fs.String(
			"games",
			"",
			"override the games folder for this run",
		),
		Debug: fs.Bool(
			"debug",
			false,
			"enable debug logging for this run",
		),
	}
}

func (f *Flags) isPassed(name string) bool {
	found := false
	f.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

// Pre parses the command line and handles flags that don't need config.
func (f *Flags) Pre(pl platforms.Platform) {
	if !f.fs.Parsed() {
		_ = f.fs.Parse(os.Args[1:])
	}

	if *f.Version {
		_, _ = fmt.Printf("Zaparoo Launcher v%s (%s)\n", config.AppVersion, pl.ID())
		os.Exit(0)
	}
}

// Apply copies per-run overrides into the loaded config. Nothing is saved.
func (f *Flags) Apply(cfg *config.Instance) {
	if *f.GamesDir != "" {
		dir, err := filepath.Abs(*f.GamesDir)
		if err != nil {
			dir = *f.GamesDir
		}
		cfg.SetGamesDir(dir)
	}
	if *f.Debug {
		cfg.SetDebugLogging(true)
	}
}

// Post handles the flags that run instead of the menu. It returns only if
// none of them were passed.
func (f *Flags) Post(cfg *config.Instance, pl platforms.Platform) {
	switch {
	case *f.List:
		os.Exit(exitCode(runService(cfg, pl, func(_ context.Context, svc *service.Service) error {
			return ListGames(os.Stdout, svc)
		})))
	case f.isPassed("launch"):
		if *f.Launch == "" {
			_, _ = fmt.Fprint(os.Stderr, "Error: launch flag requires a value\n")
			os.Exit(1)
		}
		code := 0
		err := runService(cfg, pl, func(ctx context.Context, svc *service.Service) error {
			ended, err := LaunchAndWait(ctx, svc, *f.Launch, os.Stderr)
			if err != nil {
				return err
			}
			code = ended.ExitCode
			if code < 0 || (code == 0 && ended.Abnormal) {
				code = 1
			}
			return nil
		})
		if err != nil {
			os.Exit(exitCode(err))
		}
		os.Exit(code)
	case *f.Daemon:
		os.Exit(exitCode(runService(cfg, pl, RunDaemon)))
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	log.Error().Err(err).Msg("launcher error")
	_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

// runService starts the service for a headless mode and stops it when fn
// returns or the process is interrupted.
func runService(
	cfg *config.Instance,
	pl platforms.Platform,
	fn func(context.Context, *service.Service) error,
) error {
	release, err := helpers.AcquirePidFile(pl.Settings().TempDir)
	if err != nil {
		return fmt.Errorf("failed to acquire pid file: %w", err)
	}
	defer release()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := service.Start(pl, cfg, service.Options{})
	if err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	telemetry.SetGamesDir(svc.GamesDir())

	fnErr := fn(ctx, svc)
	if err := svc.Stop(); err != nil {
		log.Error().Err(err).Msg("error stopping service")
	}
	return fnErr
}

// GameLister is the read side of the service ListGames needs.
type GameLister interface {
	Games() []games.Game
	Badge(name string) freshness.Status
}

// ListGames writes one line per game: name, badge and executable.
func ListGames(w io.Writer, svc GameLister) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tBADGE\tEXECUTABLE")
	for _, g := range svc.Games() {
		badge := ""
		if st := svc.Badge(g.Name); st != freshness.Stale {
			badge = st.String()
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", g.Name, badge, g.Exe)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write game list: %w", err)
	}
	return nil
}

// SessionLauncher is the part of the service LaunchAndWait drives.
type SessionLauncher interface {
	Launch(ctx context.Context, name string) (session.Info, error)
	Subscribe(size int) (<-chan notifications.Notification, int)
	Unsubscribe(id int)
	Done() <-chan struct{}
}

// LaunchAndWait starts a game and blocks until its session ends. Session
// errors are written to errOut as they arrive. Cancelling ctx returns
// ctx's error without touching the game; stopping the service closes it.
func LaunchAndWait(
	ctx context.Context,
	svc SessionLauncher,
	name string,
	errOut io.Writer,
) (notifications.SessionEndedParams, error) {
	ns, id := svc.Subscribe(16)
	defer svc.Unsubscribe(id)

	info, err := svc.Launch(ctx, name)
	if err != nil {
		return notifications.SessionEndedParams{}, fmt.Errorf("failed to launch %s: %w", name, err)
	}
	log.Info().Str("game", info.Game.Name).Str("session", info.ID).Msg("waiting for game to exit")

	for {
		select {
		case <-ctx.Done():
			return notifications.SessionEndedParams{}, ctx.Err()
		case <-svc.Done():
			return notifications.SessionEndedParams{}, ErrServiceStopped
		case n, ok := <-ns:
			if !ok {
				return notifications.SessionEndedParams{}, ErrServiceStopped
			}
			switch p := n.Params.(type) {
			case notifications.ErrorParams:
				if p.SessionID == info.ID {
					_, _ = fmt.Fprintf(errOut, "%s: %s\n", p.Severity, p.Message)
				}
			case notifications.SessionEndedParams:
				if p.SessionID == info.ID {
					return p, nil
				}
			}
		}
	}
}

// RunDaemon keeps the service up until ctx is cancelled or the service
// stops on its own.
func RunDaemon(ctx context.Context, svc *service.Service) error {
	log.Info().Str("games", svc.GamesDir()).Msg("running in daemon mode")
	select {
	case <-ctx.Done():
	case <-svc.Done():
	}
	return nil
}

// Setup initializes logging and loads the user config.
//
//nolint:gocritic // config struct copied for immutability
func Setup(
	pl platforms.Platform,
	defaultConfig config.Values,
	writers []io.Writer,
) *config.Instance {
	for _, dir := range []string{helpers.ConfigDir(pl), helpers.DataDir(pl)} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error creating directories: %v\n", err)
			os.Exit(1)
		}
	}

	err := helpers.InitLogging(pl, writers)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(helpers.ConfigDir(pl), defaultConfig)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := telemetry.Init(
		cfg.ErrorReporting(),
		cfg.DeviceID(),
		config.AppVersion,
		pl.ID(),
	); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg
}
