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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/zaparoo-launcher/internal/telemetry"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/cli"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/platforms"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/service"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/ui/menu"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	pl := newPlatform()
	if err := run(pl); err != nil {
		log.Error().Err(err).Msg("launcher exited with error")
		telemetry.Close()
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\nLog file: %s\n", err, helpers.LogPath(pl))
		os.Exit(1)
	}
	telemetry.Close()
}

func run(pl platforms.Platform) error {
	flags := cli.SetupFlags()
	flags.Pre(pl)

	// The menu owns the terminal, so only headless modes log to it.
	var writers []io.Writer
	if *flags.Daemon || *flags.List || *flags.Launch != "" {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg := cli.Setup(pl, config.BaseDefaults, writers)
	flags.Apply(cfg)
	flags.Post(cfg, pl)

	release, err := helpers.AcquirePidFile(pl.Settings().TempDir)
	if err != nil {
		return fmt.Errorf("failed to acquire pid file: %w", err)
	}
	defer release()

	if err := config.LoadMenuConfig(helpers.ConfigDir(pl)); err != nil {
		log.Warn().Err(err).Msg("failed to load menu config, using defaults")
	}

	app := tview.NewApplication()
	m := menu.New(app, config.GetMenuConfig())

	svc, err := service.Start(pl, cfg, service.Options{
		OnRunningChanged: m.SetRunning,
		Watch:            true,
	})
	if err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	telemetry.SetGamesDir(svc.GamesDir())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	menuErr := m.Run(ctx, svc)
	if err := svc.Stop(); err != nil {
		log.Error().Err(err).Msg("error stopping service")
	}
	return menuErr
}
