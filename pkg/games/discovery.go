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

package games

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

// ErrNoExecutable is returned when a game folder has nothing to launch.
var ErrNoExecutable = errors.New("no executable found")

// DiscoverGames scans each immediate subfolder of dir for a game. A folder
// with a game.ini file uses its [game] section; any other folder is launched
// by its first executable and named after the folder. Folders that can't be
// read are skipped with a warning. The result is sorted by name and has no
// duplicate names.
func DiscoverGames(fs afero.Fs, dir string) ([]Game, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read games dir: %w", err)
	}

	found := make([]Game, 0, len(entries))
	seen := make(map[string]string, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		folder := filepath.Join(dir, entry.Name())
		game, err := readGame(fs, folder)
		if err != nil {
			log.Warn().Err(err).Str("folder", folder).Msg("discovery: skipping game folder")
			continue
		}

		if prev, ok := seen[game.Name]; ok {
			log.Warn().
				Str("name", game.Name).
				Str("folder", folder).
				Str("kept", prev).
				Msg("discovery: duplicate game name")
			continue
		}
		seen[game.Name] = folder
		found = append(found, game)
	}

	SortByName(found)
	log.Info().Int("count", len(found)).Str("dir", dir).Msg("discovery: games found")
	return found, nil
}

func readGame(fs afero.Fs, folder string) (Game, error) {
	game := Game{
		Name:    filepath.Base(folder),
		Folder:  folder,
		Players: DefaultPlayers,
		Volume:  DefaultVolume,
		Hooks:   true,
	}

	infoPath := filepath.Join(folder, InfoFile)
	data, err := afero.ReadFile(fs, infoPath)
	switch {
	case err == nil:
		if err := applyInfo(&game, data); err != nil {
			return Game{}, fmt.Errorf("failed to parse %s: %w", infoPath, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Game{}, fmt.Errorf("failed to read %s: %w", infoPath, err)
	}

	if game.Exe == "" {
		exe, err := findExecutable(fs, folder)
		if err != nil {
			return Game{}, err
		}
		game.Exe = exe
	}

	if _, err := fs.Stat(game.Exe); err != nil {
		return Game{}, fmt.Errorf("failed to stat executable: %w", err)
	}

	return game, nil
}

func applyInfo(game *Game, data []byte) error {
	f, err := ini.Load(data)
	if err != nil {
		return fmt.Errorf("invalid ini: %w", err)
	}

	sec := f.Section(InfoSection)
	if name := strings.TrimSpace(sec.Key("name").String()); name != "" {
		game.Name = name
	}
	game.Description = sec.Key("description").String()
	game.Version = sec.Key("version").String()
	game.Args = SplitArgs(sec.Key("args").String())
	game.Players = sec.Key("players").MustInt(DefaultPlayers)
	game.Hooks = sec.Key("hooks").MustBool(true)

	volume := sec.Key("volume").MustInt(DefaultVolume)
	game.Volume = max(0, min(100, volume))

	if exe := sec.Key("exe").String(); exe != "" {
		if filepath.IsAbs(exe) {
			game.Exe = exe
		} else {
			game.Exe = filepath.Join(game.Folder, exe)
		}
	}

	if wd := sec.Key("folder").String(); wd != "" {
		if filepath.IsAbs(wd) {
			game.Folder = wd
		} else {
			game.Folder = filepath.Join(game.Folder, wd)
		}
	}

	return nil
}

// findExecutable returns the first launchable file in folder, in name order.
// On Windows that is the first .exe, elsewhere the first regular file with
// an execute bit.
func findExecutable(fs afero.Fs, folder string) (string, error) {
	entries, err := afero.ReadDir(fs, folder)
	if err != nil {
		return "", fmt.Errorf("failed to read game folder: %w", err)
	}

	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			continue
		}
		if isExecutable(entry, runtime.GOOS) {
			return filepath.Join(folder, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("%w in %s", ErrNoExecutable, folder)
}

func isExecutable(fi os.FileInfo, goos string) bool {
	if goos == "windows" {
		return strings.EqualFold(filepath.Ext(fi.Name()), ".exe")
	}
	return fi.Mode().Perm()&0o111 != 0
}
