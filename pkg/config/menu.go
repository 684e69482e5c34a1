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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

// MenuConfig holds settings for the terminal game menu. It's kept apart
// from the main config so UI tweaks never touch session settings.
type MenuConfig struct {
	Theme            string `toml:"theme"`
	Mouse            bool   `toml:"mouse"`
	ShowDescriptions bool   `toml:"show_descriptions"`
}

var menuCfg atomic.Value

func DefaultMenuConfig() MenuConfig {
	return MenuConfig{
		Theme:            "default",
		Mouse:            true,
		ShowDescriptions: true,
	}
}

// GetMenuConfig returns the current menu configuration.
func GetMenuConfig() MenuConfig {
	val := menuCfg.Load()
	if val == nil {
		return DefaultMenuConfig()
	}
	cfg, ok := val.(MenuConfig)
	if !ok {
		return DefaultMenuConfig()
	}
	return cfg
}

// LoadMenuConfig loads the menu configuration from configDir, creating a
// default file if there isn't one.
func LoadMenuConfig(configDir string) error {
	menuPath := filepath.Clean(filepath.Join(configDir, MenuFile))

	if _, err := os.Stat(menuPath); os.IsNotExist(err) {
		log.Info().Str("path", menuPath).Msg("creating default menu config")
		menuCfg.Store(DefaultMenuConfig())
		if err := SaveMenuConfig(configDir); err != nil {
			return fmt.Errorf("failed to create menu config: %w", err)
		}
		return nil
	}

	data, err := os.ReadFile(menuPath) //nolint:gosec // path is built from the config dir
	if err != nil {
		return fmt.Errorf("failed to read menu config: %w", err)
	}

	cfg := DefaultMenuConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to unmarshal menu config: %w", err)
	}

	menuCfg.Store(cfg)
	return nil
}

func SaveMenuConfig(configDir string) error {
	menuPath := filepath.Join(configDir, MenuFile)

	data, err := toml.Marshal(GetMenuConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal menu config: %w", err)
	}

	if err := os.WriteFile(menuPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write menu config: %w", err)
	}
	return nil
}
