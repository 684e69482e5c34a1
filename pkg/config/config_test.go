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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T, contents string) *Instance {
	t.Helper()
	dir := t.TempDir()
	if contents != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, CfgFile), []byte(contents), 0o600))
	}
	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)
	return cfg
}

func TestNewConfig_WritesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, CfgFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "config_schema = 1")
	assert.Equal(t, filepath.Join(dir, CfgFile), cfg.Path())
	assert.Equal(t, DefaultLauncherSettings(), cfg.LauncherSettings())
}

func TestLoad_SchemaMismatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CfgFile), []byte("config_schema = 99\n"), 0o600))
	_, err := NewConfig(dir, BaseDefaults)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version mismatch")
}

func TestLauncherSettings_FromFile(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, `config_schema = 1

[session]
idle_timeout = "2m"
watchdog_warmup = "1s"
watchdog_interval = "250ms"

[hooks]
disabled_games = ["Pinball"]
always_log_compat = true
skip_compat_check = true

[freshness]
retention_days = 3
recheck_interval = "30m"
`)

	s := cfg.LauncherSettings()
	assert.Equal(t, 2*time.Minute, s.IdleTimeout)
	assert.Equal(t, time.Second, s.WatchdogWarmup)
	assert.Equal(t, 250*time.Millisecond, s.WatchdogInterval)
	assert.Equal(t, 72*time.Hour, s.RetentionWindow)
	assert.Equal(t, 30*time.Minute, s.RecheckInterval)
	assert.Equal(t, []string{"Pinball"}, s.HooksDisabledFor)
	assert.False(t, s.HooksDisabled)
	assert.True(t, s.AlwaysLogHookCompat)
	assert.True(t, s.SkipHookCompatCheck)
}

func TestLauncherSettings_InvalidDurationsUseDefaults(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, `config_schema = 1

[session]
idle_timeout = "soon"
watchdog_interval = "0s"

[freshness]
retention_days = -4
`)

	s := cfg.LauncherSettings()
	assert.Equal(t, DefaultIdleTimeout, s.IdleTimeout)
	assert.Equal(t, DefaultWatchdogInterval, s.WatchdogInterval)
	assert.Equal(t, DefaultRetentionDays*24*time.Hour, s.RetentionWindow)
}

func TestLauncherSettings_SnapshotIsIsolated(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, "")
	cfg.SetHooksDisabledGames([]string{"A"})
	snap := cfg.LauncherSettings()

	cfg.SetHooksDisabledGames([]string{"B"})
	require.NoError(t, cfg.SetIdleTimeout("1m"))

	assert.Equal(t, []string{"A"}, snap.HooksDisabledFor)
	assert.Equal(t, DefaultIdleTimeout, snap.IdleTimeout)
	assert.Equal(t, time.Minute, cfg.IdleTimeout())
}

func TestHooksEnabledFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		game      string
		settings  LauncherSettings
		gameHooks bool
		expected  bool
	}{
		{name: "enabled", game: "A", gameHooks: true, expected: true},
		{name: "game flag off", game: "A", gameHooks: false, expected: false},
		{
			name:      "globally disabled",
			game:      "A",
			settings:  LauncherSettings{HooksDisabled: true},
			gameHooks: true,
			expected:  false,
		},
		{
			name:      "listed as disabled",
			game:      "A",
			settings:  LauncherSettings{HooksDisabledFor: []string{"B", "A"}},
			gameHooks: true,
			expected:  false,
		},
		{
			name:      "other game listed",
			game:      "A",
			settings:  LauncherSettings{HooksDisabledFor: []string{"B"}},
			gameHooks: true,
			expected:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.settings.HooksEnabledFor(tt.game, tt.gameHooks))
		})
	}
}

func TestSetters_RejectInvalid(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, "")
	require.Error(t, cfg.SetIdleTimeout("-1m"))
	require.Error(t, cfg.SetWatchdogInterval("0s"))
	require.Error(t, cfg.SetFreshnessRetentionDays(-1))
	require.NoError(t, cfg.SetFreshnessRetentionDays(0))
	assert.Equal(t, time.Duration(0), cfg.FreshnessRetention())
}

func TestSave_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, "")
	cfg.SetHooksDisabled(true)
	cfg.SetGamesDir("/srv/games")
	cfg.SetSkipHookCompatCheck(true)
	cfg.SetErrorReporting(true)
	require.NoError(t, cfg.SetIdleTimeout("90s"))
	require.NoError(t, cfg.Save())

	reloaded, err := NewConfig(filepath.Dir(cfg.Path()), BaseDefaults)
	require.NoError(t, err)
	assert.True(t, reloaded.HooksDisabled())
	assert.True(t, reloaded.SkipHookCompatCheck())
	assert.True(t, reloaded.ErrorReporting())
	assert.Equal(t, 90*time.Second, reloaded.IdleTimeout())
	assert.Equal(t, "/srv/games", reloaded.GamesDir("/opt/launcher/Games"))
}

func TestGamesDir(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, "")
	def := filepath.Join("opt", "launcher", "Games")
	assert.Equal(t, def, cfg.GamesDir(def))

	cfg.SetGamesDir("Other")
	assert.Equal(t, filepath.Join("opt", "launcher", "Other"), cfg.GamesDir(def))
}

func TestMenuConfig_LoadCreatesDefault(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, LoadMenuConfig(dir))
	assert.FileExists(t, filepath.Join(dir, MenuFile))
	assert.Equal(t, DefaultMenuConfig(), GetMenuConfig())
}

func TestDeviceID_GeneratedOnceOnSave(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)
	id := cfg.DeviceID()
	require.NotEmpty(t, id)

	require.NoError(t, cfg.Save())
	again, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, id, again.DeviceID())
	assert.False(t, again.ErrorReporting())
}
