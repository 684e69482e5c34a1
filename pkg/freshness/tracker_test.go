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

package freshness

import (
	"context"
	"path"
	"testing"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/games"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const (
	testRetention = 14 * 24 * time.Hour
	tablePath     = "/data/freshness.txt"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	fs    afero.Fs
	store *Store
	clock *clockwork.FakeClock
}

func newFixture() *fixture {
	fs := afero.NewMemMapFs()
	return &fixture{
		fs:    fs,
		store: NewStore(fs, tablePath),
		clock: clockwork.NewFakeClockAt(testNow),
	}
}

func (f *fixture) game(t *testing.T, name string, mod time.Time) games.Game {
	t.Helper()
	exe := path.Join("/games", name, "game.exe")
	require.NoError(t, afero.WriteFile(f.fs, exe, []byte("MZ"), 0o755))
	require.NoError(t, f.fs.Chtimes(exe, mod, mod))
	return games.Game{Name: name, Exe: exe, Folder: path.Dir(exe)}
}

func (f *fixture) touch(t *testing.T, g games.Game, mod time.Time) {
	t.Helper()
	require.NoError(t, f.fs.Chtimes(g.Exe, mod, mod))
}

func (f *fixture) tracker() *Tracker {
	return NewTracker(f.fs, f.store, f.clock, testRetention)
}

func (f *fixture) table(t *testing.T) Table {
	t.Helper()
	tbl, err := f.store.Load()
	require.NoError(t, err)
	return tbl
}

func TestEvaluate_EmptyTableMarksAllNew(t *testing.T) {
	t.Parallel()

	f := newFixture()
	mod := testNow.Add(-time.Hour)
	gs := []games.Game{
		f.game(t, "Asteroids", mod),
		f.game(t, "Pong", mod),
		f.game(t, "Tetris", mod),
	}

	tr := f.tracker()
	assert.True(t, tr.Evaluate(gs, true))

	for _, g := range gs {
		assert.Equal(t, New, tr.Status(g.Name), g.Name)
	}
	tbl := f.table(t)
	assert.Len(t, tbl, 3)
	assert.Equal(t, ToFileTime(mod), tbl["Pong"])
	assert.True(t, tr.HasBadges())
}

func TestEvaluate_OlderExecutableIsNotUpdated(t *testing.T) {
	t.Parallel()

	f := newFixture()
	mod := testNow.Add(-time.Hour)
	g := f.game(t, "Pong", mod)
	require.NoError(t, f.store.Save(Table{"Pong": ToFileTime(mod) + 10}))

	tr := f.tracker()
	tr.Evaluate([]games.Game{g}, true)
	assert.Equal(t, Stale, tr.Status("Pong"))

	tr.Evaluate([]games.Game{g}, false)
	assert.Equal(t, Stale, tr.Status("Pong"))
	assert.Equal(t, ToFileTime(mod)+10, f.table(t)["Pong"])
}

func TestEvaluate_UpdatedKeepsRecord(t *testing.T) {
	t.Parallel()

	f := newFixture()
	old := testNow.Add(-30 * 24 * time.Hour)
	g := f.game(t, "Pong", testNow.Add(-2*24*time.Hour))
	require.NoError(t, f.store.Save(Table{"Pong": ToFileTime(old)}))

	tr := f.tracker()
	assert.True(t, tr.Evaluate([]games.Game{g}, true))
	assert.Equal(t, Updated, tr.Status("Pong"))
	assert.Equal(t, ToFileTime(old), f.table(t)["Pong"])

	// Still updated after a restart.
	restarted := f.tracker()
	restarted.Evaluate([]games.Game{g}, true)
	assert.Equal(t, Updated, restarted.Status("Pong"))
}

func TestEvaluate_UpdatedWhileRunning(t *testing.T) {
	t.Parallel()

	f := newFixture()
	mod := testNow.Add(-time.Hour)
	g := f.game(t, "Pong", mod)
	require.NoError(t, f.store.Save(Table{"Pong": ToFileTime(mod)}))

	tr := f.tracker()
	tr.Evaluate([]games.Game{g}, true)
	require.Equal(t, New, tr.Status("Pong"))

	f.clock.Advance(time.Minute)
	f.touch(t, g, f.clock.Now())
	assert.True(t, tr.Evaluate([]games.Game{g}, false))
	assert.Equal(t, Updated, tr.Status("Pong"))
}

func TestEvaluate_BadgeExpiresAndRefreshesRecord(t *testing.T) {
	t.Parallel()

	f := newFixture()
	g := f.game(t, "Pong", testNow.Add(-time.Hour))

	tr := f.tracker()
	tr.Evaluate([]games.Game{g}, true)
	require.Equal(t, New, tr.Status("Pong"))

	f.clock.Advance(testRetention - time.Hour)
	assert.False(t, tr.Evaluate([]games.Game{g}, false))
	assert.Equal(t, New, tr.Status("Pong"))

	f.clock.Advance(2 * time.Hour)
	assert.True(t, tr.Evaluate([]games.Game{g}, false))
	assert.Equal(t, Stale, tr.Status("Pong"))
	assert.Equal(t, ToFileTime(f.clock.Now()), f.table(t)["Pong"])
	assert.False(t, tr.HasBadges())

	// The window stays closed after a restart.
	restarted := f.tracker()
	restarted.Evaluate([]games.Game{g}, true)
	assert.Equal(t, Stale, restarted.Status("Pong"))
}

func TestEvaluate_NewSurvivesLaterPasses(t *testing.T) {
	t.Parallel()

	f := newFixture()
	g := f.game(t, "Pong", testNow.Add(-time.Hour))
	require.NoError(t, f.store.Save(Table{"Pong": ToFileTime(testNow.Add(-time.Hour))}))

	tr := f.tracker()
	tr.Evaluate([]games.Game{g}, true)
	require.Equal(t, New, tr.Status("Pong"))

	// An unchanged executable keeps the badge it already has until the
	// window closes. Only a first sighting or a startup pass grants New.
	for range 3 {
		f.clock.Advance(time.Hour)
		assert.False(t, tr.Evaluate([]games.Game{g}, false))
		assert.Equal(t, New, tr.Status("Pong"))
	}

	other := f.game(t, "Tetris", testNow.Add(-time.Hour))
	require.NoError(t, f.store.Save(Table{"Tetris": ToFileTime(testNow.Add(-time.Hour))}))
	fresh := f.tracker()
	fresh.Evaluate([]games.Game{other}, false)
	assert.Equal(t, Stale, fresh.Status("Tetris"))
}

func TestEvaluate_OldCopiedExecutableAgesFromModTime(t *testing.T) {
	t.Parallel()

	f := newFixture()
	// Copied in today with its original mtime kept.
	g := f.game(t, "Pong", testNow.Add(-30*24*time.Hour))

	tr := f.tracker()
	tr.Evaluate([]games.Game{g}, true)
	require.Equal(t, New, tr.Status("Pong"))
	assert.Equal(t, ToFileTime(testNow.Add(-30*24*time.Hour)), f.table(t)["Pong"])

	// Within the run the badge is anchored on first sight.
	f.clock.Advance(24 * time.Hour)
	tr.Evaluate([]games.Game{g}, false)
	assert.Equal(t, New, tr.Status("Pong"))

	// The table keeps only the mtime, so a restart ages the badge from it.
	restarted := f.tracker()
	restarted.Evaluate([]games.Game{g}, true)
	assert.Equal(t, Stale, restarted.Status("Pong"))
	assert.Equal(t, ToFileTime(f.clock.Now()), f.table(t)["Pong"])
}

func TestEvaluate_ExpiredUpdateOnStartup(t *testing.T) {
	t.Parallel()

	f := newFixture()
	g := f.game(t, "Pong", testNow.Add(-15*24*time.Hour))
	require.NoError(t, f.store.Save(Table{"Pong": ToFileTime(testNow.Add(-60 * 24 * time.Hour))}))

	tr := f.tracker()
	tr.Evaluate([]games.Game{g}, true)
	assert.Equal(t, Stale, tr.Status("Pong"))
	assert.Equal(t, ToFileTime(testNow), f.table(t)["Pong"])
}

func TestEvaluate_StaleStaysStale(t *testing.T) {
	t.Parallel()

	f := newFixture()
	mod := testNow.Add(-20 * 24 * time.Hour)
	g := f.game(t, "Pong", mod)
	require.NoError(t, f.store.Save(Table{"Pong": ToFileTime(mod)}))

	// Outside its window already, so the startup pass expires it at once.
	tr := f.tracker()
	tr.Evaluate([]games.Game{g}, true)
	require.Equal(t, Stale, tr.Status("Pong"))
	assert.Equal(t, ToFileTime(testNow), f.table(t)["Pong"])

	f.clock.Advance(time.Hour)
	assert.False(t, tr.Evaluate([]games.Game{g}, false))
	assert.Equal(t, Stale, tr.Status("Pong"))
}

func TestEvaluate_UnchangedInsideWindowIsNewOnStartup(t *testing.T) {
	t.Parallel()

	f := newFixture()
	mod := testNow.Add(-2 * 24 * time.Hour)
	g := f.game(t, "Pong", mod)
	require.NoError(t, f.store.Save(Table{"Pong": ToFileTime(mod)}))

	tr := f.tracker()
	tr.Evaluate([]games.Game{g}, true)
	assert.Equal(t, New, tr.Status("Pong"))
}

func TestEvaluate_PrunesOnlyOnInitialPass(t *testing.T) {
	t.Parallel()

	f := newFixture()
	mod := testNow.Add(-time.Hour)
	g := f.game(t, "Pong", mod)
	require.NoError(t, f.store.Save(Table{"Pong": ToFileTime(mod), "Gone": 1}))

	tr := f.tracker()
	tr.Evaluate([]games.Game{g}, false)
	assert.Contains(t, f.table(t), "Gone")

	tr.Evaluate([]games.Game{g}, true)
	assert.NotContains(t, f.table(t), "Gone")
	assert.Contains(t, f.table(t), "Pong")
}

func TestEvaluate_MalformedTable(t *testing.T) {
	t.Parallel()

	f := newFixture()
	mod := testNow.Add(-time.Hour)
	g := f.game(t, "Pong", mod)
	require.NoError(t, afero.WriteFile(f.fs, tablePath, []byte("Pong\nxyz\nTetris"), 0o644))

	tr := f.tracker()
	assert.True(t, tr.Evaluate([]games.Game{g}, true))
	assert.Equal(t, New, tr.Status("Pong"))
	assert.Equal(t, Table{"Pong": ToFileTime(mod)}, f.table(t))
}

func TestEvaluate_NoWriteWhenNothingChanged(t *testing.T) {
	t.Parallel()

	f := newFixture()
	mod := testNow.Add(-time.Hour)
	g := f.game(t, "Pong", mod)
	require.NoError(t, f.store.Save(Table{"Pong": ToFileTime(mod)}))

	ro := NewTracker(afero.NewReadOnlyFs(f.fs), NewStore(afero.NewReadOnlyFs(f.fs), tablePath), f.clock, testRetention)
	ro.Evaluate([]games.Game{g}, true)
	assert.Equal(t, New, ro.Status("Pong"))
}

func TestEvaluate_WriteFailureKeepsTable(t *testing.T) {
	t.Parallel()

	f := newFixture()
	mod := testNow.Add(-time.Hour)
	pong := f.game(t, "Pong", mod)
	tetris := f.game(t, "Tetris", mod)
	require.NoError(t, f.store.Save(Table{"Pong": ToFileTime(mod)}))

	ro := afero.NewReadOnlyFs(f.fs)
	tr := NewTracker(ro, NewStore(ro, tablePath), f.clock, testRetention)
	tr.Evaluate([]games.Game{pong, tetris}, true)

	assert.Equal(t, New, tr.Status("Tetris"))
	assert.Equal(t, Table{"Pong": ToFileTime(mod)}, f.table(t))
}

func TestEvaluate_NeverUpdatedWhenOlder(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture()
		recorded := testNow.Add(-time.Duration(rapid.Int64Range(0, 1000).Draw(rt, "recAge")) * time.Hour)
		skew := time.Duration(rapid.Int64Range(0, 1000).Draw(rt, "skew")) * time.Minute
		initial := rapid.Bool().Draw(rt, "initial")

		exe := "/games/Pong/game.exe"
		if err := afero.WriteFile(f.fs, exe, []byte("MZ"), 0o755); err != nil {
			rt.Fatal(err)
		}
		mod := recorded.Add(-skew)
		if err := f.fs.Chtimes(exe, mod, mod); err != nil {
			rt.Fatal(err)
		}
		if err := f.store.Save(Table{"Pong": ToFileTime(recorded)}); err != nil {
			rt.Fatal(err)
		}

		tr := f.tracker()
		tr.Evaluate([]games.Game{{Name: "Pong", Exe: exe}}, initial)
		if tr.Status("Pong") == Updated {
			rt.Fatalf("marked updated with mod %v <= record %v", mod, recorded)
		}
	})
}

func TestRechecker_StopsWhenNoBadges(t *testing.T) {
	t.Parallel()

	f := newFixture()
	gs := []games.Game{f.game(t, "Pong", testNow.Add(-time.Hour))}
	tr := f.tracker()
	tr.Evaluate(gs, true)

	changes := make(chan map[string]Status, 4)
	r := NewRechecker(f.clock, time.Hour, tr, func() []games.Game { return gs },
		func(b map[string]Status) { changes <- b })
	defer r.Stop()

	r.Ensure()
	require.True(t, r.Armed())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// An hourly pass with the badge still live re-arms.
	f.clock.Advance(time.Hour)
	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
	assert.True(t, r.Armed())
	assert.Empty(t, changes)

	// Past the retention window the badge clears and the timer stops.
	f.clock.Advance(testRetention)
	select {
	case b := <-changes:
		assert.Equal(t, Stale, b["Pong"])
	case <-ctx.Done():
		require.FailNow(t, "no change reported")
	}
	assert.Eventually(t, func() bool { return !r.Armed() }, time.Second, 5*time.Millisecond)
}

func TestRechecker_EnsureWithoutBadges(t *testing.T) {
	t.Parallel()

	f := newFixture()
	tr := f.tracker()
	r := NewRechecker(f.clock, time.Hour, tr, func() []games.Game { return nil }, nil)

	r.Ensure()
	assert.False(t, r.Armed())
}

func TestRechecker_Stop(t *testing.T) {
	t.Parallel()

	f := newFixture()
	gs := []games.Game{f.game(t, "Pong", testNow)}
	tr := f.tracker()
	tr.Evaluate(gs, true)

	r := NewRechecker(f.clock, time.Hour, tr, func() []games.Game { return gs }, nil)
	r.Ensure()
	r.Stop()
	assert.False(t, r.Armed())

	r.Ensure()
	assert.False(t, r.Armed())
}
