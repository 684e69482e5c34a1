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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// WatchDebounce is how long the watcher waits for changes to settle before
// calling back. Copying a game in produces a burst of events.
const WatchDebounce = 500 * time.Millisecond

// Watcher reports changes to the games dir and each game folder in it.
type Watcher struct {
	clock    clockwork.Clock
	watcher  *fsnotify.Watcher
	onChange func()
	pending  clockwork.Timer
	done     chan struct{}
	dir      string
	mu       syncutil.Mutex
}

// NewWatcher starts watching dir. onChange is called once per burst of
// filesystem events, from the watcher's own goroutine.
func NewWatcher(dir string, clock clockwork.Clock, onChange func()) (*Watcher, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		clock:    clock,
		watcher:  fw,
		onChange: onChange,
		done:     make(chan struct{}),
		dir:      dir,
	}

	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.addSubdirs()

	go w.loop()
	return w, nil
}

// addSubdirs watches every game folder so executable updates are seen.
func (w *Watcher) addSubdirs() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", w.dir).Msg("watcher: failed to list games dir")
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if err := w.watcher.Add(path); err != nil {
			log.Debug().Err(err).Str("path", path).Msg("watcher: failed to watch game folder")
		}
	}
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			log.Debug().Str("event", ev.String()).Msg("watcher: games dir changed")
			if ev.Has(fsnotify.Create) && filepath.Dir(ev.Name) == w.dir {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = w.watcher.Add(ev.Name)
				}
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("watcher: error")
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Reset(WatchDebounce)
		return
	}
	w.pending = w.clock.AfterFunc(WatchDebounce, func() {
		w.mu.Lock()
		w.pending = nil
		w.mu.Unlock()
		select {
		case <-w.done:
			return
		default:
		}
		w.onChange()
	})
}

// Close stops watching. It's safe to call once.
func (w *Watcher) Close() error {
	close(w.done)
	w.mu.Lock()
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
	w.mu.Unlock()
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}
