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

// Package menu is the terminal game picker. It lists discovered games with
// their freshness badges and launches the selected one.
package menu

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/config"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/freshness"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/games"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/notifications"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/session"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

// GameService is what the menu needs from the launcher service.
type GameService interface {
	Games() []games.Game
	Badge(name string) freshness.Status
	Launch(ctx context.Context, name string) (session.Info, error)
	Subscribe(size int) (<-chan notifications.Notification, int)
	Unsubscribe(id int)
}

type Menu struct {
	app     *tview.Application
	list    *tview.List
	details *tview.TextView
	status  *tview.TextView
	root    *tview.Flex
	theme   *Theme
	svc     GameService
	games   []games.Game
	playing atomic.Pointer[string]
	stopped chan struct{}
	cfg     config.MenuConfig
	stop    sync.Once
}

// New builds the menu's primitives. It can be handed to the service as the
// running flag sink before Run is called.
func New(app *tview.Application, cfg config.MenuConfig) *Menu {
	theme := ThemeByName(cfg.Theme)
	ApplyTheme(theme)

	m := &Menu{
		app:     app,
		cfg:     cfg,
		theme:   theme,
		list:    tview.NewList().ShowSecondaryText(false),
		details: tview.NewTextView().SetDynamicColors(true).SetWordWrap(true),
		status:  tview.NewTextView().SetDynamicColors(true),
		stopped: make(chan struct{}),
	}

	m.list.SetBorder(true).SetTitle(" Games ")
	m.details.SetBorder(true).SetTitle(" Details ")
	m.list.SetChangedFunc(func(i int, _, _ string, _ rune) {
		m.showDetails(i)
	})

	body := tview.NewFlex().AddItem(m.list, 0, 1, true)
	if cfg.ShowDescriptions {
		body.AddItem(m.details, 0, 1, false)
	}
	m.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(m.status, 1, 0, false)
	m.root.SetTitle(" Zaparoo Launcher v" + config.AppVersion + " ").
		SetBorder(true).
		SetTitleAlign(tview.AlignCenter)

	app.EnableMouse(cfg.Mouse)
	return m
}

// SetRunning is the session supervisor's running flag handoff. It blocks
// until the UI loop has taken the update, or returns at once when the menu
// is no longer running.
func (m *Menu) SetRunning(running bool) {
	if !running {
		m.playing.Store(nil)
	}
	m.queue(m.renderStatus)
}

// queue hands fn to the UI loop. tview never answers a queued update once
// its loop has exited, so the wait is abandoned when Run returns.
func (m *Menu) queue(fn func()) {
	select {
	case <-m.stopped:
		return
	default:
	}

	done := make(chan struct{})
	go func() {
		m.app.QueueUpdateDraw(fn)
		close(done)
	}()
	select {
	case <-done:
	case <-m.stopped:
		log.Debug().Msg("menu: dropped ui update after exit")
	}
}

// Run shows the menu until the user quits or ctx ends.
func (m *Menu) Run(ctx context.Context, svc GameService) error {
	defer m.stop.Do(func() { close(m.stopped) })

	m.svc = svc
	m.reload()

	ch, id := svc.Subscribe(32)
	defer svc.Unsubscribe(id)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go m.listen(ctx, ch)

	m.list.SetSelectedFunc(func(i int, _, _ string, _ rune) {
		m.launch(ctx, i)
	})
	m.root.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape || event.Rune() == 'q' {
			m.app.Stop()
			return nil
		}
		return event
	})

	go func() {
		<-ctx.Done()
		m.app.Stop()
	}()

	if err := m.app.SetRoot(m.root, true).SetFocus(m.list).Run(); err != nil {
		return fmt.Errorf("menu failed: %w", err)
	}
	return nil
}

func (m *Menu) listen(ctx context.Context, ch <-chan notifications.Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			m.handle(n)
		}
	}
}

func (m *Menu) handle(n notifications.Notification) {
	switch n.Method {
	case notifications.GamesDiscovered, notifications.GamesFreshness:
		m.queue(m.reload)
	case notifications.SessionRejected:
		m.setStatus(m.colored(m.theme.WarningColorName, "Another game is already running."))
	case notifications.SessionEnded:
		p, ok := n.Params.(notifications.SessionEndedParams)
		if ok && p.Abnormal {
			m.setStatus(m.colored(m.theme.WarningColorName,
				fmt.Sprintf("%s exited with code %d.", p.Game, p.ExitCode)))
		}
	case notifications.SessionError:
		p, ok := n.Params.(notifications.ErrorParams)
		if !ok {
			return
		}
		color := m.theme.WarningColorName
		if p.Severity == notifications.SeverityError {
			color = m.theme.ErrorColorName
		}
		m.setStatus(m.colored(color, p.Message))
	}
}

func (m *Menu) launch(ctx context.Context, i int) {
	if i < 0 || i >= len(m.games) {
		return
	}
	name := m.games[i].Name
	if m.playing.Load() != nil {
		m.status.SetText(m.colored(m.theme.WarningColorName, "Another game is already running."))
		return
	}
	m.playing.Store(&name)
	m.renderStatus()

	go func() {
		_, err := m.svc.Launch(ctx, name)
		if err == nil {
			return
		}
		if !errors.Is(err, session.ErrSessionActive) {
			m.playing.Store(nil)
		}
		log.Warn().Err(err).Str("game", name).Msg("menu: launch failed")
		m.setStatus(m.colored(m.theme.ErrorColorName, err.Error()))
	}()
}

// reload rebuilds the list from the service. UI goroutine only.
func (m *Menu) reload() {
	current := m.list.GetCurrentItem()
	m.games = m.svc.Games()

	m.list.Clear()
	for _, g := range m.games {
		m.list.AddItem(m.label(g), "", 0, nil)
	}
	if current >= 0 && current < len(m.games) {
		m.list.SetCurrentItem(current)
	}
	m.showDetails(m.list.GetCurrentItem())
	m.renderStatus()
}

func (m *Menu) label(g games.Game) string {
	name := tview.Escape(g.Name)
	switch m.svc.Badge(g.Name) {
	case freshness.New:
		return name + " " + m.colored(m.theme.AccentColorName, "NEW")
	case freshness.Updated:
		return name + " " + m.colored(m.theme.AccentColorName, "UPDATED")
	case freshness.Stale:
	}
	return name
}

func (m *Menu) showDetails(i int) {
	if !m.cfg.ShowDescriptions {
		return
	}
	if i < 0 || i >= len(m.games) {
		m.details.SetText("")
		return
	}
	g := m.games[i]
	text := fmt.Sprintf("[::b]%s[::-]\n", tview.Escape(g.Name))
	if g.Version != "" {
		text += m.colored(m.theme.SecondaryColorName, "Version "+tview.Escape(g.Version)) + "\n"
	}
	if g.Players > 1 {
		text += fmt.Sprintf("%d players\n", g.Players)
	}
	if g.Description != "" {
		text += "\n" + tview.Escape(g.Description)
	}
	m.details.SetText(text)
}

func (m *Menu) renderStatus() {
	if name := m.playing.Load(); name != nil {
		m.status.SetText(m.colored(m.theme.AccentColorName, "Playing "+tview.Escape(*name)+"..."))
		return
	}
	m.status.SetText(m.colored(m.theme.SecondaryColorName,
		fmt.Sprintf("%d games. Enter to play, q to quit.", len(m.games))))
}

func (m *Menu) setStatus(text string) {
	m.queue(func() {
		m.status.SetText(text)
	})
}

func (*Menu) colored(color, text string) string {
	return "[" + color + "]" + text + "[-]"
}
