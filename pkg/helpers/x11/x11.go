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

// Package x11 is a small EWMH client used to find, watch and close game
// windows on Linux desktops. Every call needs a running X server (or
// XWayland) reachable through $DISPLAY.
package x11

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/screensaver"
	"github.com/jezek/xgb/xproto"
)

var ErrNoScreensaver = errors.New("MIT-SCREEN-SAVER extension not available")

const maxClients = 1024

var atomNames = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_CLIENT_LIST",
	"_NET_CLOSE_WINDOW",
	"_NET_WM_PID",
}

type Conn struct {
	conn        *xgb.Conn
	atoms       map[string]xproto.Atom
	root        xproto.Window
	screensaver bool
}

// Connect opens a connection to the default display.
func Connect() (*Conn, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	c := &Conn{
		conn:  conn,
		root:  xproto.Setup(conn).DefaultScreen(conn).Root,
		atoms: make(map[string]xproto.Atom, len(atomNames)),
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to intern %s: %w", name, err)
		}
		c.atoms[name] = reply.Atom
	}

	c.screensaver = screensaver.Init(conn) == nil
	return c, nil
}

func (c *Conn) Close() {
	c.conn.Close()
}

func (c *Conn) property(w xproto.Window, atom, typ xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(c.conn, false, w, atom, typ, 0, length).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return reply.Value, nil
}

// IdleTime returns the time since the last keyboard or pointer input on the
// whole display.
func (c *Conn) IdleTime() (time.Duration, error) {
	if !c.screensaver {
		return 0, ErrNoScreensaver
	}
	reply, err := screensaver.QueryInfo(c.conn, xproto.Drawable(c.root)).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to query idle time: %w", err)
	}
	return time.Duration(reply.MsSinceUserInput) * time.Millisecond, nil
}

// ActiveWindow returns the focused top-level window, or 0 if the window
// manager doesn't say.
func (c *Conn) ActiveWindow() xproto.Window {
	data, err := c.property(c.root, c.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)
	if err != nil || len(data) < 4 {
		return 0
	}
	return xproto.Window(binary.LittleEndian.Uint32(data))
}

// WindowPID returns the _NET_WM_PID of a window, or 0 if unset.
func (c *Conn) WindowPID(w xproto.Window) int {
	data, err := c.property(w, c.atoms["_NET_WM_PID"], xproto.AtomCardinal, 1)
	if err != nil || len(data) < 4 {
		return 0
	}
	return int(binary.LittleEndian.Uint32(data))
}

// ActivePID returns the PID owning the focused window, or 0 if unknown.
func (c *Conn) ActivePID() int {
	w := c.ActiveWindow()
	if w == 0 {
		return 0
	}
	return c.WindowPID(w)
}

// WindowsForPID lists the managed top-level windows owned by pid.
func (c *Conn) WindowsForPID(pid int) ([]xproto.Window, error) {
	data, err := c.property(c.root, c.atoms["_NET_CLIENT_LIST"], xproto.AtomWindow, maxClients)
	if err != nil {
		return nil, err
	}

	var ws []xproto.Window
	for i := 0; i+4 <= len(data); i += 4 {
		w := xproto.Window(binary.LittleEndian.Uint32(data[i:]))
		if c.WindowPID(w) == pid {
			ws = append(ws, w)
		}
	}
	return ws, nil
}

// CloseWindow asks the window manager to close w, the same as the user
// clicking its close button.
func (c *Conn) CloseWindow(w xproto.Window) error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: w,
		Type:   c.atoms["_NET_CLOSE_WINDOW"],
		// timestamp, source indication (1 = application)
		Data: xproto.ClientMessageDataUnionData32New([]uint32{0, 1, 0, 0, 0}),
	}
	err := xproto.SendEventChecked(
		c.conn,
		false,
		c.root,
		xproto.EventMaskSubstructureNotify|xproto.EventMaskSubstructureRedirect,
		string(ev.Bytes()),
	).Check()
	if err != nil {
		return fmt.Errorf("failed to send close request: %w", err)
	}
	return nil
}

// CloseWindowsByPID closes every window owned by pid and returns how many
// close requests were sent.
func CloseWindowsByPID(pid int) (int, error) {
	c, err := Connect()
	if err != nil {
		return 0, err
	}
	defer c.Close()

	ws, err := c.WindowsForPID(pid)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, w := range ws {
		if err := c.CloseWindow(w); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
