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

package telemetry

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "linux home", in: "/home/alice/.config/zaparoo/launcher.log", want: "/home/<user>/.config/zaparoo/launcher.log"},
		{name: "mac users", in: "/Users/bob/Library/x", want: "/Users/<user>/Library/x"},
		{name: "windows users", in: `C:\Users\carol\AppData\x.exe`, want: `C:\Users\<user>\AppData\x.exe`},
		{name: "lowercase drive", in: `d:\users\dave\x`, want: `C:\Users\<user>\x`},
		{name: "no user", in: "/opt/games/doom", want: "/opt/games/doom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizePath(tt.in))
		})
	}
}

// Not parallel: the games dir is package state.
func TestSanitizePath_GamesDir(t *testing.T) {
	SetGamesDir("/mnt/arcade/Games/")
	t.Cleanup(func() { SetGamesDir("") })

	assert.Equal(t,
		"failed to start <games>/Secret Project/run: exec format error",
		sanitizePath("failed to start /mnt/arcade/Games/Secret Project/run: exec format error"))
}

func TestSanitizeEvent(t *testing.T) {
	event := &sentry.Event{
		ServerName: "alices-pc",
		Message:    "session: failed to kill /home/alice/game",
		Extra:      map[string]any{"path": "/home/alice/x", "count": 3},
		Exception: []sentry.Exception{
			{
				Value: "open /home/alice/y: permission denied",
				Stacktrace: &sentry.Stacktrace{Frames: []sentry.Frame{
					{AbsPath: "/home/alice/src/main.go", Filename: "main.go"},
				}},
			},
			{Value: "no stack"},
		},
	}

	got := sanitizeEvent(event)

	assert.Empty(t, got.ServerName)
	assert.Equal(t, "session: failed to kill /home/<user>/game", got.Message)
	assert.Equal(t, "/home/<user>/x", got.Extra["path"])
	assert.Equal(t, 3, got.Extra["count"])
	assert.Equal(t, "open /home/<user>/y: permission denied", got.Exception[0].Value)
	assert.Equal(t, "/home/<user>/src/main.go", got.Exception[0].Stacktrace.Frames[0].AbsPath)
}

type captureTransport struct {
	got *http.Request
	err error
}

func (c *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.got = req
	if c.err != nil {
		return nil, c.err
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
}

func TestRelay_RewritesIngestURL(t *testing.T) {
	t.Parallel()

	next := &captureTransport{}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost,
		"https://o1.ingest.de.sentry.io/api/42/envelope/?sentry_key=abc", http.NoBody)
	require.NoError(t, err)

	resp, err := relay{next: next}.RoundTrip(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.NotNil(t, next.got)
	assert.Equal(t, "https://errors.zaparoo.org/?sentry_key=abc", next.got.URL.String())
	assert.Equal(t, relayHost, next.got.Host)
	// the caller's request is left alone
	assert.Equal(t, "o1.ingest.de.sentry.io", req.URL.Host)
}

func TestRelay_WrapsTransportError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, "https://x/", http.NoBody)
	require.NoError(t, err)

	resp, err := relay{next: &captureTransport{err: cause}}.RoundTrip(req) //nolint:bodyclose // nil on error
	require.ErrorIs(t, err, cause)
	assert.Nil(t, resp)
}

func TestClose_WhenOff(t *testing.T) {
	require.NoError(t, Init(false, "device", "1.0.0", "linux"))
	// no reporter, so nothing to flush
	Close()
	assert.Nil(t, reporter)
}
