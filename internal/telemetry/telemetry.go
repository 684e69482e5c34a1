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

// Package telemetry sends opt-in error reports. Only error and fatal log
// events are reported, with user names and the games folder scrubbed from
// any path in them.
package telemetry

import (
	"fmt"
	"net/http"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers"
	"github.com/getsentry/sentry-go"
	sentryzerolog "github.com/getsentry/sentry-go/zerolog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	flushTimeout = 2 * time.Second
	sendTimeout  = 30 * time.Second
	// The DSN names the project. Envelopes are posted to relayHost.
	sentryDSN = "https://abc4626558a1ae75a72c45f28b8d8144@o4510577054842880.ingest.de.sentry.io/4510577058381904"
	relayHost = "errors.zaparoo.org"
)

type scrubRule struct {
	re   *regexp.Regexp
	repl string
}

var userDirRules = []scrubRule{
	{regexp.MustCompile(`(?i)/home/[^/]+/`), "/home/<user>/"},
	{regexp.MustCompile(`(?i)/Users/[^/]+/`), "/Users/<user>/"},
	{regexp.MustCompile(`(?i)[a-zA-Z]:\\Users\\[^\\]+\\`), `C:\Users\<user>\`},
}

var (
	reporter *sentryzerolog.Writer
	closed   sync.Once

	scrubMu  sync.RWMutex
	gamesDir string
)

// relay posts every request to relayHost, whatever ingest URL the SDK
// derived from the DSN.
type relay struct {
	next http.RoundTripper
}

func (r relay) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = "https"
	out.URL.Host = relayHost
	out.URL.Path = "/"
	out.Host = relayHost
	resp, err := r.next.RoundTrip(out)
	if err != nil {
		return nil, fmt.Errorf("error report relay: %w", err)
	}
	return resp, nil
}

// Init turns on reporting if the user opted in. It adds a Sentry sink next
// to the log file writer.
func Init(reportingEnabled bool, deviceID, appVersion, platformID string) error {
	if !reportingEnabled {
		log.Debug().Msg("telemetry: error reporting off")
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              sentryDSN,
		Release:          "zaparoo-launcher@" + appVersion,
		Environment:      platformID,
		AttachStacktrace: true,
		HTTPClient: &http.Client{
			Transport: relay{next: http.DefaultTransport},
			Timeout:   sendTimeout,
		},
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return sanitizeEvent(event)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetUser(sentry.User{ID: deviceID})
		scope.SetTag("platform", platformID)
		scope.SetTag("os", runtime.GOOS)
		scope.SetTag("arch", runtime.GOARCH)
	})

	w, err := sentryzerolog.NewWithHub(sentry.CurrentHub(), sentryzerolog.Options{
		Levels:       []zerolog.Level{zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel},
		FlushTimeout: flushTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create sentry log writer: %w", err)
	}
	reporter = w

	log.Logger = log.Output(zerolog.MultiLevelWriter(helpers.LogWriter(), reporter)).
		With().Timestamp().Caller().Logger()
	log.Info().Str("device", deviceID).Msg("telemetry: error reporting on")
	return nil
}

// SetGamesDir sets the folder that's replaced with "<games>" in reports.
// Game folder names can say more about a user than their account name.
func SetGamesDir(dir string) {
	scrubMu.Lock()
	defer scrubMu.Unlock()
	gamesDir = strings.TrimRight(dir, `/\`)
}

// Close sends whatever is queued. It does nothing when reporting is off.
func Close() {
	if reporter == nil {
		return
	}
	closed.Do(func() {
		_ = reporter.Close()
		sentry.Flush(flushTimeout)
	})
}

func sanitizeEvent(event *sentry.Event) *sentry.Event {
	// hostname, filled in by the SDK
	event.ServerName = ""
	event.Message = sanitizePath(event.Message)

	for i := range event.Exception {
		exc := &event.Exception[i]
		exc.Value = sanitizePath(exc.Value)
		if exc.Stacktrace == nil {
			continue
		}
		for j := range exc.Stacktrace.Frames {
			frame := &exc.Stacktrace.Frames[j]
			frame.AbsPath = sanitizePath(frame.AbsPath)
			frame.Filename = sanitizePath(frame.Filename)
		}
	}

	for k, v := range event.Extra {
		if s, ok := v.(string); ok {
			event.Extra[k] = sanitizePath(s)
		}
	}
	return event
}

func sanitizePath(s string) string {
	if s == "" {
		return s
	}

	scrubMu.RLock()
	dir := gamesDir
	scrubMu.RUnlock()

	if dir != "" {
		s = strings.ReplaceAll(s, dir, "<games>")
	}
	for _, r := range userDirRules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}
