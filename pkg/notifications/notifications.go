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

// Package notifications defines the event stream the launcher core sends to
// its UI and any other consumer.
package notifications

const (
	SessionRejected = "session.rejected"
	SessionStarted  = "session.started"
	SessionEnded    = "session.ended"
	SessionError    = "session.error"
	GamesFreshness  = "games.freshness"
	GamesDiscovered = "games.discovered"
)

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Notification struct {
	Params any    `json:"params,omitempty"`
	Method string `json:"method"`
}

type SessionParams struct {
	Game      string `json:"game"`
	SessionID string `json:"sessionId,omitempty"`
}

type SessionEndedParams struct {
	Game      string `json:"game"`
	SessionID string `json:"sessionId"`
	ExitCode  int    `json:"exitCode"`
	Abnormal  bool   `json:"abnormal"`
}

// ErrorParams describes a failure. Game is empty when no game is involved
// and Cause is empty when there's no underlying error.
type ErrorParams struct {
	Game      string   `json:"game,omitempty"`
	SessionID string   `json:"sessionId,omitempty"`
	Message   string   `json:"message"`
	Cause     string   `json:"cause,omitempty"`
	Severity  Severity `json:"severity"`
}

// FreshnessParams maps game names to their badge. Games without a badge
// are listed as "stale".
type FreshnessParams struct {
	Badges map[string]string `json:"badges"`
}

type DiscoveredParams struct {
	Games []string `json:"games"`
}

func Rejected(ns chan<- Notification, game string) {
	ns <- Notification{
		Method: SessionRejected,
		Params: SessionParams{Game: game},
	}
}

func Started(ns chan<- Notification, game, sessionID string) {
	ns <- Notification{
		Method: SessionStarted,
		Params: SessionParams{Game: game, SessionID: sessionID},
	}
}

func Ended(ns chan<- Notification, payload SessionEndedParams) {
	ns <- Notification{
		Method: SessionEnded,
		Params: payload,
	}
}

// Error sends an error notification. cause may be nil.
func Error(ns chan<- Notification, sev Severity, game, sessionID, msg string, cause error) {
	p := ErrorParams{
		Game:      game,
		SessionID: sessionID,
		Message:   msg,
		Severity:  sev,
	}
	if cause != nil {
		p.Cause = cause.Error()
	}
	ns <- Notification{
		Method: SessionError,
		Params: p,
	}
}

func Freshness(ns chan<- Notification, badges map[string]string) {
	ns <- Notification{
		Method: GamesFreshness,
		Params: FreshnessParams{Badges: badges},
	}
}

func Discovered(ns chan<- Notification, games []string) {
	ns <- Notification{
		Method: GamesDiscovered,
		Params: DiscoveredParams{Games: games},
	}
}
