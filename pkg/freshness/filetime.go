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

import "time"

// fileTimeEpochDelta is the number of 100ns intervals between 1601-01-01
// and the Unix epoch.
const fileTimeEpochDelta = 116444736000000000

// ToFileTime converts t to a Windows FILETIME value: 100ns ticks since
// 1601-01-01 UTC. Precision below 100ns is dropped.
func ToFileTime(t time.Time) int64 {
	return t.UnixNano()/100 + fileTimeEpochDelta
}

func FromFileTime(ft int64) time.Time {
	return time.Unix(0, (ft-fileTimeEpochDelta)*100).UTC()
}
