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

package menu

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Theme defines all colors used in the menu. The *Name fields are tview
// color tag names.
type Theme struct {
	Name                     string
	AccentColorName          string
	WarningColorName         string
	ErrorColorName           string
	SecondaryColorName       string
	PrimitiveBackgroundColor tcell.Color
	ContrastBackgroundColor  tcell.Color
	BorderColor              tcell.Color
	PrimaryTextColor         tcell.Color
	SecondaryTextColor       tcell.Color
	InverseTextColor         tcell.Color
}

var ThemeDefault = Theme{
	Name:                     "default",
	PrimitiveBackgroundColor: tcell.ColorDarkBlue,
	ContrastBackgroundColor:  tcell.ColorBlue,
	BorderColor:              tcell.ColorLightYellow,
	PrimaryTextColor:         tcell.ColorWhite,
	SecondaryTextColor:       tcell.ColorGray,
	InverseTextColor:         tcell.ColorDarkBlue,
	AccentColorName:          "yellow",
	WarningColorName:         "yellow",
	ErrorColorName:           "red",
	SecondaryColorName:       "gray",
}

var ThemeHighContrast = Theme{
	Name:                     "high_contrast",
	PrimitiveBackgroundColor: tcell.ColorBlack,
	ContrastBackgroundColor:  tcell.ColorWhite,
	BorderColor:              tcell.ColorWhite,
	PrimaryTextColor:         tcell.ColorWhite,
	SecondaryTextColor:       tcell.ColorWhite,
	InverseTextColor:         tcell.ColorBlack,
	AccentColorName:          "yellow",
	WarningColorName:         "yellow",
	ErrorColorName:           "red",
	SecondaryColorName:       "white",
}

var ThemeDracula = Theme{
	Name:                     "dracula",
	PrimitiveBackgroundColor: tcell.GetColor("#282a36"),
	ContrastBackgroundColor:  tcell.GetColor("#44475a"),
	BorderColor:              tcell.GetColor("#bd93f9"),
	PrimaryTextColor:         tcell.GetColor("#f8f8f2"),
	SecondaryTextColor:       tcell.GetColor("#6272a4"),
	InverseTextColor:         tcell.GetColor("#282a36"),
	AccentColorName:          "#bd93f9",
	WarningColorName:         "#f1fa8c",
	ErrorColorName:           "#ff5555",
	SecondaryColorName:       "#6272a4",
}

var themes = []*Theme{&ThemeDefault, &ThemeHighContrast, &ThemeDracula}

// ThemeByName returns the named theme, or the default one.
func ThemeByName(name string) *Theme {
	for _, t := range themes {
		if t.Name == name {
			return t
		}
	}
	return &ThemeDefault
}

// ApplyTheme sets tview's global styles. Call it before building any
// primitives.
func ApplyTheme(theme *Theme) {
	tview.Styles.PrimitiveBackgroundColor = theme.PrimitiveBackgroundColor
	tview.Styles.ContrastBackgroundColor = theme.ContrastBackgroundColor
	tview.Styles.BorderColor = theme.BorderColor
	tview.Styles.PrimaryTextColor = theme.PrimaryTextColor
	tview.Styles.SecondaryTextColor = theme.SecondaryTextColor
	tview.Styles.InverseTextColor = theme.InverseTextColor
}
