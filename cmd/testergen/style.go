// Copyright (c) 2019 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import "github.com/charmbracelet/lipgloss"

var (
	styleError = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	styleWarning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	styleOK = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))
)
